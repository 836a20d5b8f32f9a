package model

import "time"

type Post struct {
	ID         string    `json:"id"         bson:"_id,omitempty"`
	UserID     string    `json:"userId"     bson:"user_id"`
	UserName   string    `json:"userName"   bson:"user_name"`
	UserAvatar string    `json:"userAvatar,omitempty" bson:"user_avatar,omitempty"`
	Content    string    `json:"content"    bson:"content"`
	MediaURL   string    `json:"mediaUrl,omitempty" bson:"media_url,omitempty"`
	Likes      []string  `json:"likes"      bson:"likes"`
	Comments   []Comment `json:"comments"   bson:"comments"`
	CreatedAt  time.Time `json:"createdAt"  bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  bson:"updated_at"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
