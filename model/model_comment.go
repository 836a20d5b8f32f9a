package model

import "time"

type Comment struct {
	ID         string    `json:"id"         bson:"id"`
	UserID     string    `json:"userId"     bson:"user_id"`
	UserName   string    `json:"userName"   bson:"user_name"`
	UserAvatar string    `json:"userAvatar,omitempty" bson:"user_avatar,omitempty"`
	Content    string    `json:"content"    bson:"content"`
	CreatedAt  time.Time `json:"createdAt"  bson:"created_at"`
}
