package model

import "time"

type User struct {
	ID           string    `json:"id"        bson:"_id,omitempty"`
	Email        string    `json:"email"     bson:"email"`
	Name         string    `json:"name"      bson:"name"`
	Bio          string    `json:"bio,omitempty"    bson:"bio,omitempty"`
	Avatar       string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Followers    []string  `json:"followers" bson:"followers"`
	Following    []string  `json:"following" bson:"following"`
	Keywords     []string  `json:"-"         bson:"keywords"`
	PasswordHash string    `json:"-"         bson:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// Identity is the authenticated subset of a user held by a session.
type Identity struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty"`
}

// Identity returns the session view of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name, Avatar: u.Avatar, Bio: u.Bio}
}
