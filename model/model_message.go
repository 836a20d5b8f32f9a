package model

import "time"

const MessageStatusSent = "sent"

type Message struct {
	ID        string    `json:"id"        bson:"_id,omitempty"`
	ChatID    string    `json:"chatId"    bson:"chat_id"`
	From      string    `json:"from"      bson:"from"`
	To        string    `json:"to"        bson:"to"`
	Text      string    `json:"text"      bson:"text"`
	Status    string    `json:"status"    bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Conversation is the summary document for a two-party thread. Its ID is the
// conversation key: both participant IDs sorted and joined, so either side
// computes the same value.
type Conversation struct {
	ID          string    `json:"id"          bson:"_id,omitempty"`
	Users       []string  `json:"users"       bson:"users"`
	LastMessage string    `json:"lastMessage" bson:"last_message"`
	UpdatedAt   time.Time `json:"updatedAt"   bson:"updated_at"`
}
