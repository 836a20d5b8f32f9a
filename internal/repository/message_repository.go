package repository

import (
	"context"

	"linkup/internal/docstore"
	"linkup/model"
)

type MessageRepository struct {
	store docstore.Store
}

func NewMessageRepository(store docstore.Store) *MessageRepository {
	return &MessageRepository{store: store}
}

// UpsertConversation merges the conversation summary document keyed by the
// conversation key.
func (r *MessageRepository) UpsertConversation(ctx context.Context, key string, users []string, lastMessage string) error {
	doc := docstore.Document{
		"users":        toAny(users),
		"last_message": lastMessage,
		"updated_at":   docstore.ServerTimestamp,
	}
	_, err := r.store.Write(ctx, ColChats, key, doc, true)
	return err
}

// Append adds a message with a store-assigned timestamp.
func (r *MessageRepository) Append(ctx context.Context, m model.Message) (string, error) {
	doc := docstore.Document{
		"chat_id":    m.ChatID,
		"from":       m.From,
		"to":         m.To,
		"text":       m.Text,
		"status":     m.Status,
		"created_at": docstore.ServerTimestamp,
	}
	return r.store.Write(ctx, ColMessages, "", doc, false)
}

// Subscribe delivers a conversation's messages oldest first, chat reading
// order.
func (r *MessageRepository) Subscribe(ctx context.Context, chatID string, onMessages func([]model.Message), onError docstore.ErrorFunc) (docstore.CancelFunc, error) {
	return r.store.Subscribe(ctx, ColMessages,
		docstore.Filter{docstore.Eq("chat_id", chatID)},
		docstore.Order{Field: "created_at"},
		func(docs []docstore.Document) { onMessages(docsToMessages(docs)) },
		onError,
	)
}

func (r *MessageRepository) List(ctx context.Context, chatID string) ([]model.Message, error) {
	docs, err := r.store.Query(ctx, ColMessages,
		docstore.Filter{docstore.Eq("chat_id", chatID)},
		docstore.Order{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}
	return docsToMessages(docs), nil
}

// Conversations lists a user's conversation summaries, most recent first.
func (r *MessageRepository) Conversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	docs, err := r.store.Query(ctx, ColChats,
		docstore.Filter{docstore.ArrayContains("users", userID)},
		docstore.Order{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	convs := make([]model.Conversation, 0, len(docs))
	for _, doc := range docs {
		convs = append(convs, model.Conversation{
			ID:          str(doc["_id"]),
			Users:       strSlice(doc["users"]),
			LastMessage: str(doc["last_message"]),
			UpdatedAt:   docstore.AsTime(doc["updated_at"]),
		})
	}
	return convs, nil
}

func docsToMessages(docs []docstore.Document) []model.Message {
	msgs := make([]model.Message, 0, len(docs))
	for _, doc := range docs {
		msgs = append(msgs, model.Message{
			ID:        str(doc["_id"]),
			ChatID:    str(doc["chat_id"]),
			From:      str(doc["from"]),
			To:        str(doc["to"]),
			Text:      str(doc["text"]),
			Status:    str(doc["status"]),
			CreatedAt: docstore.AsTime(doc["created_at"]),
		})
	}
	return msgs
}
