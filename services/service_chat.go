package services

import (
	"context"
	"strings"
	"sync"

	"linkup/internal/docstore"
	"linkup/internal/notify"
	"linkup/internal/repository"
	"linkup/internal/session"
	"linkup/model"
	"linkup/pkg/apperr"
	"linkup/pkg/logging"
)

// ConversationKey is the canonical id for a two-party thread: both
// participant ids sorted and joined, so either side computes the same key
// regardless of who initiates. This is what makes subscription targeting
// symmetric.
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// ChatService mirrors a single two-party conversation, oldest message first —
// chat reads top to bottom, unlike the feed.
type ChatService struct {
	messages *repository.MessageRepository
	notifier notify.Notifier
	session  *session.Session
	logger   logging.Logger

	mu         sync.RWMutex
	chatID     string
	list       []model.Message
	lastErr    error
	lastNewest string
	cancel     docstore.CancelFunc
}

func NewChatService(messages *repository.MessageRepository, notifier notify.Notifier, sess *session.Session, logger logging.Logger) *ChatService {
	return &ChatService{messages: messages, notifier: notifier, session: sess, logger: logger}
}

// Send upserts the conversation summary and appends the message with a
// store-assigned timestamp. Returns the conversation key.
func (c *ChatService) Send(ctx context.Context, from, to, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.InvalidArg("message text is required")
	}

	key := ConversationKey(from, to)
	if err := c.messages.UpsertConversation(ctx, key, []string{from, to}, text); err != nil {
		c.logger.WithError(err).Error("conversation upsert failed")
		return "", err
	}

	msg := model.Message{
		ChatID: key,
		From:   from,
		To:     to,
		Text:   text,
		Status: model.MessageStatusSent,
	}
	if _, err := c.messages.Append(ctx, msg); err != nil {
		c.logger.WithError(err).Error("message append failed")
		return "", err
	}
	return key, nil
}

// Subscribe targets the conversation with other. Switching partners cancels
// the previous subscription first so no snapshot lands in a stale context.
func (c *ChatService) Subscribe(ctx context.Context, other string) error {
	ident := c.session.Current()
	if ident == nil {
		return apperr.Unauthenticated("you must be signed in to chat")
	}
	me := ident.ID
	key := ConversationKey(me, other)

	c.mu.Lock()
	old := c.cancel
	c.cancel = nil
	c.chatID = key
	c.list = nil
	c.lastErr = nil
	c.lastNewest = ""
	c.mu.Unlock()
	if old != nil {
		old()
	}

	cancel, err := c.messages.Subscribe(ctx, key,
		func(msgs []model.Message) { c.applySnapshot(key, me, msgs) },
		func(err error) { c.subscriptionError(key, err) },
	)
	if err != nil {
		c.subscriptionError(key, err)
		return err
	}

	c.mu.Lock()
	if c.chatID == key {
		c.cancel = cancel
	}
	c.mu.Unlock()
	return nil
}

// Cancel tears down the active subscription. Idempotent.
func (c *ChatService) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Messages returns the mirrored conversation, oldest first.
func (c *ChatService) Messages() []model.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Message, len(c.list))
	copy(out, c.list)
	return out
}

func (c *ChatService) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Conversations lists the summaries for a user's threads, most recent first.
func (c *ChatService) Conversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	return c.messages.Conversations(ctx, userID)
}

// History is a one-time fetch of a conversation, oldest first.
func (c *ChatService) History(ctx context.Context, a, b string) ([]model.Message, error) {
	return c.messages.List(ctx, ConversationKey(a, b))
}

func (c *ChatService) applySnapshot(key, me string, msgs []model.Message) {
	var incoming *model.Message

	c.mu.Lock()
	if c.chatID != key || c.lastErr != nil {
		c.mu.Unlock()
		return
	}
	c.list = msgs
	if len(msgs) > 0 {
		newest := msgs[len(msgs)-1]
		if newest.ID != c.lastNewest {
			c.lastNewest = newest.ID
			if newest.From != me {
				incoming = &newest
			}
		}
	}
	c.mu.Unlock()

	if incoming != nil {
		c.notifier.Schedule("New message", incoming.Text,
			map[string]string{"chatId": key, "from": incoming.From, "type": "message"})
	}
}

func (c *ChatService) subscriptionError(key string, err error) {
	c.logger.WithError(err).Error("chat subscription failed")
	c.mu.Lock()
	if c.chatID == key {
		c.lastErr = err
	}
	c.mu.Unlock()
}
