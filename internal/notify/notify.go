// Package notify is the device-level notification surface. Scheduling is
// fire-and-forget: failures are logged, never propagated.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"linkup/model"
	"linkup/pkg/logging"
)

type Notifier interface {
	// Schedule shows a local notification. Returns false when scheduling
	// failed; callers do not act on it beyond logging.
	Schedule(title, body string, data map[string]string) bool
}

// LocalNotifier keeps an in-process inbox with unread tracking and logs every
// scheduled notification.
type LocalNotifier struct {
	mu     sync.Mutex
	items  []model.Notification
	logger logging.Logger
	clock  func() time.Time
}

func NewLocalNotifier(logger logging.Logger) *LocalNotifier {
	return &LocalNotifier{logger: logger, clock: time.Now}
}

func (n *LocalNotifier) Schedule(title, body string, data map[string]string) bool {
	item := model.Notification{
		ID:    uuid.NewString(),
		Title: title,
		Body:  body,
		Data:  data,
		Date:  n.clock(),
	}

	n.mu.Lock()
	n.items = append(n.items, item)
	n.mu.Unlock()

	n.logger.WithFields(logging.Fields{"title": title, "body": body}).Info("notification scheduled")
	return true
}

// List returns all notifications, newest first.
func (n *LocalNotifier) List() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.Notification, len(n.items))
	copy(out, n.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (n *LocalNotifier) UnreadCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, item := range n.items {
		if !item.Read {
			count++
		}
	}
	return count
}

func (n *LocalNotifier) MarkRead(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.items {
		if n.items[i].ID == id {
			n.items[i].Read = true
			return true
		}
	}
	return false
}

func (n *LocalNotifier) ClearAll() {
	n.mu.Lock()
	n.items = nil
	n.mu.Unlock()
}
