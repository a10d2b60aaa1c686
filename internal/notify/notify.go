// Package notify delivers short user-facing messages (toasts) to the
// console, the log, the dashboard and API subscribers.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one user-facing message.
type Notification struct {
	ID      uuid.UUID `json:"id"`
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Link    string    `json:"link,omitempty"`
	Kind    string    `json:"kind,omitempty"`
	At      time.Time `json:"at"`
}

// New builds a notification stamped with a fresh id and the current time.
func New(level Level, title, message string) Notification {
	return Notification{
		ID:      uuid.New(),
		Level:   level,
		Title:   title,
		Message: message,
		At:      time.Now(),
	}
}

// WithLink returns a copy carrying an explorer link.
func (n Notification) WithLink(link string) Notification {
	n.Link = link
	return n
}

// WithKind returns a copy tagged with an error kind.
func (n Notification) WithKind(kind string) Notification {
	n.Kind = kind
	return n
}

// Notifier receives notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(ctx, n)
		}
	}
}

// Discard drops every notification.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(context.Context, Notification) {}

// Ensure implementations satisfy Notifier.
var (
	_ Notifier = Multi(nil)
	_ Notifier = Discard{}
	_ Notifier = (*Console)(nil)
	_ Notifier = (*Log)(nil)
	_ Notifier = (*Channel)(nil)
)
