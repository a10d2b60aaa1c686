package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/fd1az/aptos-dex/internal/logger"
)

// Console prints notifications with colored prefixes.
type Console struct {
	w  io.Writer
	mu sync.Mutex
}

// NewConsole creates a console notifier writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Notify implements Notifier.
func (c *Console) Notify(_ context.Context, n Notification) {
	var prefix string
	switch n.Level {
	case LevelSuccess:
		prefix = color.GreenString("✔ %s", n.Title)
	case LevelWarning:
		prefix = color.YellowString("! %s", n.Title)
	case LevelError:
		prefix = color.RedString("✖ %s", n.Title)
	default:
		prefix = color.CyanString("• %s", n.Title)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, "%s: %s\n", prefix, n.Message)
	if n.Link != "" {
		fmt.Fprintf(c.w, "  %s\n", color.BlueString(n.Link))
	}
}

// Log writes notifications to the structured logger.
type Log struct {
	log logger.LoggerInterface
}

// NewLog creates a log notifier.
func NewLog(log logger.LoggerInterface) *Log {
	return &Log{log: log}
}

// Notify implements Notifier.
func (l *Log) Notify(ctx context.Context, n Notification) {
	args := []any{"id", n.ID.String(), "title", n.Title, "message", n.Message}
	if n.Link != "" {
		args = append(args, "link", n.Link)
	}
	if n.Kind != "" {
		args = append(args, "kind", n.Kind)
	}

	switch n.Level {
	case LevelError:
		l.log.Error(ctx, "notification", args...)
	case LevelWarning:
		l.log.Warn(ctx, "notification", args...)
	default:
		l.log.Info(ctx, "notification", args...)
	}
}

// Channel broadcasts notifications to subscribers. Slow subscribers drop
// messages instead of blocking the sender.
type Channel struct {
	mu     sync.RWMutex
	subs   map[int]chan Notification
	nextID int
	buffer int
}

// NewChannel creates a broadcaster with per-subscriber buffer size.
func NewChannel(buffer int) *Channel {
	if buffer < 1 {
		buffer = 1
	}
	return &Channel{subs: make(map[int]chan Notification), buffer: buffer}
}

// Subscribe returns a receive channel and a cancel func that closes it.
func (c *Channel) Subscribe() (<-chan Notification, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan Notification, c.buffer)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// Notify implements Notifier.
func (c *Channel) Notify(_ context.Context, n Notification) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, ch := range c.subs {
		select {
		case ch <- n:
		default:
		}
	}
}
