package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type recorder struct{ got []Notification }

func (r *recorder) Notify(_ context.Context, n Notification) { r.got = append(r.got, n) }

func TestNew(t *testing.T) {
	n := New(LevelSuccess, "Swap", "done").WithLink("https://x").WithKind("network_failure")

	if n.ID == uuid.Nil {
		t.Error("expected id to be generated")
	}
	if n.At.IsZero() {
		t.Error("expected timestamp")
	}
	if n.Link != "https://x" || n.Kind != "network_failure" {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, nil, b}.Notify(context.Background(), New(LevelInfo, "t", "m"))

	if len(a.got) != 1 || len(b.got) != 1 {
		t.Errorf("expected both notifiers to receive, got %d and %d", len(a.got), len(b.got))
	}
}

func TestConsole(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	NewConsole(&buf).Notify(context.Background(), New(LevelError, "Swap failed", "Transaction was rejected by user"))

	out := buf.String()
	if !strings.Contains(out, "Swap failed: Transaction was rejected by user") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestChannel(t *testing.T) {
	c := NewChannel(1)
	ch, cancel := c.Subscribe()

	c.Notify(context.Background(), New(LevelInfo, "a", ""))
	c.Notify(context.Background(), New(LevelInfo, "b", "")) // dropped, buffer full

	first := <-ch
	if first.Title != "a" {
		t.Errorf("expected a, got %s", first.Title)
	}
	select {
	case n := <-ch:
		t.Errorf("expected no more messages, got %s", n.Title)
	default:
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}

	// no subscribers left: must not panic
	c.Notify(context.Background(), New(LevelInfo, "c", ""))
}
