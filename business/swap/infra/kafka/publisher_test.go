package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fd1az/aptos-dex/business/swap/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := NewWithWriter(w, "dex-transactions", logger.New(io.Discard, logger.LevelError, "test", nil))

	ev := domain.Event{
		ID:       "id-1",
		Action:   domain.ActionSwap,
		Status:   domain.StatusConfirmed,
		Hash:     "0xabc",
		Sender:   "0x1",
		Network:  "devnet",
		Function: "0xc0ffee::swap::swap_x_to_y",
		At:       time.Unix(1700000000, 0).UTC(),
	}
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "0xabc" {
		t.Errorf("Key = %q", msg.Key)
	}
	var got domain.Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if got.Hash != ev.Hash || got.Status != ev.Status || got.Function != ev.Function {
		t.Errorf("decoded event = %+v", got)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != "swap" {
		t.Errorf("headers = %+v", msg.Headers)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Error("expected writer to be closed")
	}
}

func TestPublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewWithWriter(w, "dex-transactions", logger.New(io.Discard, logger.LevelError, "test", nil))

	err := p.Publish(context.Background(), domain.Event{Hash: "0x1"})
	if apperror.GetCode(err) != apperror.CodeEventPublishFailed {
		t.Errorf("expected EVENT_PUBLISH_FAILED, got %v", err)
	}
}
