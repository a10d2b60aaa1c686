package cache

import (
	"context"
	"testing"
	"time"
)

func TestCache_ExpiresOnRead(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)

	c := New[string, int](0).WithClock(func() time.Time { return now })
	defer c.Close()

	c.Set(ctx, "APT", 8, time.Minute)

	if v, ok := c.Get(ctx, "APT"); !ok || v != 8 {
		t.Fatalf("expected hit with 8, got %v %v", v, ok)
	}

	now = now.Add(59 * time.Second)
	if _, ok := c.Get(ctx, "APT"); !ok {
		t.Error("expected hit before ttl")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get(ctx, "APT"); ok {
		t.Error("expected miss at ttl boundary")
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	c := New[string, string](0).WithClock(func() time.Time { return now })
	defer c.Close()

	c.Set(ctx, "k", "v", 0)
	now = now.Add(100 * time.Hour)

	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("expected entry without ttl to persist")
	}
}

func TestCache_SweepRemovesExpired(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](10 * time.Millisecond)
	defer c.Close()

	c.Set(ctx, "a", 1, time.Millisecond)
	c.Set(ctx, "b", 2, time.Hour)

	time.Sleep(50 * time.Millisecond)

	if c.Len() != 1 {
		t.Errorf("expected 1 entry after sweep, got %d", c.Len())
	}
	c.Close()
}
