package redisstore

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/aptos-dex/business/pricing/domain"
	"github.com/fd1az/aptos-dex/internal/logger"
)

func TestStore_UnreachableDegradesToMiss(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:1", Retention: time.Minute},
		logger.New(io.Discard, logger.LevelError, "test", nil))
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s.Set(ctx, "APT", domain.NewEntry(decimal.NewFromInt(8), time.Now()))
	if _, ok := s.Get(ctx, "APT"); ok {
		t.Error("expected miss when redis is unreachable")
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("expected ping error")
	}
}
