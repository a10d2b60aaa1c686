// Package redisstore shares the price cache between processes through Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/fd1az/aptos-dex/business/pricing/app"
	"github.com/fd1az/aptos-dex/business/pricing/domain"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const keyPrefix = "aptos-dex:price:"

// Config holds Redis connection settings.
type Config struct {
	Addr      string
	Password  string
	DB        int
	Retention time.Duration // key expiry, at least the oracle TTL
}

// Store is a PriceStore backed by Redis string keys holding JSON entries.
// Redis failures degrade to cache misses.
type Store struct {
	client    *redis.Client
	retention time.Duration
	log       logger.LoggerInterface
}

// New creates a store. It does not dial until first use.
func New(cfg Config, log logger.LoggerInterface) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     4,
		MaxRetries:   1,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return NewWithClient(client, cfg.Retention, log)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, retention time.Duration, log logger.LoggerInterface) *Store {
	return &Store{client: client, retention: retention, log: log}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get implements app.PriceStore.
func (s *Store) Get(ctx context.Context, symbol string) (domain.Entry, bool) {
	raw, err := s.client.Get(ctx, keyPrefix+symbol).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn(ctx, "redis price read failed", "symbol", symbol, "error", err)
		}
		return domain.Entry{}, false
	}

	var entry domain.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.log.Warn(ctx, "redis price entry corrupt", "symbol", symbol, "error", err)
		return domain.Entry{}, false
	}
	return entry, true
}

// Set implements app.PriceStore.
func (s *Store) Set(ctx context.Context, symbol string, entry domain.Entry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, keyPrefix+symbol, raw, s.retention).Err(); err != nil {
		s.log.Warn(ctx, "redis price write failed", "symbol", symbol, "error", err)
	}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ app.PriceStore = (*Store)(nil)
