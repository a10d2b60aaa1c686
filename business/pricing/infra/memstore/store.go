// Package memstore keeps prices in process memory.
package memstore

import (
	"context"
	"time"

	"github.com/fd1az/aptos-dex/business/pricing/app"
	"github.com/fd1az/aptos-dex/business/pricing/domain"
	"github.com/fd1az/aptos-dex/internal/cache"
)

// Store is a PriceStore over the generic TTL cache. Entries are kept for
// retention, which should be at least the oracle TTL.
type Store struct {
	cache     *cache.Cache[string, domain.Entry]
	retention time.Duration
}

// New creates a store.
func New(retention time.Duration) *Store {
	return &Store{
		cache:     cache.New[string, domain.Entry](retention),
		retention: retention,
	}
}

// Get implements app.PriceStore.
func (s *Store) Get(ctx context.Context, symbol string) (domain.Entry, bool) {
	return s.cache.Get(ctx, symbol)
}

// Set implements app.PriceStore.
func (s *Store) Set(ctx context.Context, symbol string, entry domain.Entry) {
	s.cache.Set(ctx, symbol, entry, s.retention)
}

// Close stops the sweeper.
func (s *Store) Close() error {
	s.cache.Close()
	return nil
}

var _ app.PriceStore = (*Store)(nil)
