// Package domain contains the core domain types for the pricing context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a cached USD price.
type Entry struct {
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// NewEntry stamps price with at.
func NewEntry(price decimal.Decimal, at time.Time) Entry {
	return Entry{Price: price, FetchedAt: at}
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return !e.FetchedAt.IsZero() && now.Sub(e.FetchedAt) < ttl
}

// Quote is a price keyed by token symbol, as returned by batch lookups.
type Quote struct {
	Symbol string
	FeedID string
	Entry
}
