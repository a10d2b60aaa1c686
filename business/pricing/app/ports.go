// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/aptos-dex/business/pricing/domain"
)

// PriceFeed fetches USD prices from an external market-data service.
type PriceFeed interface {
	// FetchUSD returns prices keyed by feed id. Ids the feed does not know
	// are absent from the map.
	FetchUSD(ctx context.Context, feedIDs []string) (map[string]decimal.Decimal, error)
}

// PriceStore holds the last fetched price per symbol. Freshness is
// decided by the oracle, not the store.
type PriceStore interface {
	Get(ctx context.Context, symbol string) (domain.Entry, bool)
	Set(ctx context.Context, symbol string, entry domain.Entry)
}

// PriceOracle is the read side used by the other contexts.
type PriceOracle interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetPrices(ctx context.Context, symbols ...string) (map[string]decimal.Decimal, error)
}
