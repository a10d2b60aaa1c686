// Package app contains the quote estimator, the quote session, the
// transaction submitter and liquidity operations.
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/aptos-dex/business/swap/domain"
	walletapp "github.com/fd1az/aptos-dex/business/wallet/app"
	"github.com/fd1az/aptos-dex/internal/asset"
)

// PriceSource resolves USD prices by symbol.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// ReserveReader reads pool reserves for an ordered pair.
type ReserveReader interface {
	Reserves(ctx context.Context, a, b *asset.Token) (domain.Reserves, error)
}

// EventPublisher publishes submission events.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// BalanceRefresher is asked to re-read balances after a submission.
type BalanceRefresher interface {
	RefreshAfter(delay time.Duration)
}

// WalletSource is the selected wallet.
type WalletSource interface {
	Selected() (walletapp.Wallet, bool)
	NotifyConnected(w walletapp.Wallet)
}

// Quoter produces quotes. Implemented by Estimator.
type Quoter interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error)
}

// NopPublisher drops events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, domain.Event) error { return nil }

// Ensure NopPublisher implements EventPublisher.
var _ EventPublisher = NopPublisher{}
