// Package domain contains balance snapshots and transaction history records.
package domain

import (
	"time"

	"github.com/fd1az/aptos-dex/internal/asset"
)

// Balance is one token's holding. Display is fixed-point at the token's
// declared precision.
type Balance struct {
	Token   *asset.Token
	Amount  asset.Amount
	Display string
}

// ZeroBalanceOf returns the zero balance for t.
func ZeroBalanceOf(t *asset.Token) Balance {
	return Balance{Token: t, Amount: asset.Zero(t), Display: asset.ZeroBalance(t)}
}

// Snapshot is the set of balances for one address, in registry order.
type Snapshot struct {
	Address   string
	Network   string
	Balances  []Balance
	FetchedAt time.Time
}

// Get returns the balance for symbol.
func (s Snapshot) Get(symbol string) (Balance, bool) {
	for _, b := range s.Balances {
		if b.Token.Symbol() == symbol {
			return b, true
		}
	}
	return Balance{}, false
}

// Displays maps symbol to display string.
func (s Snapshot) Displays() map[string]string {
	out := make(map[string]string, len(s.Balances))
	for _, b := range s.Balances {
		out[b.Token.Symbol()] = b.Display
	}
	return out
}
