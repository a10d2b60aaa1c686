package asset

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is the exchange rate between two tokens derived from their USD prices.
// Example: APT/USDC = 8.5 means one APT buys 8.5 USDC.
type Rate struct {
	value     decimal.Decimal
	base      *Token
	quote     *Token
	timestamp time.Time
}

// RateFromUSD builds base/quote from the two USD prices.
func RateFromUSD(base, quote *Token, baseUSD, quoteUSD decimal.Decimal, at time.Time) (Rate, error) {
	if base == nil || quote == nil {
		return Rate{}, ErrNilToken
	}
	if !baseUSD.IsPositive() || !quoteUSD.IsPositive() {
		return Rate{}, fmt.Errorf("asset: non-positive price for %s/%s", base.Symbol(), quote.Symbol())
	}
	return Rate{
		value:     baseUSD.DivRound(quoteUSD, 18),
		base:      base,
		quote:     quote,
		timestamp: at,
	}, nil
}

// Value returns the rate as a decimal.
func (r Rate) Value() decimal.Decimal { return r.value }

// Base returns the token being priced.
func (r Rate) Base() *Token { return r.base }

// Quote returns the unit of the rate.
func (r Rate) Quote() *Token { return r.quote }

// Timestamp returns when the underlying prices were observed.
func (r Rate) Timestamp() time.Time { return r.timestamp }

// Pair returns the trading pair symbol (e.g., "APT/USDC").
func (r Rate) Pair() string {
	if r.base == nil || r.quote == nil {
		return "???/???"
	}
	return r.base.Symbol() + "/" + r.quote.Symbol()
}

// Invert returns quote/base.
func (r Rate) Invert() Rate {
	inv := decimal.Zero
	if !r.value.IsZero() {
		inv = decimal.NewFromInt(1).DivRound(r.value, 18)
	}
	return Rate{value: inv, base: r.quote, quote: r.base, timestamp: r.timestamp}
}

// Convert returns the whole-token value of amount expressed in the quote token.
func (r Rate) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.value)
}

// String returns a human-readable representation.
func (r Rate) String() string {
	return fmt.Sprintf("%s %s", r.value.String(), r.Pair())
}

// IsStale returns true if the rate is older than maxAge.
func (r Rate) IsStale(maxAge time.Duration) bool {
	return time.Since(r.timestamp) > maxAge
}
