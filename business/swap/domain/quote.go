// Package domain contains quotes, submissions and swap outcomes.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/aptos-dex/internal/asset"
)

// Places is the precision of every displayed monetary value.
const Places int32 = 6

// Model names how a quote was derived.
type Model string

const (
	ModelOracle Model = "oracle"
	ModelPool   Model = "pool"
)

// QuoteRequest is the user's input. SlippagePct is a percentage (0.5 = 0.5%).
type QuoteRequest struct {
	In          *asset.Token
	Out         *asset.Token
	Amount      string
	SlippagePct decimal.Decimal
}

// Quote is an estimated swap. Monetary fields are fixed at six places,
// except AmountIn which keeps the entered amount at full precision.
type Quote struct {
	In              *asset.Token `json:"-"`
	Out             *asset.Token `json:"-"`
	AmountIn        string       `json:"amountIn"`
	InputAmount     string       `json:"inputAmount"`
	OutputAmount    string       `json:"outputAmount"`
	PriceImpact     string       `json:"priceImpact"`
	MinimumReceived string       `json:"minimumReceived"`
	Fee             string       `json:"fee"`
	Route           []string     `json:"route"`
	ExchangeRate    string       `json:"exchangeRate"`
	SlippagePct     string       `json:"slippage"`
	Model           Model        `json:"model"`
	QuotedAt        time.Time    `json:"quotedAt"`
}

// Round6 rounds d half away from zero to six places.
func Round6(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Fixed6 formats d with exactly six places.
func Fixed6(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Reserves are a pool's balances in base units, ordered as requested.
type Reserves struct {
	A *big.Int
	B *big.Int
}

// Empty reports whether either side has no liquidity.
func (r Reserves) Empty() bool {
	return r.A == nil || r.B == nil || r.A.Sign() <= 0 || r.B.Sign() <= 0
}

// SwapRequest is a confirmed swap. Amounts are whole-token decimal strings.
// ExpectedOut only feeds the summary text.
type SwapRequest struct {
	In          *asset.Token
	Out         *asset.Token
	AmountIn    string
	MinimumOut  string
	ExpectedOut string
}

// SwapRequestFromQuote turns an accepted quote into a request. The entered
// amount is submitted, not its six-place display form.
func SwapRequestFromQuote(q *Quote) SwapRequest {
	amountIn := q.AmountIn
	if amountIn == "" {
		amountIn = q.InputAmount
	}
	return SwapRequest{
		In:          q.In,
		Out:         q.Out,
		AmountIn:    amountIn,
		MinimumOut:  q.MinimumReceived,
		ExpectedOut: q.OutputAmount,
	}
}
