package asset

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilToken        = errors.New("asset: nil token")
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrTokenMismatch   = errors.New("asset: cannot operate on different tokens")
	ErrNegativeResult  = errors.New("asset: operation would result in negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for token")
	ErrInvalidNumber   = errors.New("asset: invalid decimal string")
)

// Amount is an immutable quantity of a token in base units (octas for APT).
type Amount struct {
	raw   *big.Int
	token *Token
}

// NewAmount creates a new Amount from a raw base-unit value.
func NewAmount(token *Token, raw *big.Int) Amount {
	if token == nil {
		panic(ErrNilToken)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}

	return Amount{
		raw:   new(big.Int).Set(raw),
		token: token,
	}
}

// Zero creates a zero Amount for the given token.
func Zero(token *Token) Amount {
	return NewAmount(token, big.NewInt(0))
}

// NewAmountFromUint64 creates an Amount from a uint64 raw value.
func NewAmountFromUint64(token *Token, raw uint64) Amount {
	return NewAmount(token, new(big.Int).SetUint64(raw))
}

// ParseRaw parses a base-unit integer string as returned by the node.
func ParseRaw(token *Token, s string) (Amount, error) {
	if token == nil {
		return Amount{}, ErrNilToken
	}
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if v.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{raw: v, token: token}, nil
}

// Raw returns a copy of the raw big.Int value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Token returns the token this amount is denominated in.
func (a Amount) Token() *Token {
	return a.token
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Add adds two amounts of the same token.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameToken(b); err != nil {
		return Amount{}, err
	}
	return NewAmount(a.token, new(big.Int).Add(a.raw, b.raw)), nil
}

// Sub subtracts b from a (same token only).
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameToken(b); err != nil {
		return Amount{}, err
	}
	if a.raw.Cmp(b.raw) < 0 {
		return Amount{}, ErrNegativeResult
	}
	return NewAmount(a.token, new(big.Int).Sub(a.raw, b.raw)), nil
}

// Cmp compares two amounts of the same token.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkSameToken(b); err != nil {
		return 0, err
	}
	return a.raw.Cmp(b.raw), nil
}

// -----------------------------------------------------------------------------
// Boundary Functions (decimal conversion - UI/display only)
// -----------------------------------------------------------------------------

// ToDecimal converts the amount to whole-token units.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.token == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.token.Decimals()))
}

// ParseDecimal creates an Amount from a whole-token decimal value.
func ParseDecimal(token *Token, d decimal.Decimal) (Amount, error) {
	if token == nil {
		return Amount{}, ErrNilToken
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	scaled := d.Shift(int32(token.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}

	return NewAmount(token, scaled.BigInt()), nil
}

// ParseString creates an Amount from user input such as "1.5".
func ParseString(token *Token, s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	return ParseDecimal(token, d)
}

// ParseDecimalTruncated is ParseDecimal that drops digits beyond the token's
// precision instead of failing. Used for computed values such as quotes.
func ParseDecimalTruncated(token *Token, d decimal.Decimal) (Amount, error) {
	if token == nil {
		return Amount{}, ErrNilToken
	}
	return ParseDecimal(token, d.Truncate(int32(token.Decimals())))
}

// String returns a human-readable representation (e.g., "1.5 APT").
func (a Amount) String() string {
	if a.token == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.token.Symbol())
}

// StringFixed returns the value with fixed decimal places and no symbol.
func (a Amount) StringFixed(places int32) string {
	return a.ToDecimal().StringFixed(places)
}

// FormatBalance renders the amount at the token's declared precision.
func (a Amount) FormatBalance() string {
	if a.token == nil {
		return "0"
	}
	return a.StringFixed(int32(a.token.Decimals()))
}

// ZeroBalance returns the zero balance string for a token ("0.00000000" for APT).
func ZeroBalance(token *Token) string {
	return Zero(token).FormatBalance()
}

func (a Amount) checkSameToken(b Amount) error {
	if a.token == nil || b.token == nil {
		return ErrNilToken
	}
	if !a.token.Equals(b.token) {
		return fmt.Errorf("%w: %s vs %s", ErrTokenMismatch, a.token.Symbol(), b.token.Symbol())
	}
	return nil
}
