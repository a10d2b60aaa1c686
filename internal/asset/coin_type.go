// Package asset provides a type-safe model for Aptos coins.
// The core uses big.Int for exact on-chain representation.
// decimal.Decimal is only used at boundaries (UI, parsing, display).
package asset

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidCoinType = errors.New("asset: invalid coin type")
	ErrInvalidAddress  = errors.New("asset: invalid account address")
)

// CoinType is a Move struct tag such as 0x1::aptos_coin::AptosCoin.
// This is the TRUE identity of a coin - not the symbol.
type CoinType struct {
	address string
	module  string
	name    string
}

// AptosCoinType is the native coin.
var AptosCoinType = MustParseCoinType("0x1::aptos_coin::AptosCoin")

// ParseCoinType validates the address::module::Name shape.
func ParseCoinType(s string) (CoinType, error) {
	parts := strings.Split(strings.TrimSpace(s), "::")
	if len(parts) != 3 {
		return CoinType{}, fmt.Errorf("%w: %q", ErrInvalidCoinType, s)
	}

	addr, err := NormalizeAddress(parts[0])
	if err != nil {
		return CoinType{}, fmt.Errorf("%w: %q: %v", ErrInvalidCoinType, s, err)
	}
	if !isIdentifier(parts[1]) || !isIdentifier(parts[2]) {
		return CoinType{}, fmt.Errorf("%w: %q", ErrInvalidCoinType, s)
	}

	return CoinType{address: addr, module: parts[1], name: parts[2]}, nil
}

// MustParseCoinType is ParseCoinType for package-level tables.
func MustParseCoinType(s string) CoinType {
	ct, err := ParseCoinType(s)
	if err != nil {
		panic(err)
	}
	return ct
}

// Address returns the normalized account address that publishes the coin.
func (c CoinType) Address() string { return c.address }

// Module returns the Move module name.
func (c CoinType) Module() string { return c.module }

// Name returns the struct name.
func (c CoinType) Name() string { return c.name }

// IsZero reports whether the coin type is unset.
func (c CoinType) IsZero() bool { return c.address == "" }

// IsNative returns true for APT.
func (c CoinType) IsNative() bool { return c == AptosCoinType }

// String returns the canonical type tag.
func (c CoinType) String() string {
	if c.IsZero() {
		return ""
	}
	return c.address + "::" + c.module + "::" + c.name
}

// Equals compares two coin types.
func (c CoinType) Equals(other CoinType) bool {
	return c == other
}

// NormalizeAddress returns the canonical lower-case form of an account address.
// Special addresses (0x0..0xf) keep the short form, everything else is
// left-padded to 64 hex digits.
func NormalizeAddress(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "0x") {
		return "", fmt.Errorf("%w: missing 0x prefix", ErrInvalidAddress)
	}
	digits := s[2:]
	if len(digits) == 0 || len(digits) > 64 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	if v.Cmp(big.NewInt(16)) < 0 {
		return fmt.Sprintf("0x%x", v), nil
	}
	return fmt.Sprintf("0x%064x", v), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
