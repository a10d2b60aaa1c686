package asset_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/shopspring/decimal"
)

func TestAmount_Basic(t *testing.T) {
	// 1 APT = 1e8 octas
	oneAPT := asset.NewAmount(asset.APT, big.NewInt(1e8))

	if oneAPT.IsZero() {
		t.Error("expected non-zero amount")
	}
	if !oneAPT.ToDecimal().Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", oneAPT.ToDecimal().String())
	}
	if oneAPT.String() != "1 APT" {
		t.Errorf("expected '1 APT', got '%s'", oneAPT.String())
	}
}

func TestAmount_AddSub(t *testing.T) {
	one := asset.NewAmount(asset.APT, big.NewInt(1e8))
	two := asset.NewAmount(asset.APT, big.NewInt(2e8))

	sum, err := one.Add(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.ToDecimal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3, got %s", sum.ToDecimal())
	}

	if _, err := one.Sub(two); !errors.Is(err, asset.ErrNegativeResult) {
		t.Errorf("expected negative result error, got %v", err)
	}
}

func TestAmount_CannotMixTokens(t *testing.T) {
	apt := asset.NewAmount(asset.APT, big.NewInt(1e8))
	usdc := asset.NewAmount(asset.USDC, big.NewInt(1e6))

	if _, err := apt.Add(usdc); !errors.Is(err, asset.ErrTokenMismatch) {
		t.Errorf("expected mismatch error, got %v", err)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		token   *asset.Token
		input   string
		wantRaw string
		wantErr error
	}{
		{"whole APT", asset.APT, "1.5", "150000000", nil},
		{"tiny APT", asset.APT, "0.00000001", "1", nil},
		{"USDC", asset.USDC, "10.25", "10250000", nil},
		{"too precise USDC", asset.USDC, "1.1234567", "", asset.ErrTooManyDecimals},
		{"negative", asset.APT, "-1", "", asset.ErrNegativeAmount},
		{"garbage", asset.APT, "abc", "", asset.ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := asset.ParseString(tt.token, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Raw().String() != tt.wantRaw {
				t.Errorf("expected raw %s, got %s", tt.wantRaw, got.Raw())
			}
		})
	}
}

func TestParseDecimalTruncated(t *testing.T) {
	got, err := asset.ParseDecimalTruncated(asset.USDC, decimal.RequireFromString("1.123456789"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Raw().String() != "1123456" {
		t.Errorf("expected 1123456, got %s", got.Raw())
	}
}

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		token *asset.Token
		raw   string
		want  string
	}{
		{asset.APT, "0", "0.00000000"},
		{asset.APT, "123456789", "1.23456789"},
		{asset.USDC, "0", "0.000000"},
		{asset.USDC, "2500000", "2.500000"},
	}

	for _, tt := range tests {
		t.Run(tt.token.Symbol()+"/"+tt.raw, func(t *testing.T) {
			a, err := asset.ParseRaw(tt.token, tt.raw)
			if err != nil {
				t.Fatalf("ParseRaw: %v", err)
			}
			if got := a.FormatBalance(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	if got := asset.ZeroBalance(asset.WBTC); got != "0.00000000" {
		t.Errorf("unexpected zero balance %s", got)
	}
}

func TestRate(t *testing.T) {
	r, err := asset.RateFromUSD(asset.APT, asset.USDC,
		decimal.RequireFromString("8.5"), decimal.RequireFromString("1"), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Value().Equal(decimal.RequireFromString("8.5")) {
		t.Errorf("expected 8.5, got %s", r.Value())
	}
	if r.Pair() != "APT/USDC" {
		t.Errorf("unexpected pair %s", r.Pair())
	}
	if got := r.Convert(decimal.NewFromInt(2)); !got.Equal(decimal.NewFromInt(17)) {
		t.Errorf("expected 17, got %s", got)
	}

	inv := r.Invert()
	diff := inv.Value().Sub(decimal.RequireFromString("0.117647058823529412")).Abs()
	if diff.GreaterThan(decimal.RequireFromString("0.000000000001")) {
		t.Errorf("unexpected inverse %s", inv.Value())
	}

	if _, err := asset.RateFromUSD(asset.APT, asset.USDC, decimal.Zero, decimal.NewFromInt(1), time.Now()); err == nil {
		t.Error("expected error for zero price")
	}
}
