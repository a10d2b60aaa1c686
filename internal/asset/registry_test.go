package asset_test

import (
	"errors"
	"testing"

	"github.com/fd1az/aptos-dex/internal/asset"
)

func TestParseCoinType(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"0x1::aptos_coin::AptosCoin", "0x1::aptos_coin::AptosCoin", true},
		{"0x0001::aptos_coin::AptosCoin", "0x1::aptos_coin::AptosCoin", true},
		{"0xABC::coin::T", "0x0000000000000000000000000000000000000000000000000000000000000abc::coin::T", true},
		{"0x1::aptos_coin", "", false},
		{"1::coin::T", "", false},
		{"0xzz::coin::T", "", false},
		{"0x1::9coin::T", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ct, err := asset.ParseCoinType(tt.input)
			if !tt.ok {
				if !errors.Is(err, asset.ErrInvalidCoinType) {
					t.Fatalf("expected invalid coin type, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ct.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, ct)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := asset.DefaultRegistry()

	if r.Count() != 5 {
		t.Fatalf("expected 5 tokens, got %d", r.Count())
	}

	apt, ok := r.BySymbol("apt")
	if !ok {
		t.Fatal("APT not found in registry")
	}
	if !apt.IsNative() || apt.Decimals() != 8 || apt.FeedID() != "aptos" {
		t.Errorf("unexpected APT metadata: native=%v decimals=%d feed=%s", apt.IsNative(), apt.Decimals(), apt.FeedID())
	}

	usdc, ok := r.ByCoinType(asset.USDC.CoinType())
	if !ok || usdc.Symbol() != "USDC" {
		t.Fatal("USDC not found by coin type")
	}
	if usdc.FeedID() != "usd-coin" {
		t.Errorf("expected usd-coin feed, got %s", usdc.FeedID())
	}

	if _, ok := r.BySymbol("DOGE"); ok {
		t.Error("DOGE must not be listed")
	}
}

func TestRegistry_ForNetwork(t *testing.T) {
	base := asset.DefaultRegistry()

	dev := base.ForNetwork("devnet")
	for _, tok := range dev.All() {
		if tok.IsNative() != tok.IsVerified() {
			t.Errorf("devnet: %s verified=%v", tok.Symbol(), tok.IsVerified())
		}
	}

	main := base.ForNetwork("mainnet")
	for _, tok := range main.All() {
		if !tok.IsVerified() {
			t.Errorf("mainnet: %s should be verified", tok.Symbol())
		}
	}

	if asset.USDC.IsVerified() {
		t.Error("ForNetwork must not mutate shared tokens")
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r := asset.NewRegistry()
	r.Register(asset.APT)
	r.Register(asset.APT)
}
