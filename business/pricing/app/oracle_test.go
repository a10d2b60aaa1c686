package app_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/aptos-dex/business/pricing/app"
	"github.com/fd1az/aptos-dex/business/pricing/infra/memstore"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

// fakeFeed replays scripted responses and records requests.
type fakeFeed struct {
	mu        sync.Mutex
	responses []feedResponse
	calls     [][]string
}

type feedResponse struct {
	prices map[string]decimal.Decimal
	err    error
}

func (f *fakeFeed) FetchUSD(_ context.Context, ids []string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, ids)
	if len(f.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return r.prices, r.err
}

func (f *fakeFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newOracle(t *testing.T, feed app.PriceFeed, clk *clock) *app.Oracle {
	t.Helper()
	cfg := app.OracleConfig{TTL: time.Minute, MaxAttempts: 3, RetryDelay: time.Millisecond}
	o, err := app.NewOracle(feed, memstore.New(0), cfg,
		logger.New(io.Discard, logger.LevelError, "test", nil),
		app.WithClock(clk.Now))
	if err != nil {
		t.Fatalf("NewOracle() error: %v", err)
	}
	return o
}

func prices(kv ...string) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = decimal.RequireFromString(kv[i+1])
	}
	return m
}

func TestOracle_UnknownSymbol(t *testing.T) {
	feed := &fakeFeed{}
	o := newOracle(t, feed, &clock{now: time.Now()})

	_, err := o.GetPrice(context.Background(), "NOPE")
	if apperror.GetCode(err) != apperror.CodeUnknownSymbol {
		t.Fatalf("code = %v, want UNKNOWN_SYMBOL", apperror.GetCode(err))
	}
	if feed.callCount() != 0 {
		t.Errorf("feed called %d times, want 0", feed.callCount())
	}
}

func TestOracle_CacheTTL(t *testing.T) {
	feed := &fakeFeed{responses: []feedResponse{
		{prices: prices("aptos", "8.50")},
		{prices: prices("aptos", "9.00")},
	}}
	clk := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	o := newOracle(t, feed, clk)
	ctx := context.Background()

	p, err := o.GetPrice(ctx, "APT")
	if err != nil {
		t.Fatalf("GetPrice() error: %v", err)
	}
	if !p.Equal(decimal.RequireFromString("8.50")) {
		t.Errorf("price = %s, want 8.50", p)
	}

	clk.Advance(59 * time.Second)
	if p, _ = o.GetPrice(ctx, "apt"); !p.Equal(decimal.RequireFromString("8.50")) {
		t.Errorf("cached price = %s, want 8.50", p)
	}
	if feed.callCount() != 1 {
		t.Fatalf("feed calls = %d, want 1", feed.callCount())
	}

	clk.Advance(2 * time.Second)
	if p, _ = o.GetPrice(ctx, "APT"); !p.Equal(decimal.RequireFromString("9.00")) {
		t.Errorf("refreshed price = %s, want 9.00", p)
	}
	if feed.callCount() != 2 {
		t.Errorf("feed calls = %d, want 2", feed.callCount())
	}
}

func TestOracle_Retry(t *testing.T) {
	tests := []struct {
		name      string
		responses []feedResponse
		wantCalls int
		wantErr   bool
	}{
		{
			name: "succeeds on third attempt",
			responses: []feedResponse{
				{err: errors.New("timeout")},
				{prices: prices("aptos", "0")},
				{prices: prices("aptos", "7.25")},
			},
			wantCalls: 3,
		},
		{
			name:      "exhausts attempts",
			responses: []feedResponse{{err: errors.New("boom")}},
			wantCalls: 3,
			wantErr:   true,
		},
		{
			name:      "missing price in body",
			responses: []feedResponse{{prices: prices("bitcoin", "60000")}},
			wantCalls: 3,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := &fakeFeed{responses: tt.responses}
			o := newOracle(t, feed, &clock{now: time.Now()})

			_, err := o.GetPrice(context.Background(), "APT")
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetPrice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && apperror.GetCode(err) != apperror.CodePriceUnavailable {
				t.Errorf("code = %v, want PRICE_UNAVAILABLE", apperror.GetCode(err))
			}
			if feed.callCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", feed.callCount(), tt.wantCalls)
			}
		})
	}
}

func TestOracle_GetPrices_BatchesMisses(t *testing.T) {
	feed := &fakeFeed{responses: []feedResponse{
		{prices: prices("aptos", "8"), err: nil},
		{prices: prices("usd-coin", "1", "tether", "0.999")},
	}}
	o := newOracle(t, feed, &clock{now: time.Now()})
	ctx := context.Background()

	if _, err := o.GetPrice(ctx, "APT"); err != nil {
		t.Fatalf("GetPrice() error: %v", err)
	}

	got, err := o.GetPrices(ctx, "APT", "USDC", "USDT")
	if err != nil {
		t.Fatalf("GetPrices() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d prices, want 3", len(got))
	}
	if feed.callCount() != 2 {
		t.Fatalf("calls = %d, want 2", feed.callCount())
	}
	if ids := feed.calls[1]; len(ids) != 2 {
		t.Errorf("second request ids = %v, want only the misses", ids)
	}
}
