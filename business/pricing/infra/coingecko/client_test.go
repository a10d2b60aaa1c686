package coingecko

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.APIKey = "demo-key"
	cfg.RequestsPerMinute = 0
	c, err := New(cfg, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestClient_FetchUSD(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ids"); got != "aptos,usd-coin" {
			t.Errorf("ids = %q", got)
		}
		if got := r.URL.Query().Get("vs_currencies"); got != "usd" {
			t.Errorf("vs_currencies = %q", got)
		}
		if got := r.Header.Get(apiKeyHeader); got != "demo-key" {
			t.Errorf("api key header = %q", got)
		}
		w.Write([]byte(`{"aptos":{"usd":8.42},"usd-coin":{"usd":1.0001}}`))
	})

	prices, err := c.FetchUSD(context.Background(), []string{"aptos", "usd-coin"})
	if err != nil {
		t.Fatalf("FetchUSD() error: %v", err)
	}
	if prices["aptos"].String() != "8.42" {
		t.Errorf("aptos = %s, want 8.42", prices["aptos"])
	}
	if prices["usd-coin"].String() != "1.0001" {
		t.Errorf("usd-coin = %s, want 1.0001", prices["usd-coin"])
	}
}

func TestClient_FetchUSD_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode apperror.Code
	}{
		{"rate limited", http.StatusTooManyRequests, apperror.CodeRateLimitExceeded},
		{"server error", http.StatusBadGateway, apperror.CodePriceFeedError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.FetchUSD(context.Background(), []string{"aptos"})
			if apperror.GetCode(err) != tt.wantCode {
				t.Errorf("code = %v, want %v", apperror.GetCode(err), tt.wantCode)
			}
		})
	}
}
