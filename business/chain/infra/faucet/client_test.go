package faucet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, nil, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestClient_Fund(t *testing.T) {
	var gotAmount, gotAddress string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/mint" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		gotAmount = r.URL.Query().Get("amount")
		gotAddress = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]string{"0xabc"})
	})

	hashes, err := c.Fund(context.Background(), "0x1", 0)
	if err != nil {
		t.Fatalf("Fund() error: %v", err)
	}
	if len(hashes) != 1 || hashes[0] != "0xabc" {
		t.Errorf("hashes = %v", hashes)
	}
	if gotAmount != "100000000" {
		t.Errorf("amount = %s, want default one APT", gotAmount)
	}
	if gotAddress != "0x1" {
		t.Errorf("address = %s", gotAddress)
	}
}

func TestClient_FundError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Fund(context.Background(), "0x1", 5)
	if apperror.GetCode(err) != apperror.CodeFaucetError {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeFaucetError)
	}
}
