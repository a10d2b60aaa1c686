package aptos

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/aptos-dex/business/chain/app"
	"github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/internal/logger"
)

const testAddr = "0x" + "ab" + "000000000000000000000000000000000000000000000000000000000000cd"

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.PollInterval = 10 * time.Millisecond
	c, err := New(cfg, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_LedgerInfo(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("path = %s, want /", r.URL.Path)
		}
		w.Write([]byte(`{"chain_id":2,"epoch":"10","ledger_version":"12345","block_height":"99","ledger_timestamp":"1700000000000000","node_role":"full_node"}`))
	}))

	info, err := c.LedgerInfo(context.Background())
	if err != nil {
		t.Fatalf("LedgerInfo() error: %v", err)
	}
	if info.ChainID != 2 || info.LedgerVersion != 12345 {
		t.Errorf("got chain %d version %d", info.ChainID, info.LedgerVersion)
	}
}

func TestClient_CoinBalance(t *testing.T) {
	usdc := asset.MustParseCoinType(asset.AddrLayerZero + "::asset::USDC")

	tests := []struct {
		name     string
		coinType asset.CoinType
		handler  http.HandlerFunc
		want     string
		wantCode apperror.Code
	}{
		{
			name:     "native coin store",
			coinType: asset.AptosCoinType,
			handler: func(w http.ResponseWriter, r *http.Request) {
				if !strings.Contains(r.URL.EscapedPath(), "/resource/0x1::coin::CoinStore%3C0x1::aptos_coin::AptosCoin%3E") {
					t.Errorf("unexpected path %s", r.URL.EscapedPath())
				}
				w.Write([]byte(`{"type":"0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>","data":{"coin":{"value":"150000000"}}}`))
			},
			want: "150000000",
		},
		{
			name:     "native falls back to view",
			coinType: asset.AptosCoinType,
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/view" {
					w.Write([]byte(`["42"]`))
					return
				}
				writeJSON(w, http.StatusNotFound, domain.APIError{Message: "Resource not found", ErrorCode: "resource_not_found"})
			},
			want: "42",
		},
		{
			name:     "non-native uses view",
			coinType: usdc,
			handler: func(w http.ResponseWriter, r *http.Request) {
				var req domain.ViewRequest
				json.NewDecoder(r.Body).Decode(&req)
				if req.Function != coinBalanceFn || len(req.TypeArguments) != 1 || req.TypeArguments[0] != usdc.String() {
					t.Errorf("unexpected view request %+v", req)
				}
				w.Write([]byte(`["2500000"]`))
			},
			want: "2500000",
		},
		{
			name:     "missing store",
			coinType: usdc,
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, domain.APIError{Message: "not found", ErrorCode: "resource_not_found"})
			},
			wantCode: apperror.CodeResourceNotFound,
		},
		{
			name:     "negative store value",
			coinType: asset.AptosCoinType,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"data":{"coin":{"value":"-5"}}}`))
			},
			wantCode: apperror.CodeNodeRequestFailed,
		},
		{
			name:     "view value above u64",
			coinType: usdc,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`["18446744073709551616"]`))
			},
			wantCode: apperror.CodeNodeRequestFailed,
		},
		{
			name:     "max u64",
			coinType: usdc,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`["18446744073709551615"]`))
			},
			want: "18446744073709551615",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			got, err := c.CoinBalance(context.Background(), testAddr, tt.coinType)
			if tt.wantCode != "" {
				if apperror.GetCode(err) != tt.wantCode {
					t.Fatalf("error code = %v, want %v (err %v)", apperror.GetCode(err), tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CoinBalance() error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("balance = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     domain.APIError
		wantKind apperror.Kind
	}{
		{"insufficient balance", http.StatusBadRequest, domain.APIError{Message: "Move abort: INSUFFICIENT_BALANCE_FOR_TRANSACTION_FEE", ErrorCode: "vm_error"}, apperror.KindInsufficientBalance},
		{"server error", http.StatusServiceUnavailable, domain.APIError{Message: "overloaded"}, apperror.KindNetworkFailure},
		{"bad request", http.StatusBadRequest, domain.APIError{Message: "invalid payload"}, apperror.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			_, err := c.SubmitTransaction(context.Background(), domain.SignedTransaction{})
			if apperror.GetCode(err) != apperror.CodeNodeRequestFailed {
				t.Fatalf("code = %v, want NODE_REQUEST_FAILED", apperror.GetCode(err))
			}
			if got := apperror.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestClient_EncodeSubmission(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions/encode_submission" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var txn domain.RawTransaction
		if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if txn.SequenceNumber != 7 {
			t.Errorf("sequence = %d, want 7", txn.SequenceNumber)
		}
		w.Write([]byte(`"0xb5e97db07fa0bd0e5598aa3643a9bc6f6693bddc1a9fec9e674a461eaa00b193"`))
	}))

	msg, err := c.EncodeSubmission(context.Background(), domain.RawTransaction{Sender: testAddr, SequenceNumber: 7})
	if err != nil {
		t.Fatalf("EncodeSubmission() error: %v", err)
	}
	if len(msg) != 32 {
		t.Errorf("len = %d, want 32", len(msg))
	}
}

func TestClient_WaitForTransaction(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			writeJSON(w, http.StatusNotFound, domain.APIError{Message: "not found", ErrorCode: "transaction_not_found"})
		case 2:
			w.Write([]byte(`{"type":"pending_transaction","hash":"0xabc"}`))
		default:
			w.Write([]byte(`{"type":"user_transaction","hash":"0xabc","success":true,"vm_status":"Executed successfully","version":"55"}`))
		}
	}))

	tx, err := c.WaitForTransaction(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("WaitForTransaction() error: %v", err)
	}
	if !tx.Success || tx.Version != 55 {
		t.Errorf("tx = %+v", tx)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClient_WaitForTransaction_Timeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type":"pending_transaction","hash":"0xabc"}`))
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.WaitForTransaction(ctx, "0xabc")
	if apperror.GetCode(err) != apperror.CodeTxConfirmTimeout {
		t.Fatalf("code = %v, want TX_CONFIRM_TIMEOUT (err %v)", apperror.GetCode(err), err)
	}
}

func TestClient_FallbackNode(t *testing.T) {
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"gas_estimate":150}`))
	}))
	defer fallback.Close()

	cfg := DefaultConfig("http://127.0.0.1:1")
	cfg.FallbackURL = fallback.URL
	cfg.Timeout = time.Second
	c, err := New(cfg, logger.New(io.Discard, logger.LevelError, "test", nil))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	price, err := c.EstimateGasPrice(context.Background())
	if err != nil {
		t.Fatalf("EstimateGasPrice() error: %v", err)
	}
	if price != 150 {
		t.Errorf("price = %d, want 150", price)
	}
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, domain.APIError{Message: "not found", ErrorCode: "account_not_found"})
	}))

	for i := 0; i < 10; i++ {
		_, err := c.Account(context.Background(), testAddr)
		if !app.IsNotFound(err) {
			t.Fatalf("call %d: expected not found, got %v", i, err)
		}
	}
}
