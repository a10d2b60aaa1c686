package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

// fakeBridge answers each request with reply(method).
func fakeBridge(t *testing.T, reply func(req Request) Response) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("accept: %v", err)
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var req Request
			if err := json.Unmarshal(data, &req); err != nil {
				t.Errorf("bad request: %v", err)
				return
			}
			if req.Method == MethodDisconnect {
				return
			}
			resp := reply(req)
			resp.ID = req.ID
			out, _ := json.Marshal(resp)
			if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newWallet(url string) *Wallet {
	return New(url, logger.New(io.Discard, logger.LevelError, "test", nil))
}

func TestWallet_ConnectAndSubmit(t *testing.T) {
	url := fakeBridge(t, func(req Request) Response {
		switch req.Method {
		case MethodConnect:
			return Response{Result: json.RawMessage(`{"address":"0xabc","publicKey":"0x01"}`)}
		case MethodSignAndSubmit:
			return Response{Result: json.RawMessage(`{"result":{"hash":"0xdeadbeef"}}`)}
		}
		return Response{Error: &RPCError{Code: -32601, Message: "unknown method"}}
	})

	w := newWallet(url)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.Connect(ctx); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer w.Disconnect(context.Background())

	acct, ok := w.Account()
	if !ok || acct.Address != "0xabc" {
		t.Fatalf("account = %+v, ok = %v", acct, ok)
	}

	resp, err := w.SignAndSubmit(ctx, chaindomain.NewEntryFunctionPayload("0x1::m::f", nil))
	if err != nil {
		t.Fatalf("SignAndSubmit() error: %v", err)
	}
	m, ok := resp.(map[string]any)
	if !ok {
		t.Fatalf("response = %#v, want object", resp)
	}
	inner, _ := m["result"].(map[string]any)
	if inner["hash"] != "0xdeadbeef" {
		t.Errorf("nested hash = %v", inner["hash"])
	}
}

func TestWallet_ConnectFallsBackToAccount(t *testing.T) {
	url := fakeBridge(t, func(req Request) Response {
		if req.Method == MethodConnect {
			return Response{Result: json.RawMessage(`true`)}
		}
		return Response{Result: json.RawMessage(`{"address":"0xfeed"}`)}
	})

	w := newWallet(url)
	if err := w.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer w.Disconnect(context.Background())

	if acct, _ := w.Account(); acct.Address != "0xfeed" {
		t.Errorf("address = %s, want 0xfeed", acct.Address)
	}
}

func TestWallet_UserRejection(t *testing.T) {
	url := fakeBridge(t, func(req Request) Response {
		if req.Method == MethodConnect {
			return Response{Result: json.RawMessage(`{"address":"0xabc"}`)}
		}
		return Response{Error: &RPCError{Code: CodeUserRejected, Message: "User rejected the request"}}
	})

	w := newWallet(url)
	if err := w.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer w.Disconnect(context.Background())

	_, err := w.SignAndSubmit(context.Background(), chaindomain.NewEntryFunctionPayload("0x1::m::f", nil))
	if got := apperror.KindOf(err); got != apperror.KindRejectedByUser {
		t.Errorf("kind = %v, want rejected_by_user", got)
	}
	if msg := apperror.UserMessage(err); msg != "Transaction was rejected by user" {
		t.Errorf("user message = %q", msg)
	}
}

func TestWallet_SubmitWithoutConnect(t *testing.T) {
	w := newWallet("ws://127.0.0.1:1")
	_, err := w.SignAndSubmit(context.Background(), chaindomain.NewEntryFunctionPayload("0x1::m::f", nil))
	if got := apperror.KindOf(err); got != apperror.KindNetworkFailure {
		t.Errorf("kind = %v, want network_failure", got)
	}
}
