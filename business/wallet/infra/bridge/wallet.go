// Package bridge is a wallet that relays JSON-RPC requests over a WebSocket
// to an external wallet (browser extension or mobile app).
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	chaindomain "github.com/fd1az/aptos-dex/business/chain/domain"
	"github.com/fd1az/aptos-dex/business/wallet/app"
	"github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
	"github.com/fd1az/aptos-dex/internal/wsconn"
)

// Name is the adapter name shown to users.
const Name = "Wallet Bridge"

// Bridge methods.
const (
	MethodConnect       = "connect"
	MethodDisconnect    = "disconnect"
	MethodAccount       = "account"
	MethodSignAndSubmit = "signAndSubmitTransaction"
)

// CodeUserRejected is the wallet-standard code for a declined request.
const CodeUserRejected = 4001

// codeDisconnected fails requests still in flight when the socket drops.
const codeDisconnected = -1

// Request is a bridge JSON-RPC request.
type Request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Response is a bridge JSON-RPC response.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// RPCError is the error member of a response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

// Wallet talks to the bridge.
type Wallet struct {
	url string
	log logger.LoggerInterface

	mu           sync.Mutex
	conn         *wsconn.Client
	account      domain.Account
	connected    bool
	pending      map[string]chan Response
	onDisconnect func()
}

// New creates a bridge wallet for url. It does not dial until Connect.
func New(url string, log logger.LoggerInterface) *Wallet {
	return &Wallet{
		url:     url,
		log:     log,
		pending: make(map[string]chan Response),
	}
}

// Name implements app.Wallet.
func (w *Wallet) Name() string { return Name }

// Connected implements app.Wallet.
func (w *Wallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// Account implements app.Wallet.
func (w *Wallet) Account() (domain.Account, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.account, w.connected && w.account.Address != ""
}

// OnDisconnect implements app.DisconnectNotifier.
func (w *Wallet) OnDisconnect(fn func()) {
	w.mu.Lock()
	w.onDisconnect = fn
	w.mu.Unlock()
}

// Connect dials the bridge and asks the wallet to approve the session.
func (w *Wallet) Connect(ctx context.Context) error {
	if err := w.dial(ctx); err != nil {
		return err
	}

	raw, err := w.call(ctx, MethodConnect, nil)
	if err != nil {
		return err
	}

	var acct domain.Account
	if err = json.Unmarshal(raw, &acct); err != nil || acct.Address == "" {
		// Some wallets only approve on connect and report the account separately.
		if raw, err = w.call(ctx, MethodAccount, nil); err != nil {
			return err
		}
		err = json.Unmarshal(raw, &acct)
	}
	if err != nil || acct.Address == "" {
		return apperror.New(apperror.CodeAccountNotFound,
			apperror.WithCause(err),
			apperror.WithContext("bridge connect result"),
			apperror.WithKind(apperror.KindAdapterIncompatible))
	}

	w.mu.Lock()
	w.account = acct
	w.connected = true
	w.mu.Unlock()

	w.log.Info(ctx, "bridge wallet connected", "address", acct.Address)
	return nil
}

// Disconnect ends the session and closes the socket.
func (w *Wallet) Disconnect(ctx context.Context) error {
	w.mu.Lock()
	conn := w.conn
	w.conn = nil
	w.connected = false
	w.account = domain.Account{}
	w.mu.Unlock()

	if conn == nil {
		return nil
	}
	if conn.IsConnected() {
		req := Request{ID: uuid.NewString(), Method: MethodDisconnect}
		if err := conn.SendJSON(ctx, req); err != nil {
			w.log.Debug(ctx, "bridge disconnect notice failed", "error", err)
		}
	}
	return conn.Close()
}

// SignAndSubmit implements app.Signer. The wallet's result is returned
// untouched since its shape differs between wallets.
func (w *Wallet) SignAndSubmit(ctx context.Context, payload chaindomain.EntryFunctionPayload) (domain.SubmitResponse, error) {
	raw, err := w.call(ctx, MethodSignAndSubmit, map[string]any{"payload": payload})
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperror.New(apperror.CodeTransactionFailed,
			apperror.WithCause(err),
			apperror.WithContext("undecodable wallet response"),
			apperror.WithKind(apperror.KindAdapterIncompatible))
	}
	return out, nil
}

func (w *Wallet) dial(ctx context.Context) error {
	w.mu.Lock()
	if w.conn != nil && w.conn.IsConnected() {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	cfg := wsconn.DefaultConfig(w.url, "wallet-bridge")
	cfg.AutoReconnect = false
	conn, err := wsconn.New(cfg)
	if err != nil {
		return err
	}
	conn.OnMessage(w.handleMessage)
	conn.OnStateChange(func(state wsconn.State, err error) {
		if state == wsconn.StateDisconnected {
			w.handleDrop(conn, err)
		}
	})

	if err := conn.Connect(ctx); err != nil {
		conn.Close()
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
	return nil
}

func (w *Wallet) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	w.mu.Lock()
	conn := w.conn
	if conn == nil {
		w.mu.Unlock()
		return nil, apperror.New(apperror.CodeWalletConnectFailed,
			apperror.WithContext("bridge not connected"),
			apperror.WithKind(apperror.KindNetworkFailure))
	}
	req := Request{ID: uuid.NewString(), Method: method, Params: params}
	ch := make(chan Response, 1)
	w.pending[req.ID] = ch
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.pending, req.ID)
		w.mu.Unlock()
	}()

	if err := conn.SendJSON(ctx, req); err != nil {
		return nil, apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithCause(err),
			apperror.WithContext(method),
			apperror.WithKind(apperror.KindNetworkFailure))
	}

	select {
	case <-ctx.Done():
		return nil, apperror.New(apperror.CodeServiceTimeout,
			apperror.WithCause(ctx.Err()),
			apperror.WithContext(method),
			apperror.WithKind(apperror.KindNetworkFailure))
	case resp := <-ch:
		if resp.Error != nil {
			return nil, rpcError(method, resp.Error)
		}
		return resp.Result, nil
	}
}

func rpcError(method string, e *RPCError) error {
	if e.Code == CodeUserRejected {
		return apperror.New(apperror.CodeTransactionFailed,
			apperror.WithCause(e),
			apperror.WithContext(method),
			apperror.WithKind(apperror.KindRejectedByUser))
	}
	if e.Code == codeDisconnected {
		return apperror.New(apperror.CodeWebSocketClosed,
			apperror.WithCause(e),
			apperror.WithContext(method),
			apperror.WithKind(apperror.KindNetworkFailure))
	}
	return apperror.New(apperror.CodeTransactionFailed,
		apperror.WithCause(e),
		apperror.WithContext(method))
}

func (w *Wallet) handleMessage(ctx context.Context, msg []byte) {
	var resp Response
	if err := json.Unmarshal(msg, &resp); err != nil || resp.ID == "" {
		w.log.Debug(ctx, "ignoring bridge message", "bytes", len(msg))
		return
	}

	w.mu.Lock()
	ch, ok := w.pending[resp.ID]
	w.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- resp:
	default:
	}
}

// handleDrop fails in-flight requests and ends the session.
func (w *Wallet) handleDrop(conn *wsconn.Client, cause error) {
	w.mu.Lock()
	if w.conn != conn {
		w.mu.Unlock()
		return
	}
	w.conn = nil
	wasConnected := w.connected
	w.connected = false
	for id, ch := range w.pending {
		select {
		case ch <- Response{ID: id, Error: &RPCError{Code: codeDisconnected, Message: "bridge disconnected"}}:
		default:
		}
	}
	fn := w.onDisconnect
	w.mu.Unlock()

	w.log.Warn(context.Background(), "bridge connection lost", "error", cause)
	if wasConnected && fn != nil {
		fn()
	}
}

// Ensure Wallet implements app.Wallet, app.Signer and app.DisconnectNotifier.
var (
	_ app.Wallet             = (*Wallet)(nil)
	_ app.Signer             = (*Wallet)(nil)
	_ app.DisconnectNotifier = (*Wallet)(nil)
)
