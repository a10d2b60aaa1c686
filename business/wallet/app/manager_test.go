package app_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/fd1az/aptos-dex/business/wallet/app"
	"github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

type stubWallet struct {
	name       string
	connectErr error
	connected  bool
	drop       func()
}

func (s *stubWallet) Name() string    { return s.name }
func (s *stubWallet) Connected() bool { return s.connected }
func (s *stubWallet) Connect(context.Context) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected = true
	return nil
}
func (s *stubWallet) Disconnect(context.Context) error { s.connected = false; return nil }
func (s *stubWallet) Account() (domain.Account, bool) {
	return domain.Account{Address: "0x1"}, s.connected
}
func (s *stubWallet) OnDisconnect(fn func()) { s.drop = fn }

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) record(ev domain.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newManager() *app.Manager {
	return app.NewManager(logger.New(io.Discard, logger.LevelError, "test", nil))
}

func TestManager_NothingSelectedByDefault(t *testing.T) {
	m := newManager()
	m.Register(&stubWallet{name: "a"})

	if _, ok := m.Selected(); ok {
		t.Fatal("expected no selection")
	}
	_, err := m.Connect(context.Background())
	if apperror.GetCode(err) != apperror.CodeWalletNotSelected {
		t.Errorf("code = %v, want WALLET_NOT_SELECTED", apperror.GetCode(err))
	}
}

func TestManager_SelectConnectDisconnect(t *testing.T) {
	m := newManager()
	w := &stubWallet{name: "a"}
	m.Register(w)

	rec := &recorder{}
	unsubscribe := m.Subscribe(rec.record)
	defer unsubscribe()

	if err := m.Select("missing"); err == nil {
		t.Fatal("expected error selecting unknown wallet")
	}
	if err := m.Select("a"); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if _, err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := m.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}

	want := []domain.EventType{domain.EventSelected, domain.EventConnected, domain.EventDisconnected}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestManager_ConnectFailureKeepsKind(t *testing.T) {
	m := newManager()
	cause := apperror.New(apperror.CodeTransactionFailed, apperror.WithKind(apperror.KindRejectedByUser))
	m.Register(&stubWallet{name: "a", connectErr: cause})
	m.Select("a")

	_, err := m.Connect(context.Background())
	if apperror.GetCode(err) != apperror.CodeWalletConnectFailed {
		t.Errorf("code = %v, want WALLET_CONNECT_FAILED", apperror.GetCode(err))
	}
	if apperror.KindOf(err) != apperror.KindRejectedByUser {
		t.Errorf("kind = %v, want rejected_by_user", apperror.KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("cause not preserved")
	}
}

func TestManager_AdapterDrop(t *testing.T) {
	m := newManager()
	w := &stubWallet{name: "bridge"}
	m.Register(w)

	rec := &recorder{}
	m.Subscribe(rec.record)

	w.drop()
	if got := rec.types(); len(got) != 1 || got[0] != domain.EventDisconnected {
		t.Errorf("events = %v, want [disconnected]", got)
	}
}
