package app

import (
	"context"
	"sort"
	"sync"

	"github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/logger"
)

// Manager tracks the available adapters and the selected one. Nothing is
// selected until Select is called.
type Manager struct {
	mu       sync.RWMutex
	wallets  map[string]Wallet
	selected Wallet

	subsMu sync.RWMutex
	subs   map[int]func(domain.Event)
	nextID int

	log logger.LoggerInterface
}

// NewManager creates an empty manager.
func NewManager(log logger.LoggerInterface) *Manager {
	return &Manager{
		wallets: make(map[string]Wallet),
		subs:    make(map[int]func(domain.Event)),
		log:     log,
	}
}

// Register adds an adapter. Adapters that can drop their own session
// are watched so subscribers see the disconnect.
func (m *Manager) Register(w Wallet) {
	m.mu.Lock()
	m.wallets[w.Name()] = w
	m.mu.Unlock()

	if dn, ok := w.(DisconnectNotifier); ok {
		dn.OnDisconnect(func() {
			m.log.Warn(context.Background(), "wallet session dropped", "wallet", w.Name())
			m.emit(domain.Event{Type: domain.EventDisconnected, Wallet: w.Name()})
		})
	}
}

// Names lists registered adapters.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.wallets))
	for name := range m.wallets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select makes name the active wallet. An empty name clears the selection.
func (m *Manager) Select(name string) error {
	m.mu.Lock()
	if name == "" {
		m.selected = nil
		m.mu.Unlock()
		return nil
	}
	w, ok := m.wallets[name]
	if !ok {
		m.mu.Unlock()
		return apperror.New(apperror.CodeWalletNotSelected, apperror.WithContext("unknown wallet "+name))
	}
	m.selected = w
	m.mu.Unlock()

	m.emit(domain.Event{Type: domain.EventSelected, Wallet: name})
	return nil
}

// Selected returns the active wallet.
func (m *Manager) Selected() (Wallet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected, m.selected != nil
}

// Connect connects the selected wallet.
func (m *Manager) Connect(ctx context.Context) (domain.Account, error) {
	w, ok := m.Selected()
	if !ok {
		return domain.Account{}, apperror.New(apperror.CodeWalletNotSelected)
	}
	if err := w.Connect(ctx); err != nil {
		return domain.Account{}, apperror.New(apperror.CodeWalletConnectFailed,
			apperror.WithCause(err),
			apperror.WithContext(w.Name()),
			apperror.WithKind(apperror.KindOf(err)))
	}

	acct, _ := w.Account()
	m.log.Info(ctx, "wallet connected", "wallet", w.Name(), "address", acct.Address)
	m.emit(domain.Event{Type: domain.EventConnected, Wallet: w.Name(), Account: acct})
	return acct, nil
}

// Disconnect disconnects the selected wallet.
func (m *Manager) Disconnect(ctx context.Context) error {
	w, ok := m.Selected()
	if !ok {
		return nil
	}
	err := w.Disconnect(ctx)
	m.log.Info(ctx, "wallet disconnected", "wallet", w.Name())
	m.emit(domain.Event{Type: domain.EventDisconnected, Wallet: w.Name()})
	return err
}

// Subscribe registers fn for wallet events and returns an unsubscribe func.
func (m *Manager) Subscribe(fn func(domain.Event)) func() {
	m.subsMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

// NotifyConnected announces a connection made outside Connect, e.g. by
// the submitter's single connect attempt.
func (m *Manager) NotifyConnected(w Wallet) {
	acct, _ := w.Account()
	m.emit(domain.Event{Type: domain.EventConnected, Wallet: w.Name(), Account: acct})
}

func (m *Manager) emit(ev domain.Event) {
	m.subsMu.RLock()
	fns := make([]func(domain.Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
