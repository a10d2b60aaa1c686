package asset

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is a thread-safe registry of listed tokens.
type Registry struct {
	byType   map[CoinType]*Token
	bySymbol map[string]*Token
	order    []*Token
	mu       sync.RWMutex
}

// NewRegistry creates a new empty token registry.
func NewRegistry() *Registry {
	return &Registry{
		byType:   make(map[CoinType]*Token),
		bySymbol: make(map[string]*Token),
	}
}

// Register adds a token to the registry.
// Panics if the symbol or coin type is already registered.
func (r *Registry) Register(t *Token) {
	if t == nil {
		panic("asset: cannot register nil token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byType[t.CoinType()]; exists {
		panic(fmt.Sprintf("asset: %s already registered", t.CoinType()))
	}
	sym := strings.ToUpper(t.Symbol())
	if _, exists := r.bySymbol[sym]; exists {
		panic(fmt.Sprintf("asset: symbol %s already registered", t.Symbol()))
	}

	r.byType[t.CoinType()] = t
	r.bySymbol[sym] = t
	r.order = append(r.order, t)
}

// BySymbol looks up a token by symbol, case-insensitively.
func (r *Registry) BySymbol(symbol string) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return t, ok
}

// ByCoinType looks up a token by its type tag.
func (r *Registry) ByCoinType(ct CoinType) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byType[ct]
	return t, ok
}

// All returns the tokens in registration order.
func (r *Registry) All() []*Token {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Token, len(r.order))
	copy(result, r.order)
	return result
}

// Symbols returns the registered symbols sorted alphabetically.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, t.Symbol())
	}
	sort.Strings(out)
	return out
}

// Count returns the number of registered tokens.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ForNetwork returns a copy of the registry with verification flags for the
// given network. Bridged coins only exist on mainnet.
func (r *Registry) ForNetwork(network string) *Registry {
	mainnet := strings.EqualFold(network, "mainnet")
	out := NewRegistry()
	for _, t := range r.All() {
		out.Register(t.withVerified(t.IsNative() || mainnet))
	}
	return out
}
