package ui

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	accountdomain "github.com/fd1az/aptos-dex/business/account/domain"
	swapapp "github.com/fd1az/aptos-dex/business/swap/app"
	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	walletdomain "github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
)

type fakeBackend struct {
	mu      sync.Mutex
	inputs  []swapdomain.QuoteRequest
	swaps   []swapdomain.SwapRequest
	outcome *swapdomain.Outcome
	swapErr error
}

func (f *fakeBackend) SetQuoteInput(req swapdomain.QuoteRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, req)
}

func (f *fakeBackend) Swap(_ context.Context, req swapdomain.SwapRequest) (*swapdomain.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swaps = append(f.swaps, req)
	return f.outcome, f.swapErr
}

func (f *fakeBackend) ConnectWallet(context.Context) error   { return nil }
func (f *fakeBackend) RefreshBalances(context.Context) error { return nil }
func (f *fakeBackend) History(context.Context, string) ([]accountdomain.TxRecord, error) {
	return nil, nil
}

func (f *fakeBackend) lastInput(t *testing.T) swapdomain.QuoteRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		t.Fatal("no quote input sent")
	}
	return f.inputs[len(f.inputs)-1]
}

func dashboard(t *testing.T, backend Backend) Model {
	t.Helper()
	m := New(Options{
		Network: "testnet",
		Tokens:  []*asset.Token{asset.APT, asset.USDC, asset.USDT},
		Backend: backend,
	})
	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = update(t, m, NodeStatusMsg{Connected: true, LedgerVersion: 42})
	if m.phase != PhaseDashboard {
		t.Fatalf("phase = %s, want dashboard", m.phase)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// run executes cmd and any batched commands, returning the non-nil messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func typeKeys(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
		run(cmd)
	}
	return m
}

func testQuote() *swapdomain.Quote {
	return &swapdomain.Quote{
		In:              asset.APT,
		Out:             asset.USDC,
		InputAmount:     "1.500000",
		OutputAmount:    "14.955000",
		MinimumReceived: "14.880225",
		PriceImpact:     "0.015000",
		Fee:             "0.004500",
		ExchangeRate:    "10.000000",
		SlippagePct:     "0.5",
		Model:           swapdomain.ModelOracle,
	}
}

func TestModel_WelcomeAdvances(t *testing.T) {
	m := New(Options{Network: "testnet"})
	if m.phase != PhaseWelcome {
		t.Fatalf("phase = %s", m.phase)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.phase != PhaseStartup {
		t.Fatalf("phase = %s, want startup", m.phase)
	}
	if got := m.startupSteps["config"].Status; got != "done" {
		t.Errorf("config step = %s", got)
	}

	m = update(t, m, NodeStatusMsg{Connected: false})
	if m.phase != PhaseDashboard {
		t.Errorf("unreachable node should still show the dashboard, phase = %s", m.phase)
	}
	if got := m.startupSteps["node"].Status; got != "failed" {
		t.Errorf("node step = %s", got)
	}
}

func TestModel_AmountInputIsNumeric(t *testing.T) {
	backend := &fakeBackend{}
	m := dashboard(t, backend)

	m = typeKeys(t, m, "1x.5q")
	if got := m.amount.Value(); got != "1.5" {
		t.Fatalf("amount = %q, want 1.5", got)
	}

	req := backend.lastInput(t)
	if req.Amount != "1.5" || req.In != asset.APT || req.Out != asset.USDC {
		t.Errorf("input = %+v", req)
	}
	if !req.SlippagePct.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("slippage = %s", req.SlippagePct)
	}
}

func TestModel_TokenCyclingSkipsOtherSide(t *testing.T) {
	m := dashboard(t, &fakeBackend{})

	// in=APT(0) out=USDC(1): next "from" skips USDC
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.inIdx != 2 {
		t.Errorf("inIdx = %d, want 2", m.inIdx)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.outIdx != 0 {
		t.Errorf("outIdx = %d, want 0", m.outIdx)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	if m.inIdx != 0 || m.outIdx != 2 {
		t.Errorf("after flip in=%d out=%d", m.inIdx, m.outIdx)
	}
}

func TestModel_SlippageCycles(t *testing.T) {
	m := dashboard(t, &fakeBackend{})
	want := []string{"1", "0.1", "0.5"}
	for _, w := range want {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
		if !m.slippage.Equal(decimal.RequireFromString(w)) {
			t.Fatalf("slippage = %s, want %s", m.slippage, w)
		}
	}
}

func TestModel_StaleQuoteDropped(t *testing.T) {
	m := dashboard(t, &fakeBackend{})

	m = update(t, m, QuoteMsg{Update: swapapp.QuoteUpdate{Quote: testQuote(), Generation: 3}})
	if m.current == nil {
		t.Fatal("quote not applied")
	}

	m = update(t, m, QuoteMsg{Update: swapapp.QuoteUpdate{
		Err:        apperror.New(apperror.CodePriceUnavailable),
		Generation: 2,
	}})
	if m.current == nil {
		t.Error("older generation replaced the quote")
	}

	m = update(t, m, QuoteMsg{Update: swapapp.QuoteUpdate{
		Request:    swapdomain.QuoteRequest{Amount: "2"},
		Generation: 4,
	}})
	if m.current != nil {
		t.Error("new input should clear the quote")
	}
	if !strings.Contains(m.quote.View(), "Fetching") {
		t.Errorf("quote view = %q", m.quote.View())
	}
}

func TestModel_SwapFromQuote(t *testing.T) {
	backend := &fakeBackend{
		outcome: &swapdomain.Outcome{
			Action: swapdomain.ActionSwap,
			Status: swapdomain.StatusConfirmed,
			Hash:   "0xabc",
		},
	}
	m := dashboard(t, backend)
	m = typeKeys(t, m, "1.5")
	m = update(t, m, QuoteMsg{Update: swapapp.QuoteUpdate{Quote: testQuote(), Generation: 100}})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if !m.swapping {
		t.Fatal("expected swapping state")
	}

	// A second enter while swapping is ignored.
	_, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if again != nil {
		t.Error("double submit produced a command")
	}

	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v", msgs)
	}
	if len(backend.swaps) != 1 {
		t.Fatalf("swaps = %d", len(backend.swaps))
	}
	req := backend.swaps[0]
	if req.AmountIn != "1.500000" || req.MinimumOut != "14.880225" || req.ExpectedOut != "14.955000" {
		t.Errorf("swap request = %+v", req)
	}

	m = update(t, m, msgs[0])
	if m.swapping {
		t.Error("still swapping after outcome")
	}
	if m.history.Len() != 1 {
		t.Errorf("history rows = %d", m.history.Len())
	}
	if m.amount.Value() != "" {
		t.Errorf("amount not cleared: %q", m.amount.Value())
	}
}

func TestModel_SwapFailureShowsError(t *testing.T) {
	backend := &fakeBackend{
		swapErr: apperror.New(apperror.CodeTransactionFailed, apperror.WithKind(apperror.KindRejectedByUser)),
	}
	m := dashboard(t, backend)
	m = update(t, m, QuoteMsg{Update: swapapp.QuoteUpdate{Quote: testQuote(), Generation: 1}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := run(cmd)
	m = update(t, m, msgs[0])

	if len(m.errors) != 1 {
		t.Fatalf("errors = %v", m.errors)
	}
	if m.errors[0].Message != apperror.UserMessage(backend.swapErr) {
		t.Errorf("error message = %q", m.errors[0].Message)
	}
}

func TestModel_SwapBlockedByBalance(t *testing.T) {
	backend := &fakeBackend{}
	m := dashboard(t, backend)
	m = update(t, m, WalletMsg{Event: walletdomain.Event{
		Type:    walletdomain.EventConnected,
		Wallet:  "Local Key",
		Account: walletdomain.Account{Address: "0xa11ce"},
	}})
	m = update(t, m, BalancesMsg{Snapshot: accountdomain.Snapshot{
		Address:  "0xa11ce",
		Balances: []accountdomain.Balance{{Token: asset.APT, Amount: asset.NewAmount(asset.APT, big.NewInt(100_000_000)), Display: "1.0000"}},
	}})
	m = update(t, m, QuoteMsg{Update: swapapp.QuoteUpdate{Quote: testQuote(), Generation: 1}})

	if !strings.Contains(m.renderSwapForm(), "Insufficient balance") {
		t.Error("swap button should show the balance shortfall")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd != nil || m.swapping {
		t.Fatal("swap started above the balance")
	}
	if len(m.errors) != 1 || m.errors[0].Message != "Insufficient balance. Get test APT from the faucet." {
		t.Errorf("errors = %+v", m.errors)
	}

	m = update(t, m, BalancesMsg{Snapshot: accountdomain.Snapshot{
		Address:  "0xa11ce",
		Balances: []accountdomain.Balance{{Token: asset.APT, Amount: asset.NewAmount(asset.APT, big.NewInt(150_000_000)), Display: "1.5000"}},
	}})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	if len(backend.swaps) != 1 {
		t.Errorf("swaps = %d, want 1 once the balance covers the amount", len(backend.swaps))
	}
}

func TestModel_WalletEvents(t *testing.T) {
	m := dashboard(t, &fakeBackend{})

	m = update(t, m, WalletMsg{Event: walletdomain.Event{
		Type:    walletdomain.EventConnected,
		Wallet:  "Local Key",
		Account: walletdomain.Account{Address: "0x1234567890abcdef"},
	}})
	if m.address != "0x1234567890abcdef" {
		t.Errorf("address = %q", m.address)
	}
	if m.startupSteps["wallet"].Status != "done" {
		t.Error("wallet step not done")
	}

	m = update(t, m, BalancesMsg{Snapshot: accountdomain.Snapshot{
		Address:  m.address,
		Balances: []accountdomain.Balance{accountdomain.ZeroBalanceOf(asset.APT)},
	}})
	if len(m.balances.Rows()) != 1 {
		t.Errorf("balance rows = %d", len(m.balances.Rows()))
	}

	m = update(t, m, WalletMsg{Event: walletdomain.Event{Type: walletdomain.EventDisconnected, Wallet: "Local Key"}})
	if m.address != "" || len(m.balances.Rows()) != 0 {
		t.Error("disconnect did not clear the session")
	}
}

func TestModel_ErrorsCapped(t *testing.T) {
	m := dashboard(t, &fakeBackend{})
	for i := 0; i < 5; i++ {
		m = update(t, m, ErrorMsg{Error: errors.New("boom")})
	}
	if len(m.errors) != 3 {
		t.Errorf("errors = %d, want 3", len(m.errors))
	}
}
