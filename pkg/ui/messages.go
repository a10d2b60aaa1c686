package ui

import (
	"time"

	"github.com/shopspring/decimal"

	accountdomain "github.com/fd1az/aptos-dex/business/account/domain"
	swapapp "github.com/fd1az/aptos-dex/business/swap/app"
	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	walletdomain "github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/notify"
)

// TickMsg drives animations.
type TickMsg struct{}

// StartupMsg reports progress of a startup step.
type StartupMsg struct {
	Step   string // "config", "node", "prices", "wallet"
	Status string // "connecting", "done", "failed"
	Err    error
}

// NodeStatusMsg is sent after each ledger probe.
type NodeStatusMsg struct {
	Connected     bool
	Latency       time.Duration
	LedgerVersion uint64
}

// WalletMsg carries a wallet session change.
type WalletMsg struct {
	Event walletdomain.Event
}

// BalancesMsg carries a new balance snapshot.
type BalancesMsg struct {
	Snapshot accountdomain.Snapshot
}

// PricesMsg carries USD prices by symbol.
type PricesMsg struct {
	Prices map[string]decimal.Decimal
}

// QuoteMsg carries a quote session update.
type QuoteMsg struct {
	Update swapapp.QuoteUpdate
}

// NotificationMsg carries a toast.
type NotificationMsg struct {
	Notification notify.Notification
}

// HistoryMsg carries recent transactions of the connected account.
type HistoryMsg struct {
	Records []accountdomain.TxRecord
	Err     error
}

// OutcomeMsg is the result of a swap submitted from the dashboard.
type OutcomeMsg struct {
	Outcome *swapdomain.Outcome
	Err     error
}

// ErrorMsg is shown in the error panel.
type ErrorMsg struct {
	Error error
}
