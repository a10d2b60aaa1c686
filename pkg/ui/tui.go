package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	accountdomain "github.com/fd1az/aptos-dex/business/account/domain"
	swapdomain "github.com/fd1az/aptos-dex/business/swap/domain"
	walletdomain "github.com/fd1az/aptos-dex/business/wallet/domain"
	"github.com/fd1az/aptos-dex/internal/apperror"
	"github.com/fd1az/aptos-dex/internal/asset"
	"github.com/fd1az/aptos-dex/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "done", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"
	PhaseStartup   Phase = "startup"
	PhaseDashboard Phase = "dashboard"
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// DefaultSwapTimeout bounds a swap submitted from the dashboard, wallet
// approval included.
const DefaultSwapTimeout = 3 * time.Minute

var stepOrder = []string{"config", "node", "prices", "wallet"}

var slippagePresets = []decimal.Decimal{
	decimal.RequireFromString("0.1"),
	decimal.RequireFromString("0.5"),
	decimal.RequireFromString("1"),
}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Backend performs the dashboard's actions. Results that are broadcast by
// the services (quotes, balances, wallet events, notifications) reach the
// model through Send, not through these return values.
type Backend interface {
	SetQuoteInput(req swapdomain.QuoteRequest)
	Swap(ctx context.Context, req swapdomain.SwapRequest) (*swapdomain.Outcome, error)
	ConnectWallet(ctx context.Context) error
	RefreshBalances(ctx context.Context) error
	History(ctx context.Context, address string) ([]accountdomain.TxRecord, error)
}

// Options configures the dashboard.
type Options struct {
	Network     string
	Tokens      []*asset.Token
	Slippage    decimal.Decimal
	SwapTimeout time.Duration
	Backend     Backend
}

// inputFeed forwards amount changes to the backend in order. Commands run
// on their own goroutines, so an older input may arrive after a newer one.
type inputFeed struct {
	mu      sync.Mutex
	seq     uint64
	backend Backend
}

func (f *inputFeed) push(seq uint64, req swapdomain.QuoteRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seq <= f.seq {
		return
	}
	f.seq = seq
	f.backend.SetQuoteInput(req)
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	status   *components.StatusComponent
	balances *components.BalancesComponent
	quote    *components.QuoteComponent
	history  *components.HistoryComponent
	notes    *components.NotificationsComponent
	amount   textinput.Model
	help     help.Model
	keys     KeyMap

	backend     Backend
	feed        *inputFeed
	inputSeq    uint64
	tokens      []*asset.Token
	inIdx       int
	outIdx      int
	slippage    decimal.Decimal
	swapTimeout time.Duration

	// Phase state
	phase        Phase
	welcomeStart time.Time
	startupSteps map[string]*StartupStep
	startupTime  time.Time

	// State
	ready    bool
	quitting bool
	width    int
	height   int
	address  string
	snapshot accountdomain.Snapshot
	prices   map[string]decimal.Decimal
	current  *swapdomain.Quote
	lastGen  uint64
	swapping bool
	errors   []ErrorEntry
}

// New creates a new TUI model.
func New(opts Options) Model {
	if opts.SwapTimeout <= 0 {
		opts.SwapTimeout = DefaultSwapTimeout
	}
	if !opts.Slippage.IsPositive() {
		opts.Slippage = slippagePresets[1]
	}

	amount := textinput.New()
	amount.Placeholder = "0.0"
	amount.Prompt = ""
	amount.CharLimit = 32
	amount.Width = 20
	amount.Focus()

	outIdx := 0
	if len(opts.Tokens) > 1 {
		outIdx = 1
	}

	now := time.Now()
	return Model{
		status:      components.NewStatusComponent(opts.Network),
		balances:    components.NewBalancesComponent(),
		quote:       components.NewQuoteComponent(),
		history:     components.NewHistoryComponent(8),
		notes:       components.NewNotificationsComponent(6),
		amount:      amount,
		help:        help.New(),
		keys:        DefaultKeyMap(),
		backend:     opts.Backend,
		feed:        &inputFeed{backend: opts.Backend},
		tokens:      opts.Tokens,
		outIdx:      outIdx,
		slippage:    opts.Slippage,
		swapTimeout: opts.SwapTimeout,
		phase:       PhaseWelcome,
		startupSteps: map[string]*StartupStep{
			"config": {Name: "Loading configuration", Status: "pending"},
			"node":   {Name: "Connecting to Aptos node", Status: "pending"},
			"prices": {Name: "Fetching prices", Status: "pending"},
			"wallet": {Name: "Connecting wallet", Status: "pending"},
		},
		welcomeStart: now,
		startupTime:  now,
		prices:       make(map[string]decimal.Decimal),
		errors:       make([]ErrorEntry, 0, 3),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), textinput.Blink)
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.startModules()
		}
		return m, tickCmd()

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		if msg.Err != nil {
			m.addError(msg.Err)
		}
		m.maybeShowDashboard()

	case NodeStatusMsg:
		m.status.SetNode(msg.Connected, msg.Latency, msg.LedgerVersion)
		if msg.Connected {
			m.startupSteps["node"].Status = "done"
		} else if m.startupSteps["node"].Status != "done" {
			m.startupSteps["node"].Status = "failed"
		}
		m.maybeShowDashboard()

	case WalletMsg:
		return m.handleWallet(msg.Event)

	case BalancesMsg:
		m.applySnapshot(msg.Snapshot)

	case PricesMsg:
		for sym, p := range msg.Prices {
			m.prices[sym] = p
		}
		m.balances.SetPrices(m.prices)
		m.startupSteps["prices"].Status = "done"
		m.maybeShowDashboard()

	case QuoteMsg:
		m.applyQuote(msg)

	case NotificationMsg:
		n := msg.Notification
		m.notes.Add(components.NotificationRow{
			Level:   string(n.Level),
			Title:   n.Title,
			Message: n.Message,
			Link:    n.Link,
			At:      n.At,
		})

	case HistoryMsg:
		if msg.Err != nil {
			m.addError(msg.Err)
			break
		}
		rows := make([]components.HistoryRow, 0, len(msg.Records))
		for _, r := range msg.Records {
			rows = append(rows, components.HistoryRow{
				Time:   r.Timestamp.Local().Format("15:04:05"),
				Type:   string(r.Type),
				Status: string(r.Status),
				Hash:   r.Hash,
			})
		}
		m.history.Update(rows)

	case OutcomeMsg:
		m.swapping = false
		if out := msg.Outcome; out != nil {
			m.history.Prepend(components.HistoryRow{
				Time:   time.Now().Format("15:04:05"),
				Type:   string(out.Action),
				Status: string(out.Status),
				Hash:   out.Hash,
			})
			if out.Status == swapdomain.StatusConfirmed {
				m.amount.SetValue("")
				cmd := m.pushInput()
				return m, cmd
			}
		}
		if msg.Err != nil {
			m.addError(msg.Err)
		}

	case ErrorMsg:
		m.addError(msg.Error)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	// During welcome phase, any other key skips to startup
	if m.phase == PhaseWelcome {
		m.startModules()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.NextIn):
		m.inIdx = m.nextToken(m.inIdx, m.outIdx)
		cmd := m.pushInput()
		return m, cmd
	case key.Matches(msg, m.keys.NextOut):
		m.outIdx = m.nextToken(m.outIdx, m.inIdx)
		cmd := m.pushInput()
		return m, cmd
	case key.Matches(msg, m.keys.Flip):
		m.inIdx, m.outIdx = m.outIdx, m.inIdx
		cmd := m.pushInput()
		return m, cmd
	case key.Matches(msg, m.keys.Slippage):
		m.slippage = nextSlippage(m.slippage)
		cmd := m.pushInput()
		return m, cmd
	case key.Matches(msg, m.keys.Connect):
		return m, m.connectCmd()
	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.refreshCmd(), m.historyCmd())
	case key.Matches(msg, m.keys.Clear):
		m.notes.Clear()
		m.errors = m.errors[:0]
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.history.ScrollUp()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.history.ScrollDown()
		return m, nil
	case key.Matches(msg, m.keys.Swap):
		return m.submit()
	}

	if msg.Type == tea.KeyRunes && !numeric(msg.Runes) {
		return m, nil
	}
	before := m.amount.Value()
	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)
	if m.amount.Value() != before {
		push := m.pushInput()
		return m, tea.Batch(cmd, push)
	}
	return m, cmd
}

func (m *Model) startModules() {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	m.startupSteps["config"].Status = "done"
	// Trigger callback directly (don't use Send() from within Update)
	if OnStartModules != nil {
		go OnStartModules()
	}
}

// maybeShowDashboard leaves the startup screen once the node answered.
// Prices and wallet keep loading on the dashboard.
func (m *Model) maybeShowDashboard() {
	if m.phase != PhaseStartup {
		return
	}
	switch m.startupSteps["node"].Status {
	case "done", "failed":
		m.phase = PhaseDashboard
	}
}

func (m Model) handleWallet(ev walletdomain.Event) (tea.Model, tea.Cmd) {
	switch ev.Type {
	case walletdomain.EventConnected:
		m.address = ev.Account.Address
		m.status.SetWallet(ev.Wallet, ev.Account.Address)
		m.startupSteps["wallet"].Status = "done"
		return m, m.historyCmd()
	case walletdomain.EventDisconnected:
		m.address = ""
		m.status.SetWallet(ev.Wallet, "")
		m.balances.Update("", nil)
		m.history.Update(nil)
	case walletdomain.EventSelected:
		m.status.SetWallet(ev.Wallet, m.address)
	}
	return m, nil
}

func (m *Model) applySnapshot(s accountdomain.Snapshot) {
	m.snapshot = s
	if s.Address == "" {
		m.balances.Update("", nil)
		return
	}
	rows := make([]components.BalanceRow, 0, len(s.Balances))
	for _, b := range s.Balances {
		rows = append(rows, components.BalanceRow{
			Symbol:   b.Token.Symbol(),
			Balance:  b.Display,
			Verified: b.Token.IsVerified(),
		})
	}
	m.balances.Update(s.Address, rows)
	m.balances.SetPrices(m.prices)
}

// applyQuote shows the latest generation only. A nil quote without an
// error is either the pending state after an input change or a cleared form.
func (m *Model) applyQuote(msg QuoteMsg) {
	u := msg.Update
	if u.Generation < m.lastGen {
		return
	}
	m.lastGen = u.Generation

	switch {
	case u.Err != nil:
		m.current = nil
		m.quote.Set(nil, apperror.UserMessage(u.Err))
	case u.Quote != nil:
		m.current = u.Quote
		m.quote.Set(quoteView(u.Quote), "")
	case positive(u.Request.Amount):
		m.current = nil
		m.quote.SetLoading()
	default:
		m.current = nil
		m.quote.Set(nil, "")
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.swapping || m.current == nil || m.backend == nil {
		return m, nil
	}
	req := swapdomain.SwapRequestFromQuote(m.current)
	if m.insufficientBalance(req) {
		m.addError(apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithKind(apperror.KindInsufficientBalance),
			apperror.WithContext(req.In.Symbol())))
		return m, nil
	}
	m.swapping = true

	backend, timeout := m.backend, m.swapTimeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out, err := backend.Swap(ctx, req)
		return OutcomeMsg{Outcome: out, Err: err}
	}
}

// insufficientBalance reports whether the loaded balance of the input
// token is below the swap amount. Unknown balances do not block.
func (m Model) insufficientBalance(req swapdomain.SwapRequest) bool {
	if m.address == "" || req.In == nil {
		return false
	}
	bal, ok := m.snapshot.Get(req.In.Symbol())
	if !ok {
		return false
	}
	amt, err := asset.ParseString(req.In, req.AmountIn)
	if err != nil {
		return false
	}
	return amt.Raw().Cmp(bal.Amount.Raw()) > 0
}

// pushInput sends the current form to the quote session.
func (m *Model) pushInput() tea.Cmd {
	if m.backend == nil || len(m.tokens) == 0 {
		return nil
	}
	m.inputSeq++
	seq, feed := m.inputSeq, m.feed
	req := m.request()
	if positive(req.Amount) {
		m.quote.SetLoading()
	} else {
		m.quote.Set(nil, "")
	}
	m.current = nil
	return func() tea.Msg {
		feed.push(seq, req)
		return nil
	}
}

func (m Model) request() swapdomain.QuoteRequest {
	req := swapdomain.QuoteRequest{
		Amount:      strings.TrimSpace(m.amount.Value()),
		SlippagePct: m.slippage,
	}
	if len(m.tokens) > 0 {
		req.In = m.tokens[m.inIdx]
		req.Out = m.tokens[m.outIdx]
	}
	return req
}

func (m Model) connectCmd() tea.Cmd {
	backend := m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := backend.ConnectWallet(ctx); err != nil {
			return ErrorMsg{Error: err}
		}
		return nil
	}
}

func (m Model) refreshCmd() tea.Cmd {
	backend := m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := backend.RefreshBalances(ctx); err != nil {
			return ErrorMsg{Error: err}
		}
		return nil
	}
}

func (m Model) historyCmd() tea.Cmd {
	backend, address := m.backend, m.address
	if backend == nil || address == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		records, err := backend.History(ctx, address)
		return HistoryMsg{Records: records, Err: err}
	}
}

// nextToken advances idx, skipping the token selected on the other side.
func (m Model) nextToken(idx, other int) int {
	n := len(m.tokens)
	if n < 2 {
		return idx
	}
	next := (idx + 1) % n
	if next == other {
		next = (next + 1) % n
	}
	return next
}

func nextSlippage(cur decimal.Decimal) decimal.Decimal {
	for i, p := range slippagePresets {
		if p.Equal(cur) {
			return slippagePresets[(i+1)%len(slippagePresets)]
		}
	}
	return slippagePresets[0]
}

func (m *Model) addError(err error) {
	if err == nil {
		return
	}
	m.errors = append(m.errors, ErrorEntry{Message: apperror.UserMessage(err), Timestamp: time.Now()})
	if len(m.errors) > 3 {
		m.errors = m.errors[len(m.errors)-3:]
	}
}

func numeric(runes []rune) bool {
	for _, r := range runes {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

func positive(s string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil && d.IsPositive()
}

func quoteView(q *swapdomain.Quote) *components.QuoteView {
	v := &components.QuoteView{
		In:              q.In.Symbol(),
		Out:             q.Out.Symbol(),
		InputAmount:     q.InputAmount,
		OutputAmount:    q.OutputAmount,
		MinimumReceived: q.MinimumReceived,
		PriceImpact:     q.PriceImpact,
		Fee:             q.Fee,
		ExchangeRate:    q.ExchangeRate,
		Slippage:        q.SlippagePct,
		Model:           string(q.Model),
	}
	if impact, err := decimal.NewFromString(q.PriceImpact); err == nil {
		v.HighImpact = impact.GreaterThanOrEqual(decimal.NewFromInt(1))
	}
	return v
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" ⇄ Aptos DEX "))
	b.WriteString("\n\n")
	b.WriteString(m.status.View())
	b.WriteString("\n\n")

	leftCol := m.renderSwapForm()
	rightCol := m.balances.View() + "\n\n" + m.history.View()

	if m.width > 100 {
		left := FocusBoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		width := m.width - 4
		if width < 40 {
			width = 40
		}
		b.WriteString(FocusBoxStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(width).Render(rightCol))
	}
	b.WriteString("\n")
	b.WriteString(m.notes.View())
	b.WriteString("\n\n")

	// Persistent error panel (show last 3 errors)
	if len(m.errors) > 0 {
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (ctrl+l: clear)"))
		b.WriteString("\n")
		for _, e := range m.errors {
			ago := time.Since(e.Timestamp).Round(time.Second)
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  • %s ", e.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderSwapForm() string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Render("SWAP"))
	sb.WriteString(MutedValue.Render(fmt.Sprintf("   slippage %s%%", m.slippage.String())))
	sb.WriteString("\n\n")

	if len(m.tokens) == 0 {
		sb.WriteString(MutedValue.Render("  No tokens on this network"))
		return sb.String()
	}
	in, out := m.tokens[m.inIdx], m.tokens[m.outIdx]

	sb.WriteString(LabelStyle.Render("From"))
	sb.WriteString(TokenStyle.Render(in.Symbol() + " ▾"))
	sb.WriteString("  ")
	sb.WriteString(m.amount.View())
	sb.WriteString("\n")
	if bal, ok := m.snapshot.Get(in.Symbol()); ok && m.address != "" {
		sb.WriteString(LabelStyle.Render(""))
		sb.WriteString(MutedValue.Render("Balance: " + bal.Display))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(LabelStyle.Render("To"))
	sb.WriteString(TokenStyle.Render(out.Symbol() + " ▾"))
	sb.WriteString("\n\n")

	sb.WriteString(m.quote.View())
	sb.WriteString("\n\n")

	switch {
	case m.swapping:
		spinners := []string{"◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/200) % len(spinners)
		sb.WriteString(ButtonDisabledStyle.Render(spinners[idx] + " Swapping..."))
	case m.current != nil && m.insufficientBalance(swapdomain.SwapRequestFromQuote(m.current)):
		sb.WriteString(ButtonDisabledStyle.Render("Insufficient balance"))
	case m.current != nil:
		sb.WriteString(ButtonStyle.Render("Swap ⏎"))
	default:
		sb.WriteString(ButtonDisabledStyle.Render("Swap"))
	}
	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	greenStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	elapsed := time.Since(m.welcomeStart)
	dots := strings.Repeat(".", int(elapsed.Milliseconds()/300)%4)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
     █████╗ ██████╗ ████████╗ ██████╗ ███████╗    ██████╗ ███████╗██╗  ██╗
    ██╔══██╗██╔══██╗╚══██╔══╝██╔═══██╗██╔════╝    ██╔══██╗██╔════╝╚██╗██╔╝
    ███████║██████╔╝   ██║   ██║   ██║███████╗    ██║  ██║█████╗   ╚███╔╝
    ██╔══██║██╔═══╝    ██║   ██║   ██║╚════██║    ██║  ██║██╔══╝   ██╔██╗
    ██║  ██║██║        ██║   ╚██████╔╝███████║    ██████╔╝███████╗██╔╝ ██╗
    ╚═╝  ╚═╝╚═╝        ╚═╝    ╚═════╝ ╚══════╝    ╚═════╝ ╚══════╝╚═╝  ╚═╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("                         network: %s", m.status.Info().Network)))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("                          Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("                    Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	successStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	connectingStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	failedStyle := lipgloss.NewStyle().Foreground(ColorDanger)

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(HeaderStyle.Render("  ⇄ Aptos DEX"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, k := range stepOrder {
		step := m.startupSteps[k]

		var icon, statusText string
		var style lipgloss.Style
		switch step.Status {
		case "done":
			icon, statusText, style = "✓", "Ready", successStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon, statusText, style = spinners[idx], "Connecting...", connectingStyle
		case "failed":
			icon, statusText, style = "✗", "Failed", failedStyle
		default:
			icon, statusText, style = "○", "Pending", mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			mutedStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("  Waiting for the Aptos node..."))
	sb.WriteString("\n")
	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
var OnStartModules func()

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	Program = tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program. Never call it from Update.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
