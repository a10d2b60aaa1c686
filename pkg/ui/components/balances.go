package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// BalanceRow is one token in the balance table.
type BalanceRow struct {
	Symbol   string
	Balance  string
	PriceUSD decimal.Decimal
	Verified bool
}

// BalancesComponent renders token balances with their USD value.
type BalancesComponent struct {
	rows    []BalanceRow
	address string
}

// NewBalancesComponent creates a new balances component.
func NewBalancesComponent() *BalancesComponent {
	return &BalancesComponent{}
}

// Update replaces the rows.
func (b *BalancesComponent) Update(address string, rows []BalanceRow) {
	b.address = address
	b.rows = rows
}

// SetPrices fills in USD prices by symbol.
func (b *BalancesComponent) SetPrices(prices map[string]decimal.Decimal) {
	for i, r := range b.rows {
		if p, ok := prices[r.Symbol]; ok {
			b.rows[i].PriceUSD = p
		}
	}
}

// Rows returns the current rows.
func (b *BalancesComponent) Rows() []BalanceRow { return b.rows }

// View renders the balance table.
func (b *BalancesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("BALANCES"))
	if b.address != "" {
		sb.WriteString(dimStyle.Render(" " + ShortAddress(b.address)))
	}
	sb.WriteString("\n\n")

	if len(b.rows) == 0 {
		sb.WriteString(dimStyle.Render("  Connect a wallet to see balances"))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-6s  %20s  %12s\n", "Token", "Balance", "Value"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 42)) + "\n")

	total := decimal.Zero
	for _, r := range b.rows {
		value := "-"
		if r.PriceUSD.IsPositive() {
			v := decimal.RequireFromString(r.Balance).Mul(r.PriceUSD)
			total = total.Add(v)
			value = "$" + v.StringFixed(2)
		}
		symbol := r.Symbol
		if !r.Verified {
			symbol += "*"
		}
		sb.WriteString(fmt.Sprintf("  %-6s  %20s  %s\n", symbol, r.Balance, valueStyle.Render(fmt.Sprintf("%12s", value))))
	}

	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 42)) + "\n")
	sb.WriteString(fmt.Sprintf("  %-6s  %20s  %s\n", "Total", "", valueStyle.Render(fmt.Sprintf("%12s", "$"+total.StringFixed(2)))))
	sb.WriteString(dimStyle.Render("  * unverified on this network"))
	return sb.String()
}
