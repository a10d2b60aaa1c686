package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// QuoteView is the display form of a quote. Values are preformatted.
type QuoteView struct {
	In              string
	Out             string
	InputAmount     string
	OutputAmount    string
	MinimumReceived string
	PriceImpact     string
	Fee             string
	ExchangeRate    string
	Slippage        string
	Model           string
	HighImpact      bool
}

// QuoteComponent renders the swap form result.
type QuoteComponent struct {
	quote   *QuoteView
	loading bool
	err     string
}

// NewQuoteComponent creates a new quote component.
func NewQuoteComponent() *QuoteComponent {
	return &QuoteComponent{}
}

// SetLoading marks a quote request as pending and clears the last result.
func (q *QuoteComponent) SetLoading() {
	q.loading = true
	q.quote = nil
	q.err = ""
}

// Set shows a quote, an error, or nothing when both are empty.
func (q *QuoteComponent) Set(v *QuoteView, err string) {
	q.loading = false
	q.quote = v
	q.err = err
}

// Quote returns the displayed quote.
func (q *QuoteComponent) Quote() *QuoteView { return q.quote }

// View renders the quote panel.
func (q *QuoteComponent) View() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	bigStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))

	switch {
	case q.loading:
		return dimStyle.Render("  Fetching quote...")
	case q.err != "":
		return errStyle.Render("  " + q.err)
	case q.quote == nil:
		return dimStyle.Render("  Enter an amount to get a quote")
	}

	v := q.quote
	impactStyle := dimStyle
	if v.HighImpact {
		impactStyle = warnStyle
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  You receive  %s\n\n", bigStyle.Render(v.OutputAmount+" "+v.Out)))
	sb.WriteString(fmt.Sprintf("  Rate         1 %s = %s %s\n", v.In, v.ExchangeRate, v.Out))
	sb.WriteString(fmt.Sprintf("  Minimum      %s %s %s\n", v.MinimumReceived, v.Out, dimStyle.Render("("+v.Slippage+"% slippage)")))
	sb.WriteString(fmt.Sprintf("  Impact       %s\n", impactStyle.Render(v.PriceImpact+"%")))
	sb.WriteString(fmt.Sprintf("  Fee          %s %s\n", v.Fee, v.In))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  Route        %s → %s (%s)", v.In, v.Out, v.Model)))
	return sb.String()
}
