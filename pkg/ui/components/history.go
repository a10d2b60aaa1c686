package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// HistoryRow is one transaction in the history table.
type HistoryRow struct {
	Time   string
	Type   string
	Status string
	Hash   string
}

// HistoryComponent renders recent DEX transactions with scrolling.
type HistoryComponent struct {
	rows    []HistoryRow
	maxRows int
	offset  int
}

// NewHistoryComponent creates a component showing maxRows at a time.
func NewHistoryComponent(maxRows int) *HistoryComponent {
	return &HistoryComponent{maxRows: maxRows}
}

// Update replaces the rows, newest first.
func (h *HistoryComponent) Update(rows []HistoryRow) {
	h.rows = rows
	h.offset = 0
}

// Prepend adds a row at the top, e.g. a swap just submitted.
func (h *HistoryComponent) Prepend(row HistoryRow) {
	h.rows = append([]HistoryRow{row}, h.rows...)
}

// Len returns the number of rows.
func (h *HistoryComponent) Len() int { return len(h.rows) }

// ScrollUp moves the window up.
func (h *HistoryComponent) ScrollUp() {
	if h.offset > 0 {
		h.offset--
	}
}

// ScrollDown moves the window down.
func (h *HistoryComponent) ScrollDown() {
	if h.offset+h.maxRows < len(h.rows) {
		h.offset++
	}
}

// View renders the history table.
func (h *HistoryComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	pendingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	result := headerStyle.Render("RECENT TRANSACTIONS") + "\n"
	if len(h.rows) == 0 {
		return result + "  No transactions yet..."
	}

	result += "┌──────────┬──────────────────┬───────────┬──────────────┐\n"
	result += "│   Time   │       Type       │  Status   │     Hash     │\n"
	result += "├──────────┼──────────────────┼───────────┼──────────────┤\n"

	end := h.offset + h.maxRows
	if end > len(h.rows) {
		end = len(h.rows)
	}
	for _, row := range h.rows[h.offset:end] {
		style := okStyle
		icon := "✓"
		switch row.Status {
		case "failed":
			style, icon = failStyle, "✗"
		case "pending", "submitted", "submitted_no_hash":
			style, icon = pendingStyle, "…"
		}
		result += fmt.Sprintf("│ %8s │ %-16s │ %s │ %-12s │\n",
			row.Time,
			row.Type,
			style.Render(fmt.Sprintf("%s %-7s", icon, truncate(row.Status, 7))),
			ShortAddress(row.Hash),
		)
	}
	result += "└──────────┴──────────────────┴───────────┴──────────────┘"
	if len(h.rows) > h.maxRows {
		result += fmt.Sprintf("\n  %d-%d of %d", h.offset+1, end, len(h.rows))
	}
	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
