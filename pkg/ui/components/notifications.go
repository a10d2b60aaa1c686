package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// NotificationRow is one toast in the feed.
type NotificationRow struct {
	Level   string
	Title   string
	Message string
	Link    string
	At      time.Time
}

// NotificationsComponent keeps the most recent notifications.
type NotificationsComponent struct {
	rows []NotificationRow
	max  int
}

// NewNotificationsComponent keeps the last max notifications.
func NewNotificationsComponent(max int) *NotificationsComponent {
	return &NotificationsComponent{max: max}
}

// Add appends a notification, dropping the oldest beyond max.
func (n *NotificationsComponent) Add(row NotificationRow) {
	n.rows = append(n.rows, row)
	if len(n.rows) > n.max {
		n.rows = n.rows[len(n.rows)-n.max:]
	}
}

// Clear drops every notification.
func (n *NotificationsComponent) Clear() { n.rows = nil }

// Len returns the number of notifications.
func (n *NotificationsComponent) Len() int { return len(n.rows) }

// View renders the feed, newest last.
func (n *NotificationsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	linkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")).Underline(true)
	levels := map[string]lipgloss.Style{
		"success": lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("NOTIFICATIONS"))
	sb.WriteString("\n\n")

	if len(n.rows) == 0 {
		sb.WriteString(mutedStyle.Render("  Nothing yet..."))
		return sb.String()
	}
	for _, r := range n.rows {
		style, ok := levels[r.Level]
		if !ok {
			style = mutedStyle
		}
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  [%s] ", r.At.Format("15:04:05"))))
		sb.WriteString(style.Render(r.Title + ": " + r.Message))
		if r.Link != "" && !strings.Contains(r.Message, r.Link) {
			sb.WriteString(" " + linkStyle.Render(r.Link))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
