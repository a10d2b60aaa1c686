// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is the state shown in the status bar.
type StatusInfo struct {
	Network       string
	NodeConnected bool
	NodeLatency   time.Duration
	LedgerVersion uint64
	Wallet        string
	Address       string
	LastUpdate    time.Time
}

// StatusComponent renders the network and wallet status line.
type StatusComponent struct {
	info StatusInfo
}

// NewStatusComponent creates a new status component.
func NewStatusComponent(network string) *StatusComponent {
	return &StatusComponent{info: StatusInfo{Network: network}}
}

// Info returns the current state.
func (s *StatusComponent) Info() StatusInfo { return s.info }

// SetNode records a node round trip.
func (s *StatusComponent) SetNode(connected bool, latency time.Duration, version uint64) {
	s.info.NodeConnected = connected
	s.info.NodeLatency = latency
	if version > 0 {
		s.info.LedgerVersion = version
	}
	s.info.LastUpdate = time.Now()
}

// SetWallet records the wallet session. An empty address means disconnected.
func (s *StatusComponent) SetWallet(name, address string) {
	s.info.Wallet = name
	s.info.Address = address
}

// View renders the status line.
func (s *StatusComponent) View() string {
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	bad := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	parts := []string{"Network: " + s.info.Network}

	if s.info.NodeConnected {
		node := "● Node"
		if s.info.NodeLatency > 0 {
			node += fmt.Sprintf(" (%dms)", s.info.NodeLatency.Milliseconds())
		}
		parts = append(parts, ok.Render(node))
	} else {
		parts = append(parts, bad.Render("○ Node (unreachable)"))
	}
	if s.info.LedgerVersion > 0 {
		parts = append(parts, fmt.Sprintf("Ledger: %d", s.info.LedgerVersion))
	}

	if s.info.Address != "" {
		parts = append(parts, ok.Render("● "+s.info.Wallet+" "+ShortAddress(s.info.Address)))
	} else {
		parts = append(parts, bad.Render("○ Wallet not connected"))
	}

	if !s.info.LastUpdate.IsZero() {
		ago := time.Since(s.info.LastUpdate).Round(time.Second)
		parts = append(parts, muted.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}
	return strings.Join(parts, "  │  ")
}

// ShortAddress renders 0x1234…abcd.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
