// Package ui provides the Bubble Tea dashboard for the DEX.
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the TUI. The amount field keeps focus,
// so bindings avoid digits and the decimal point.
type KeyMap struct {
	Quit     key.Binding
	Swap     key.Binding
	NextIn   key.Binding
	NextOut  key.Binding
	Flip     key.Binding
	Slippage key.Binding
	Connect  key.Binding
	Refresh  key.Binding
	Clear    key.Binding
	Up       key.Binding
	Down     key.Binding
	Help     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		Swap: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "swap"),
		),
		NextIn: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "from token"),
		),
		NextOut: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "to token"),
		),
		Flip: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "flip"),
		),
		Slippage: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "slippage"),
		),
		Connect: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "connect wallet"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Swap, k.NextIn, k.NextOut, k.Connect, k.Quit, k.Help}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Swap, k.NextIn, k.NextOut, k.Flip},
		{k.Slippage, k.Connect, k.Refresh, k.Clear},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}
