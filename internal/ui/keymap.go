package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding

	// Bet screen
	BetBitcoin key.Binding
	BetUSDC    key.Binding
	Refresh    key.Binding
	Logs       key.Binding
	History    key.Binding

	// Logs
	FilterLevel key.Binding
	Tail        key.Binding

	// History
	Export key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "bitcoin"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "usdc"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),

		BetBitcoin: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bet on Bitcoin"),
		),
		BetUSDC: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "bet on USDC"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l", "f12"),
			key.WithHelp("l", "logs"),
		),
		History: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "history"),
		),

		FilterLevel: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "level"),
		),
		Tail: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "follow"),
		),

		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export csv"),
		),
	}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteBet:
		return []key.Binding{k.Tab, k.Left, k.Right, k.Enter, k.Refresh, k.Logs, k.History, k.Quit}
	case RouteLogs:
		return []key.Binding{k.Up, k.Down, k.FilterLevel, k.Tail, k.Back, k.Quit}
	case RouteHistory:
		return []key.Binding{k.Up, k.Down, k.Refresh, k.Export, k.Back, k.Quit}
	default:
		return []key.Binding{k.Back, k.Quit}
	}
}
