package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// Navigate returns a command that opens route.
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg { return RouterMsg{To: route} }
}

// TxResultMsg reports the end of an approve or deposit started from the UI.
type TxResultMsg struct {
	Action bet.Action
	Side   bet.Side
	Err    error
}

// BusMsg wraps a message delivered through an UpdateSender.
type BusMsg struct {
	Msg tea.Msg
}

// Route represents different screens in the application
type Route int

const (
	RouteBet Route = iota
	RouteLogs
	RouteHistory
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteBet:
		return "bet"
	case RouteLogs:
		return "logs"
	case RouteHistory:
		return "history"
	default:
		return "unknown"
	}
}
