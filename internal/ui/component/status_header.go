package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/hyperbet/internal/ui/style"
)

// RPCStatus represents the result of the last chain refresh.
type RPCStatus struct {
	Connected bool
	LastCheck time.Time
	Err       error
}

// StatusHeader shows the wallet and chain connection state.
type StatusHeader struct {
	wallet    string
	rpcStatus RPCStatus
	style     StatusHeaderStyle
	width     int
}

// StatusHeaderStyle contains all styling for the status header
type StatusHeaderStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	wallet    lipgloss.Style
	noWallet  lipgloss.Style
	rpcGood   lipgloss.Style
	rpcWarn   lipgloss.Style
	rpcBad    lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		style: StatusHeaderStyle{
			container: lipgloss.NewStyle().
				Foreground(palette.Text).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 2),

			title: lipgloss.NewStyle().
				Foreground(palette.Bitcoin).
				Bold(true),

			wallet: lipgloss.NewStyle().
				Foreground(palette.TextSecondary),

			noWallet: lipgloss.NewStyle().
				Foreground(palette.Warning).
				Bold(true),

			rpcGood: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			rpcWarn: lipgloss.NewStyle().
				Foreground(palette.Warning).
				Bold(true),

			rpcBad: lipgloss.NewStyle().
				Foreground(palette.Error).
				Bold(true),
		},
	}
}

// SetWallet sets the short account address; empty means no wallet.
func (sh *StatusHeader) SetWallet(wallet string) {
	sh.wallet = wallet
}

// SetRPCStatus updates the RPC connection status
func (sh *StatusHeader) SetRPCStatus(status RPCStatus) {
	sh.rpcStatus = status
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	if width > 4 {
		sh.style.container = sh.style.container.Width(width - 4)
	}
}

// View renders the status header
func (sh *StatusHeader) View() string {
	return sh.style.container.Render(lipgloss.JoinHorizontal(
		lipgloss.Left,
		sh.style.title.Render("₿ Hyperbitcoinization"),
		" | ",
		sh.renderWallet(),
		" | ",
		sh.renderRPCStatus(),
	))
}

func (sh *StatusHeader) renderWallet() string {
	if sh.wallet == "" {
		return sh.style.noWallet.Render("Connect wallet")
	}
	return sh.style.wallet.Render("Wallet: " + sh.wallet)
}

func (sh *StatusHeader) renderRPCStatus() string {
	st := sh.rpcStatus
	switch {
	case st.LastCheck.IsZero():
		return sh.style.rpcWarn.Render("RPC: connecting…")
	case !st.Connected:
		return sh.style.rpcBad.Render("RPC: unavailable")
	case st.Err != nil:
		return sh.style.rpcWarn.Render(fmt.Sprintf("RPC: partial (%s)", st.LastCheck.Format("15:04:05")))
	default:
		return sh.style.rpcGood.Render(fmt.Sprintf("RPC: OK (%s)", st.LastCheck.Format("15:04:05")))
	}
}
