package screen

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/countdown"
	"github.com/rovshanmuradov/hyperbet/internal/market"
	"github.com/rovshanmuradov/hyperbet/internal/ui"
	"github.com/rovshanmuradov/hyperbet/internal/ui/component"
	"github.com/rovshanmuradov/hyperbet/internal/ui/router"
	"github.com/rovshanmuradov/hyperbet/internal/ui/state"
	"github.com/rovshanmuradov/hyperbet/internal/ui/style"
)

const (
	betTitle       = "Will Bitcoin reach $1M in 90 days?"
	amountDebounce = 300 * time.Millisecond
)

type focusArea int

const (
	focusSide focusArea = iota
	focusAmount
	focusButton
)

// amountSettledMsg fires once typing in the amount field pauses.
type amountSettledMsg struct{ seq int }

// BetDeps are the collaborators of the bet screen.
type BetDeps struct {
	Ctx     context.Context
	Engine  *bet.Engine
	Actions bet.Actions
	// Refresh returns a command producing a market.SnapshotMsg.
	Refresh func(ctx context.Context, q market.Query) tea.Cmd
	Store   *state.Store
	// Wallet is the short account address, empty when no key is configured.
	Wallet string
	Logger *zap.Logger
}

// BetScreen is the single betting form: side, amount, approve/deposit.
type BetScreen struct {
	deps   BetDeps
	width  int
	height int
	keyMap ui.KeyMap

	header  *component.StatusHeader
	helpBar *component.HelpBar
	input   textinput.Model
	spinner spinner.Model

	side           bet.Side
	focus          focusArea
	snap           market.Snapshot
	state          bet.State
	approvePending bool
	depositPending bool
	amountSeq      int
	now            time.Time
}

// NewBetScreen creates the bet screen with no side selected.
func NewBetScreen(deps BetDeps) *BetScreen {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Store == nil {
		deps.Store = state.NewStore()
	}
	if deps.Engine == nil {
		deps.Engine = bet.NewEngine(deps.Logger)
	}

	input := textinput.New()
	input.Placeholder = "Enter bet amount"
	input.CharLimit = 40
	input.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	s := &BetScreen{
		deps:    deps,
		keyMap:  ui.DefaultKeyMap(),
		header:  component.NewStatusHeader(),
		helpBar: component.NewHelpBar(),
		input:   input,
		spinner: sp,
		now:     time.Now(),
	}
	s.header.SetWallet(deps.Wallet)
	s.helpBar.SetKeyBindings(s.keyMap.ContextualHelp(ui.RouteBet))
	s.evaluate()
	return s
}

// Init starts the countdown and the first refresh.
func (s *BetScreen) Init() tea.Cmd {
	return tea.Batch(countdown.Tick(), s.refresh())
}

// SetSize sets the screen dimensions
func (s *BetScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.header.SetWidth(width)
	s.helpBar.SetWidth(width)
}

// State returns the last evaluated engine state.
func (s *BetScreen) State() bet.State {
	return s.state
}

// Update handles input, chain snapshots and transaction results.
func (s *BetScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s, s.handleKey(msg)

	case countdown.TickMsg:
		s.now = time.Time(msg)
		return s, countdown.Tick()

	case market.SnapshotMsg:
		return s, s.applySnapshot(market.Snapshot(msg))

	case amountSettledMsg:
		if msg.seq != s.amountSeq {
			return s, nil
		}
		return s, s.refresh()

	case ui.TxResultMsg:
		switch msg.Action {
		case bet.ActionApprove:
			s.approvePending = false
		case bet.ActionDeposit:
			s.depositPending = false
		}
		s.evaluate()
		return s, s.refresh()

	case spinner.TickMsg:
		if !s.pending() {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *BetScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC || (s.focus != focusAmount && key.Matches(msg, s.keyMap.Quit)) {
		return tea.Quit
	}

	switch {
	case key.Matches(msg, s.keyMap.Tab):
		s.moveFocus(1)
		return nil
	case key.Matches(msg, s.keyMap.ShiftTab):
		s.moveFocus(-1)
		return nil
	case msg.Type == tea.KeyEsc && s.focus == focusAmount:
		s.setFocus(focusSide)
		return nil
	case key.Matches(msg, s.keyMap.Enter):
		if s.focus == focusSide {
			s.moveFocus(1)
			return nil
		}
		return s.submit()
	}

	if s.focus == focusAmount {
		return s.updateAmount(msg)
	}

	switch {
	case key.Matches(msg, s.keyMap.Left), key.Matches(msg, s.keyMap.BetBitcoin):
		return s.selectSide(bet.SideBTC)
	case key.Matches(msg, s.keyMap.Right), key.Matches(msg, s.keyMap.BetUSDC):
		return s.selectSide(bet.SideUSDC)
	case key.Matches(msg, s.keyMap.Refresh):
		return s.refresh()
	case key.Matches(msg, s.keyMap.Logs):
		return ui.Navigate(ui.RouteLogs)
	case key.Matches(msg, s.keyMap.History):
		return ui.Navigate(ui.RouteHistory)
	}
	return nil
}

// moveFocus cycles side -> amount -> button. The amount field is skipped
// until a side is chosen.
func (s *BetScreen) moveFocus(step int) {
	next := s.focus
	for i := 0; i < 3; i++ {
		next = focusArea((int(next) + step + 3) % 3)
		if next != focusAmount || s.side.Valid() {
			break
		}
	}
	s.setFocus(next)
}

func (s *BetScreen) setFocus(f focusArea) {
	s.focus = f
	if f == focusAmount {
		s.input.Focus()
	} else {
		s.input.Blur()
	}
}

func (s *BetScreen) selectSide(side bet.Side) tea.Cmd {
	if side == s.side {
		return nil
	}
	s.side = side
	s.setFocus(focusAmount)
	s.evaluate()
	return s.refresh()
}

func (s *BetScreen) updateAmount(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyRunes && !isAmountInput(msg.Runes) {
		return nil
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == before {
		return cmd
	}

	s.evaluate()
	s.amountSeq++
	seq := s.amountSeq
	return tea.Batch(cmd, tea.Tick(amountDebounce, func(time.Time) tea.Msg {
		return amountSettledMsg{seq: seq}
	}))
}

func isAmountInput(runes []rune) bool {
	for _, r := range runes {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// applySnapshot stores snap and asks for another refresh when the deposit
// dry run was done for an amount other than the one on screen.
func (s *BetScreen) applySnapshot(snap market.Snapshot) tea.Cmd {
	s.snap = snap
	s.header.SetRPCStatus(component.RPCStatus{
		Connected: snap.USDCTotal != nil || snap.BTCTotal != nil || snap.EndTime != nil,
		LastCheck: snap.FetchedAt,
		Err:       snap.Err,
	})
	s.evaluate()

	if snap.Query.Side != s.side || !snap.Connected || s.state.Amount.Sign() == 0 {
		return nil
	}
	if snap.Query.Amount == nil || snap.Query.Amount.Cmp(s.state.Amount) != 0 {
		return s.refresh()
	}
	return nil
}

// evaluate feeds the engine with the values that belong to the current side.
func (s *BetScreen) evaluate() {
	in := bet.Inputs{
		Side:           s.side,
		RawAmount:      s.input.Value(),
		ApprovePending: s.approvePending,
		DepositPending: s.depositPending,
	}
	if s.side.Valid() && s.snap.Query.Side == s.side {
		in.Precision = s.snap.Precision
		in.Balance = s.snap.Balance
		in.Allowance = s.snap.Allowance

		amount := bet.NormalizeAmount(in.RawAmount, in.Precision)
		in.CanDeposit = s.snap.CanDeposit &&
			s.snap.Query.Amount != nil &&
			s.snap.Query.Amount.Cmp(amount) == 0
	}

	s.state = s.deps.Engine.Evaluate(in)
	s.deps.Store.SetQuery(market.Query{Side: s.side, Amount: s.state.Amount})
}

func (s *BetScreen) refresh() tea.Cmd {
	if s.deps.Refresh == nil {
		return nil
	}
	return s.deps.Refresh(s.deps.Ctx, s.deps.Store.Query())
}

func (s *BetScreen) pending() bool {
	return s.approvePending || s.depositPending
}

// submit starts the action the button currently offers.
func (s *BetScreen) submit() tea.Cmd {
	if s.deps.Wallet == "" || s.deps.Actions == nil {
		return nil
	}

	action := bet.Decide(s.state)
	side := s.state.Side
	amount := new(big.Int).Set(s.state.Amount)

	switch action {
	case bet.ActionApprove:
		s.approvePending = true
	case bet.ActionDeposit:
		s.depositPending = true
	default:
		return nil
	}
	s.evaluate()

	s.deps.Logger.Info("Bet action submitted",
		zap.String("action", action.String()),
		zap.String("side", side.String()),
		zap.String("amount", amount.String()))

	actions, ctx := s.deps.Actions, s.deps.Ctx
	run := func() tea.Msg {
		var err error
		if action == bet.ActionApprove {
			err = actions.Approve(ctx, side)
		} else {
			err = actions.Deposit(ctx, side, amount)
		}
		return ui.TxResultMsg{Action: action, Side: side, Err: err}
	}
	return tea.Batch(run, s.spinner.Tick)
}

// View renders the bet screen
func (s *BetScreen) View() string {
	sections := []string{
		s.header.View(),
		style.TitleStyle.Width(s.contentWidth()).Render(betTitle),
		style.CountdownStyle.Width(s.contentWidth()).Render(s.countdownText()),
		style.PanelStyle.Width(s.contentWidth()).Render(s.renderForm()),
		s.helpBar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (s *BetScreen) contentWidth() int {
	if s.width <= 4 {
		return 76
	}
	return s.width - 4
}

func (s *BetScreen) countdownText() string {
	if s.snap.EndTime == nil {
		return "..."
	}
	return countdown.Remaining(*s.snap.EndTime, s.now).String()
}

func (s *BetScreen) renderForm() string {
	inner := s.contentWidth() - 6
	var b strings.Builder

	b.WriteString(s.label(focusSide, "Choose your side:"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		s.sideButton(bet.SideBTC, "bet on Bitcoin"),
		" ",
		s.sideButton(bet.SideUSDC, "bet on USDC"),
	))
	b.WriteString("\n")

	if s.side == bet.SideBTC {
		b.WriteString(style.WarningBoxStyle.Width(inner).Render("Notice:\n" + bitcoinWarning))
		b.WriteString("\n")
	}

	token := bet.SideUSDC.InputToken()
	if s.side.Valid() {
		token = s.side.InputToken()
	}
	b.WriteString(s.label(focusAmount, "Bet Amount (in "+string(token)+"):"))
	b.WriteString("\n")
	if s.side.Valid() {
		b.WriteString(s.input.View())
	} else {
		b.WriteString(style.MutedStyle.Render("  Enter bet amount (choose a side first)"))
	}
	b.WriteString("\n")
	if s.side.Valid() && s.deps.Wallet != "" && s.snap.Query.Side == s.side && s.snap.Precision != nil {
		b.WriteString(style.MutedStyle.Render("Balance: " + bet.FormatUnits(s.snap.Balance, *s.snap.Precision) + " " + string(token)))
		b.WriteString("\n")
	}

	payout, note := describePayout(s.side, s.input.Value())
	b.WriteString(style.DescriptionBoxStyle.Width(inner).Render(payout + "\n\n" + note))
	b.WriteString("\n\n")

	b.WriteString(s.renderButton())
	b.WriteString("\n\n")

	b.WriteString(style.MutedStyle.Render("Total Deposited USDC: " + totalText(s.snap.USDCTotal)))
	b.WriteString("\n")
	b.WriteString(style.MutedStyle.Render("Total Deposited WBTC: " + totalText(s.snap.BTCTotal)))
	return b.String()
}

func (s *BetScreen) label(area focusArea, text string) string {
	if s.focus == area {
		return style.FocusedStyle.Render("▸ " + text)
	}
	return style.LabelStyle.Render("  " + text)
}

func (s *BetScreen) sideButton(side bet.Side, text string) string {
	if s.side == side {
		return style.SideButtonActiveStyle.Render(text)
	}
	return style.SideButtonStyle.Render(text)
}

func (s *BetScreen) renderButton() string {
	if s.deps.Wallet == "" {
		return style.WarnStyle.Render("Connect wallet: set HYPERBET_PRIVATE_KEY to sign transactions")
	}

	text := s.state.Button.Label
	if s.pending() {
		text = s.spinner.View() + " " + text
	}
	btn := style.ButtonStyle
	if s.state.Button.Disabled {
		btn = style.ButtonDisabledStyle
	}
	rendered := btn.Render(text)
	if s.focus == focusButton {
		rendered = style.FocusedStyle.Render("▸ ") + rendered
	}
	return rendered
}

// totalText prints raw base units, "..." while the value is loading.
func totalText(v *big.Int) string {
	if v == nil {
		return "..."
	}
	return v.String()
}
