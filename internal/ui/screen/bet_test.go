package screen

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/countdown"
	"github.com/rovshanmuradov/hyperbet/internal/market"
	"github.com/rovshanmuradov/hyperbet/internal/ui"
	"github.com/rovshanmuradov/hyperbet/internal/ui/state"
)

type refreshedMsg struct{ q market.Query }

type fakeActions struct {
	mu       sync.Mutex
	approved []bet.Side
	deposits []*big.Int
	err      error
}

func (f *fakeActions) Approve(_ context.Context, side bet.Side) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, side)
	return f.err
}

func (f *fakeActions) Deposit(_ context.Context, _ bet.Side, amount *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deposits = append(f.deposits, amount)
	return f.err
}

func newTestBetScreen(wallet string) (*BetScreen, *fakeActions, *[]market.Query) {
	actions := &fakeActions{}
	var refreshes []market.Query
	s := NewBetScreen(BetDeps{
		Engine:  bet.NewEngine(zap.NewNop()),
		Actions: actions,
		Refresh: func(_ context.Context, q market.Query) tea.Cmd {
			refreshes = append(refreshes, q)
			return func() tea.Msg { return refreshedMsg{q: q} }
		},
		Store:  state.NewStore(),
		Wallet: wallet,
		Logger: zap.NewNop(),
	})
	s.SetSize(100, 40)
	return s, actions, &refreshes
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func u8(v uint8) *uint8 { return &v }

func usdc(v int64) *big.Int { return new(big.Int).Mul(big.NewInt(v), big.NewInt(1_000_000)) }

// runBatch executes cmd and every command of a batch, returning the messages.
func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runBatch(c)...)
	}
	return out
}

func findTxResult(t *testing.T, msgs []tea.Msg) ui.TxResultMsg {
	t.Helper()
	for _, m := range msgs {
		if res, ok := m.(ui.TxResultMsg); ok {
			return res
		}
	}
	t.Fatal("no TxResultMsg")
	return ui.TxResultMsg{}
}

func TestBetScreenInitialState(t *testing.T) {
	s, _, _ := newTestBetScreen("")

	st := s.State()
	assert.Equal(t, bet.PhaseNoSideSelected, st.Phase)
	assert.True(t, st.Button.Disabled)

	view := s.View()
	assert.Contains(t, view, betTitle)
	assert.Contains(t, view, "Connect wallet")
	assert.Contains(t, view, "choose a side first")
	assert.Contains(t, view, "Total Deposited USDC: ...")
	assert.NotContains(t, view, "Notice:")
}

func TestBetScreenSideSelection(t *testing.T) {
	s, _, refreshes := newTestBetScreen("0x7156…17F7")

	_, cmd := s.Update(keyRunes("b"))
	require.NotNil(t, cmd)
	assert.Equal(t, bet.SideBTC, s.side)
	assert.Equal(t, focusAmount, s.focus)
	assert.Equal(t, bet.SideBTC, (*refreshes)[0].Side)

	view := s.View()
	assert.Contains(t, view, "Notice:")
	assert.Contains(t, view, "Bet Amount (in USDC):")

	// Letters typed into the amount field are ignored.
	s.Update(keyRunes("u"))
	assert.Equal(t, "", s.input.Value())

	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, focusSide, s.focus)

	s.Update(keyRunes("u"))
	assert.Equal(t, bet.SideUSDC, s.side)
	assert.Contains(t, s.View(), "Bet Amount (in WBTC):")
	assert.NotContains(t, s.View(), "Notice:")
}

func TestBetScreenFocusSkipsAmountWithoutSide(t *testing.T) {
	s, _, _ := newTestBetScreen("0xabc")

	s.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusButton, s.focus)
	s.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, focusSide, s.focus)
}

func TestBetScreenApproveThenDeposit(t *testing.T) {
	s, actions, _ := newTestBetScreen("0x7156…17F7")

	s.Update(keyRunes("b"))
	_, cmd := s.Update(keyRunes("100"))
	require.NotNil(t, cmd)
	assert.Equal(t, "100", s.input.Value())

	// Precision unknown yet: nothing to do.
	assert.True(t, s.State().Button.Disabled)

	s.Update(market.SnapshotMsg{
		Query:     market.Query{Side: bet.SideBTC, Amount: usdc(100)},
		Connected: true,
		Precision: u8(6),
		Balance:   usdc(1000),
		Allowance: big.NewInt(0),
	})
	st := s.State()
	assert.Equal(t, "Approve USDC", st.Button.Label)
	assert.False(t, st.Button.Disabled)
	assert.Equal(t, bet.PhaseAwaitingApproval, st.Phase)

	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, s.approvePending)
	assert.True(t, s.State().Button.Disabled)
	assert.Equal(t, bet.PhaseApprovalPending, s.State().Phase)

	// A second Enter while pending does nothing.
	_, again := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	res := findTxResult(t, runBatch(cmd))
	assert.Equal(t, bet.ActionApprove, res.Action)
	assert.Equal(t, []bet.Side{bet.SideBTC}, actions.approved)

	s.Update(res)
	assert.False(t, s.approvePending)

	s.Update(market.SnapshotMsg{
		Query:      market.Query{Side: bet.SideBTC, Amount: usdc(100)},
		Connected:  true,
		Precision:  u8(6),
		Balance:    usdc(1000),
		Allowance:  bet.MaxUint256,
		CanDeposit: true,
	})
	st = s.State()
	assert.Equal(t, bet.LabelPlaceBet, st.Button.Label)
	assert.False(t, st.Button.Disabled)

	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	res = findTxResult(t, runBatch(cmd))
	assert.Equal(t, bet.ActionDeposit, res.Action)
	require.Len(t, actions.deposits, 1)
	assert.Equal(t, 0, actions.deposits[0].Cmp(usdc(100)))
}

func TestBetScreenFailedTxClearsPending(t *testing.T) {
	s, actions, _ := newTestBetScreen("0xabc")
	actions.err = errors.New("execution reverted")

	s.Update(keyRunes("u"))
	s.Update(keyRunes("0.5"))
	s.Update(market.SnapshotMsg{
		Query:     market.Query{Side: bet.SideUSDC, Amount: big.NewInt(50_000_000)},
		Connected: true,
		Precision: u8(8),
		Balance:   big.NewInt(100_000_000),
		Allowance: big.NewInt(0),
	})
	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	res := findTxResult(t, runBatch(cmd))
	require.Error(t, res.Err)

	s.Update(res)
	assert.False(t, s.pending())
	assert.Equal(t, "Approve WBTC", s.State().Button.Label)
	assert.False(t, s.State().Button.Disabled)
}

func TestBetScreenNoWalletNeverSubmits(t *testing.T) {
	s, actions, _ := newTestBetScreen("")
	s.Update(keyRunes("b"))
	s.Update(keyRunes("10"))
	s.Update(market.SnapshotMsg{
		Query:     market.Query{Side: bet.SideBTC, Amount: usdc(10)},
		Precision: u8(6),
	})

	_, cmd := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, actions.approved)
	assert.Empty(t, actions.deposits)
}

func TestBetScreenStaleDryRunRefreshes(t *testing.T) {
	s, _, refreshes := newTestBetScreen("0xabc")
	s.Update(keyRunes("b"))
	s.Update(keyRunes("5"))
	before := len(*refreshes)

	_, cmd := s.Update(market.SnapshotMsg{
		Query:      market.Query{Side: bet.SideBTC, Amount: big.NewInt(0)},
		Connected:  true,
		Precision:  u8(6),
		Balance:    usdc(10),
		Allowance:  bet.MaxUint256,
		CanDeposit: true,
	})
	require.NotNil(t, cmd)
	require.Len(t, *refreshes, before+1)
	assert.Equal(t, 0, (*refreshes)[before].Amount.Cmp(usdc(5)))

	// The dry run was for another amount, so deposit stays unavailable.
	assert.True(t, s.State().Button.Disabled)
}

func TestBetScreenDebounce(t *testing.T) {
	s, _, refreshes := newTestBetScreen("0xabc")
	s.Update(keyRunes("b"))
	s.Update(keyRunes("1"))
	s.Update(keyRunes("2"))
	before := len(*refreshes)

	_, cmd := s.Update(amountSettledMsg{seq: s.amountSeq - 1})
	assert.Nil(t, cmd)
	_, cmd = s.Update(amountSettledMsg{seq: s.amountSeq})
	assert.NotNil(t, cmd)
	assert.Len(t, *refreshes, before+1)
}

func TestBetScreenCountdownAndTotals(t *testing.T) {
	s, _, _ := newTestBetScreen("0xabc")
	now := time.Date(2023, 3, 17, 12, 0, 0, 0, time.UTC)
	end := now.Add(90*24*time.Hour + 5*time.Second)

	s.Update(market.SnapshotMsg{
		EndTime:   &end,
		USDCTotal: big.NewInt(1234),
		BTCTotal:  big.NewInt(5),
		FetchedAt: now,
	})
	_, cmd := s.Update(countdown.TickMsg(now))
	assert.NotNil(t, cmd)

	view := s.View()
	assert.Contains(t, view, "90:00:00:05")
	assert.Contains(t, view, "Total Deposited USDC: 1234")
	assert.Contains(t, view, "Total Deposited WBTC: 5")
}

func TestBetScreenNavigation(t *testing.T) {
	s, _, _ := newTestBetScreen("0xabc")

	_, cmd := s.Update(keyRunes("l"))
	require.NotNil(t, cmd)
	assert.Equal(t, ui.RouterMsg{To: ui.RouteLogs}, cmd())

	_, cmd = s.Update(keyRunes("t"))
	assert.Equal(t, ui.RouterMsg{To: ui.RouteHistory}, cmd())

	_, cmd = s.Update(keyRunes("q"))
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBetScreenSpinnerStopsWhenIdle(t *testing.T) {
	s, _, _ := newTestBetScreen("0xabc")
	_, cmd := s.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestDescribePayout(t *testing.T) {
	tests := []struct {
		name       string
		side       bet.Side
		raw        string
		wantPayout string
	}{
		{"bitcoin side", bet.SideBTC, "5000", "If you deposit 5000 USDC, you will get 0.005 BTC and 5000 USDC if the BTC price reaches 1m USDC in 90 days"},
		{"bitcoin side empty", bet.SideBTC, "", "If you deposit X USDC, you will get X / 1000000 BTC and X USDC"},
		{"usdc side", bet.SideUSDC, "0.1", "If you deposit 0.1 WBTC, you will get 100000 USDC and 0.1 WBTC if the BTC price does not reach"},
		{"usdc side invalid", bet.SideUSDC, "1..2", "you will get X * 1000000 USDC"},
		{"no side", bet.SideNone, "", "If you deposit X WBTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payout, note := describePayout(tt.side, tt.raw)
			assert.Contains(t, payout, tt.wantPayout)
			assert.Contains(t, note, "withdraw your extra")
		})
	}
}
