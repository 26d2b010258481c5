package market

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
	"github.com/rovshanmuradov/hyperbet/internal/storage"
	"github.com/rovshanmuradov/hyperbet/internal/storage/memory"
	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
	"github.com/rovshanmuradov/hyperbet/internal/utils/metrics"
)

func newTestTracker(chain blockchain.Client, store storage.Storage) *Tracker {
	return NewTracker(chain, testAddrs, store, time.Second, metrics.NewCollector(), zap.NewNop())
}

func TestTrackerApprove(t *testing.T) {
	chain := newFakeChain()
	store := memory.NewStorage()
	tr := newTestTracker(chain, store)

	require.NoError(t, tr.Approve(context.Background(), bet.SideBTC))
	assert.Equal(t, testAddrs.USDC, chain.approvals[0], "Bitcoin side approves USDC")
	assert.Empty(t, chain.deposits)
	assert.False(t, tr.Pending().Any())

	txs, err := store.ListTransactions(context.Background(), testAccount.Hex(), 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.KindApprove, txs[0].Kind)
	assert.Equal(t, models.StatusConfirmed, txs[0].Status)
	assert.Equal(t, bet.MaxUint256.String(), txs[0].Amount)
	assert.Equal(t, "USDC", txs[0].Token)
	assert.Equal(t, uint64(17_000_000), txs[0].BlockNumber)
}

func TestTrackerDeposit(t *testing.T) {
	chain := newFakeChain()
	tr := newTestTracker(chain, nil)

	require.NoError(t, tr.Deposit(context.Background(), bet.SideUSDC, big.NewInt(50_000_000)))
	assert.Equal(t, []blockchain.DepositMethod{blockchain.DepositBTC}, chain.deposits)
}

func TestTrackerRejectsBadInput(t *testing.T) {
	tr := newTestTracker(newFakeChain(), nil)
	ctx := context.Background()

	assert.Error(t, tr.Approve(ctx, bet.SideNone))
	assert.Error(t, tr.Deposit(ctx, bet.SideNone, big.NewInt(1)))
	assert.Error(t, tr.Deposit(ctx, bet.SideBTC, nil))
	assert.Error(t, tr.Deposit(ctx, bet.SideBTC, new(big.Int)))
}

func TestTrackerPendingLifecycle(t *testing.T) {
	chain := newFakeChain()
	chain.waitBlock = make(chan struct{})
	tr := newTestTracker(chain, memory.NewStorage())

	done := make(chan error, 1)
	go func() { done <- tr.Approve(context.Background(), bet.SideUSDC) }()

	require.Eventually(t, func() bool { return tr.Pending().Approve }, time.Second, 5*time.Millisecond)
	assert.False(t, tr.Pending().Deposit)

	assert.ErrorIs(t, tr.Deposit(context.Background(), bet.SideUSDC, big.NewInt(1)), ErrBusy)

	close(chain.waitBlock)
	require.NoError(t, <-done)
	assert.False(t, tr.Pending().Any())
}

func TestTrackerSendFailureClearsPending(t *testing.T) {
	chain := newFakeChain()
	chain.sendErr = errors.New("user rejected")
	store := memory.NewStorage()
	tr := newTestTracker(chain, store)

	err := tr.Deposit(context.Background(), bet.SideBTC, big.NewInt(1))
	assert.ErrorIs(t, err, chain.sendErr)
	assert.False(t, tr.Pending().Any())

	txs, err := store.ListTransactions(context.Background(), testAccount.Hex(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, txs, "nothing was broadcast")
}

func TestTrackerRevertIsJournaled(t *testing.T) {
	chain := newFakeChain()
	chain.waitErr = blockchain.ErrTxFailed
	store := memory.NewStorage()
	tr := newTestTracker(chain, store)

	err := tr.Deposit(context.Background(), bet.SideBTC, big.NewInt(5_000_000))
	assert.ErrorIs(t, err, blockchain.ErrTxFailed)
	assert.False(t, tr.Pending().Any())

	txs, err := store.ListTransactions(context.Background(), testAccount.Hex(), 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.StatusFailed, txs[0].Status)
	assert.NotEmpty(t, txs[0].ErrorMessage)
}

func TestTrackerTimeout(t *testing.T) {
	chain := newFakeChain()
	chain.waitBlock = make(chan struct{})
	tr := NewTracker(chain, testAddrs, nil, 20*time.Millisecond, nil, zap.NewNop())

	err := tr.Approve(context.Background(), bet.SideBTC)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, tr.Pending().Any())
}

func TestEngineSubmitThroughTracker(t *testing.T) {
	chain := newFakeChain()
	tr := newTestTracker(chain, nil)
	engine := bet.NewEngine(zap.NewNop())
	precision := uint8(6)

	engine.Evaluate(bet.Inputs{
		Side: bet.SideBTC, RawAmount: "5", Precision: &precision,
		Balance: big.NewInt(10_000_000), Allowance: big.NewInt(0),
	})
	action, err := engine.Submit(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, bet.ActionApprove, action)
	assert.Len(t, chain.approvals, 1)
	assert.Empty(t, chain.deposits)

	engine.Evaluate(bet.Inputs{
		Side: bet.SideBTC, RawAmount: "5", Precision: &precision,
		Balance: big.NewInt(10_000_000), Allowance: bet.MaxUint256, CanDeposit: true,
	})
	action, err = engine.Submit(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, bet.ActionDeposit, action)
	assert.Equal(t, []blockchain.DepositMethod{blockchain.DepositUSDC}, chain.deposits)
}
