package market

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
	"github.com/rovshanmuradov/hyperbet/internal/storage/memory"
	"github.com/rovshanmuradov/hyperbet/internal/utils/metrics"
)

func newTestPlace(chain *fakeChain) (*Poller, *bet.Engine, *Tracker) {
	poller := NewPoller(chain, testAddrs, 0, metrics.NewCollector(), zap.NewNop())
	return poller, bet.NewEngine(zap.NewNop()), newTestTracker(chain, memory.NewStorage())
}

func TestPlaceApprovesThenDeposits(t *testing.T) {
	chain := newFakeChain()
	chain.simulateOK = true
	poller, engine, tracker := newTestPlace(chain)

	st, err := Place(context.Background(), poller, engine, tracker, bet.SideBTC, "2.5")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2_500_000), st.Amount)
	assert.Equal(t, []common.Address{testAddrs.USDC}, chain.approvals)
	assert.Equal(t, []blockchain.DepositMethod{blockchain.DepositUSDC}, chain.deposits)
}

func TestPlaceSkipsApprovalWithAllowance(t *testing.T) {
	chain := newFakeChain()
	chain.simulateOK = true
	chain.allowances[testAddrs.WBTC] = bet.MaxUint256
	poller, engine, tracker := newTestPlace(chain)

	_, err := Place(context.Background(), poller, engine, tracker, bet.SideUSDC, "0.1")
	require.NoError(t, err)
	assert.Empty(t, chain.approvals)
	assert.Equal(t, []blockchain.DepositMethod{blockchain.DepositBTC}, chain.deposits)
}

func TestPlaceRejects(t *testing.T) {
	tests := []struct {
		name    string
		side    bet.Side
		raw     string
		actions bool
		want    string
	}{
		{"no side", bet.SideNone, "1", true, "no side selected"},
		{"no wallet", bet.SideBTC, "1", false, "no wallet configured"},
		{"bad amount", bet.SideBTC, "1.1234567", true, "positive number"},
		{"insufficient", bet.SideBTC, "11", true, bet.LabelInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := newFakeChain()
			chain.simulateOK = true
			poller, engine, tracker := newTestPlace(chain)
			var actions bet.Actions
			if tt.actions {
				actions = tracker
			}

			_, err := Place(context.Background(), poller, engine, actions, tt.side, tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotPlaced))
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, chain.deposits)
		})
	}
}

func TestPlaceDryRunFails(t *testing.T) {
	chain := newFakeChain()
	chain.allowances[testAddrs.USDC] = bet.MaxUint256
	poller, engine, tracker := newTestPlace(chain)

	_, err := Place(context.Background(), poller, engine, tracker, bet.SideBTC, "1")
	require.ErrorIs(t, err, ErrNotPlaced)
	assert.Contains(t, err.Error(), "dry run")
}

func TestEvaluateWithoutDecimals(t *testing.T) {
	chain := newFakeChain()
	chain.failReads["decimals"] = true
	poller, engine, _ := newTestPlace(chain)

	_, err := Evaluate(context.Background(), poller, engine, bet.SideBTC, "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errRPC)
}
