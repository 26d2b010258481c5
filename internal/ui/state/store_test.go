package state

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/market"
)

func TestQueryIsCopied(t *testing.T) {
	s := NewStore()
	amount := big.NewInt(100)
	s.SetQuery(market.Query{Side: bet.SideBTC, Amount: amount})

	amount.SetInt64(1)
	q := s.Query()
	assert.Equal(t, bet.SideBTC, q.Side)
	assert.Equal(t, int64(100), q.Amount.Int64())

	q.Amount.SetInt64(5)
	assert.Equal(t, int64(100), s.Query().Amount.Int64())
}

func TestRecordSnapshot(t *testing.T) {
	s := NewStore()
	_, ok := s.Snapshot()
	assert.False(t, ok)

	six := uint8(6)
	s.RecordSnapshot(market.Snapshot{Query: market.Query{Side: bet.SideBTC}, Precision: &six})
	s.RecordSnapshot(market.Snapshot{Query: market.Query{Side: bet.SideUSDC}})

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, bet.SideUSDC, snap.Query.Side)
	assert.Equal(t, map[string]uint8{"USDC": 6}, s.Decimals())
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.SetQuery(market.Query{Side: bet.SideUSDC, Amount: big.NewInt(int64(i))})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.Query()
			s.Decimals()
		}
	}()
	wg.Wait()

	reads, writes := s.GetStats()
	assert.Equal(t, uint64(200), reads)
	assert.Equal(t, uint64(100), writes)
}
