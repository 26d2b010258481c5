package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/hyperbet/internal/storage"
	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
)

const wallet = "0x71562b71999873DB5b286dF957af199Ec94617F7"

func newTx(hash string) *models.Transaction {
	return &models.Transaction{
		Hash:          hash,
		WalletAddress: wallet,
		Kind:          models.KindDeposit,
		Side:          "btc",
		Token:         "USDC",
		Amount:        "5000000",
		Status:        models.StatusPending,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	tx := newTx("0x01")
	require.NoError(t, s.SaveTransaction(ctx, tx))
	assert.NotEqual(t, uuid.Nil, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())

	got, err := s.GetTransaction(ctx, "0x01")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, "5000000", got.Amount)

	assert.Error(t, s.SaveTransaction(ctx, newTx("0x01")), "duplicate hash")

	_, err = s.GetTransaction(ctx, "0xff")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateTransactionStatus(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	require.NoError(t, s.SaveTransaction(ctx, newTx("0x02")))

	require.NoError(t, s.UpdateTransactionStatus(ctx, "0x02", models.StatusFailed, "reverted", 42, 12.5))
	got, err := s.GetTransaction(ctx, "0x02")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, "reverted", got.ErrorMessage)
	assert.Equal(t, uint64(42), got.BlockNumber)
	assert.Equal(t, 12.5, got.ExecutionTime)

	assert.ErrorIs(t, s.UpdateTransactionStatus(ctx, "0xff", models.StatusConfirmed, "", 0, 0), storage.ErrNotFound)
}

func TestListTransactions(t *testing.T) {
	s := NewStorage().(*memoryStorage)
	base := time.Date(2023, 3, 17, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	for _, h := range []string{"0x01", "0x02", "0x03"} {
		require.NoError(t, s.SaveTransaction(ctx, newTx(h)))
	}
	other := newTx("0x04")
	other.WalletAddress = "0x0000000000000000000000000000000000000001"
	require.NoError(t, s.SaveTransaction(ctx, other))

	txs, err := s.ListTransactions(ctx, wallet, 2, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "0x03", txs[0].Hash, "newest first")
	assert.Equal(t, "0x02", txs[1].Hash)

	txs, err = s.ListTransactions(ctx, wallet, 0, 2)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "0x01", txs[0].Hash)

	txs, err = s.ListTransactions(ctx, wallet, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestReturnedCopiesAreIsolated(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	tx := newTx("0x05")
	require.NoError(t, s.SaveTransaction(ctx, tx))

	tx.Status = "mutated"
	got, err := s.GetTransaction(ctx, "0x05")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
}
