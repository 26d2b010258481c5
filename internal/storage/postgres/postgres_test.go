package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/storage"
	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
)

type fakeRow struct {
	values []interface{}
}

func (r fakeRow) Scan(dest ...interface{}) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.values[i].(uuid.UUID)
		case *string:
			*p = r.values[i].(string)
		case *int64:
			*p = r.values[i].(int64)
		case *float64:
			*p = r.values[i].(float64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestScanTransaction(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()
	tx, err := scanTransaction(fakeRow{values: []interface{}{
		id, "0xaa", "0xwallet", models.KindApprove, "usdc", "WBTC", "115792089237316195423570985008687907853269984665640564039457584007913129639935",
		models.StatusConfirmed, "", int64(17_000_000), 14.2, now, now,
	}})
	require.NoError(t, err)
	assert.Equal(t, id, tx.ID)
	assert.Equal(t, uint64(17_000_000), tx.BlockNumber)
	assert.Equal(t, models.KindApprove, tx.Kind)
}

// Runs against a real database only when HYPERBET_TEST_POSTGRES_URL is set.
func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("HYPERBET_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("HYPERBET_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	s, err := NewStorage(ctx, dsn, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.RunMigrations(ctx))

	hash := "0x" + uuid.NewString()
	tx := &models.Transaction{
		Hash: hash, WalletAddress: "0xwallet", Kind: models.KindDeposit,
		Side: "btc", Token: "USDC", Amount: "5000000", Status: models.StatusPending,
	}
	require.NoError(t, s.SaveTransaction(ctx, tx))
	require.NoError(t, s.UpdateTransactionStatus(ctx, hash, models.StatusConfirmed, "", 10, 3.5))

	got, err := s.GetTransaction(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, "5000000", got.Amount)

	_, err = s.GetTransaction(ctx, "0xmissing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
