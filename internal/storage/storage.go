// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
)

// ErrNotFound возвращается, если транзакция с таким хешем не записана.
var ErrNotFound = errors.New("transaction not found")

// Storage определяет интерфейс журнала транзакций
type Storage interface {
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, hash string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, hash, status, errorMsg string, blockNumber uint64, executionTime float64) error

	RunMigrations(ctx context.Context) error
	Close() error
}
