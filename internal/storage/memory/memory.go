// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rovshanmuradov/hyperbet/internal/storage"
	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
)

// memoryStorage хранит журнал в памяти процесса; используется, когда
// postgres_url не задан.
type memoryStorage struct {
	mu     sync.RWMutex
	byHash map[string]*models.Transaction
	now    func() time.Time
}

// NewStorage создает пустой журнал в памяти.
func NewStorage() storage.Storage {
	return &memoryStorage{
		byHash: make(map[string]*models.Transaction),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *memoryStorage) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byHash[tx.Hash]; exists {
		return fmt.Errorf("transaction %s already recorded", tx.Hash)
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := m.now()
	tx.CreatedAt, tx.UpdatedAt = now, now

	stored := *tx
	m.byHash[tx.Hash] = &stored
	return nil
}

func (m *memoryStorage) GetTransaction(_ context.Context, hash string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.byHash[hash]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *tx
	return &out, nil
}

func (m *memoryStorage) ListTransactions(_ context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var txs []*models.Transaction
	for _, tx := range m.byHash {
		if tx.WalletAddress == walletAddress {
			out := *tx
			txs = append(txs, &out)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})

	if offset >= len(txs) {
		return nil, nil
	}
	txs = txs[offset:]
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs, nil
}

func (m *memoryStorage) UpdateTransactionStatus(_ context.Context, hash, status, errorMsg string, blockNumber uint64, executionTime float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.byHash[hash]
	if !ok {
		return storage.ErrNotFound
	}
	tx.Status = status
	tx.ErrorMessage = errorMsg
	tx.BlockNumber = blockNumber
	tx.ExecutionTime = executionTime
	tx.UpdatedAt = m.now()
	return nil
}

func (m *memoryStorage) RunMigrations(context.Context) error { return nil }

func (m *memoryStorage) Close() error { return nil }
