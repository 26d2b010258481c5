// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/storage"
	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
)

const migrationLockID = 101

const createTransactionsTable = `
CREATE TABLE IF NOT EXISTS bet_transactions (
	id             UUID PRIMARY KEY,
	hash           VARCHAR(66) NOT NULL UNIQUE,
	wallet_address VARCHAR(42) NOT NULL,
	kind           VARCHAR(16) NOT NULL,
	side           VARCHAR(16) NOT NULL,
	token          VARCHAR(16) NOT NULL,
	amount         NUMERIC(78, 0) NOT NULL,
	status         VARCHAR(20) NOT NULL,
	error_message  TEXT NOT NULL DEFAULT '',
	block_number   BIGINT NOT NULL DEFAULT 0,
	execution_time DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS bet_transactions_wallet_idx ON bet_transactions (wallet_address, created_at DESC);
`

const selectColumns = `id, hash, wallet_address, kind, side, token, amount::text, status,
	error_message, block_number, execution_time, created_at, updated_at`

// postgresStorage реализует интерфейс Storage
type postgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStorage подключается к базе и проверяет соединение.
func NewStorage(ctx context.Context, dsn string, logger *zap.Logger) (storage.Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &postgresStorage{db: db, logger: logger.Named("postgres")}, nil
}

// RunMigrations создает таблицу журнала под advisory lock.
func (p *postgresStorage) RunMigrations(ctx context.Context) error {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	var lockObtained bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, migrationLockID).Scan(&lockObtained); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return fmt.Errorf("another migration is in progress")
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID); err != nil {
			p.logger.Warn("Failed to release migration lock", zap.Error(err))
		}
	}()

	if _, err := conn.ExecContext(ctx, createTransactionsTable); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (p *postgresStorage) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := time.Now().UTC()
	tx.CreatedAt, tx.UpdatedAt = now, now

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bet_transactions
			(id, hash, wallet_address, kind, side, token, amount, status,
			 error_message, block_number, execution_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		tx.ID, tx.Hash, tx.WalletAddress, tx.Kind, tx.Side, tx.Token, tx.Amount, tx.Status,
		tx.ErrorMessage, int64(tx.BlockNumber), tx.ExecutionTime, tx.CreatedAt, tx.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("transaction %s already recorded", tx.Hash)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (p *postgresStorage) GetTransaction(ctx context.Context, hash string) (*models.Transaction, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM bet_transactions WHERE hash = $1`, hash)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return tx, err
}

func (p *postgresStorage) ListTransactions(ctx context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+selectColumns+` FROM bet_transactions
		WHERE wallet_address = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, walletAddress, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (p *postgresStorage) UpdateTransactionStatus(ctx context.Context, hash, status, errorMsg string, blockNumber uint64, executionTime float64) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bet_transactions
		SET status = $1, error_message = $2, block_number = $3, execution_time = $4, updated_at = NOW()
		WHERE hash = $5`,
		status, errorMsg, int64(blockNumber), executionTime, hash)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *postgresStorage) Close() error {
	return p.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx          models.Transaction
		blockNumber int64
	)
	err := row.Scan(&tx.ID, &tx.Hash, &tx.WalletAddress, &tx.Kind, &tx.Side, &tx.Token, &tx.Amount,
		&tx.Status, &tx.ErrorMessage, &blockNumber, &tx.ExecutionTime, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tx.BlockNumber = uint64(blockNumber)
	return &tx, nil
}
