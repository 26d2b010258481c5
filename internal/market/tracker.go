// internal/market/tracker.go
package market

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
	"github.com/rovshanmuradov/hyperbet/internal/storage"
	"github.com/rovshanmuradov/hyperbet/internal/storage/models"
	"github.com/rovshanmuradov/hyperbet/internal/utils/metrics"
)

// DefaultTxTimeout bounds the wait for a receipt.
const DefaultTxTimeout = 5 * time.Minute

// ErrBusy is returned when a transaction is already in flight.
var ErrBusy = errors.New("another transaction is pending")

// Pending reports in-flight transactions.
type Pending struct {
	Approve bool
	Deposit bool
}

// Any reports whether either transaction is in flight.
func (p Pending) Any() bool { return p.Approve || p.Deposit }

// Tracker sends approve/deposit transactions, waits for their receipts and
// journals them. It implements bet.Actions.
type Tracker struct {
	chain     blockchain.Client
	addrs     blockchain.Addresses
	store     storage.Storage
	metrics   *metrics.Collector
	logger    *zap.Logger
	txTimeout time.Duration

	mu      sync.Mutex
	pending Pending
}

var _ bet.Actions = (*Tracker)(nil)

// NewTracker создает трекер. store может быть nil, тогда журнал не ведётся.
func NewTracker(chain blockchain.Client, addrs blockchain.Addresses, store storage.Storage, txTimeout time.Duration, collector *metrics.Collector, logger *zap.Logger) *Tracker {
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &Tracker{
		chain:     chain,
		addrs:     addrs,
		store:     store,
		metrics:   collector,
		logger:    logger.Named("tracker"),
		txTimeout: txTimeout,
	}
}

// Pending returns the current in-flight flags.
func (t *Tracker) Pending() Pending {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Approve grants the escrow an unlimited allowance of the side's input token
// and blocks until the approval is mined.
func (t *Tracker) Approve(ctx context.Context, side bet.Side) error {
	if !side.Valid() {
		return fmt.Errorf("approve: no side selected")
	}
	token := side.InputToken()
	return t.run(ctx, models.KindApprove, side, token, bet.MaxUint256, func(ctx context.Context) (common.Hash, error) {
		return t.chain.Approve(ctx, TokenAddress(t.addrs, token), t.addrs.Contract, bet.MaxUint256)
	})
}

// Deposit places the bet and blocks until the deposit is mined.
func (t *Tracker) Deposit(ctx context.Context, side bet.Side, amount *big.Int) error {
	if !side.Valid() {
		return fmt.Errorf("deposit: no side selected")
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("deposit: amount must be positive")
	}
	return t.run(ctx, models.KindDeposit, side, side.InputToken(), amount, func(ctx context.Context) (common.Hash, error) {
		return t.chain.Deposit(ctx, DepositMethod(side), amount)
	})
}

func (t *Tracker) run(ctx context.Context, kind string, side bet.Side, token bet.Token, amount *big.Int, send func(context.Context) (common.Hash, error)) error {
	if err := t.begin(kind); err != nil {
		return err
	}
	defer t.end(kind)

	t.metrics.TxStarted(kind)
	defer t.metrics.TxFinished(kind)

	start := time.Now()
	hash, err := send(ctx)
	if err != nil {
		t.metrics.RecordTransaction(ctx, kind, side.String(), time.Since(start), false)
		t.logger.Error("Failed to send transaction", zap.String("kind", kind), zap.String("side", side.String()), zap.Error(err))
		return err
	}

	account, _ := t.chain.Account()
	t.journalSave(ctx, &models.Transaction{
		Hash:          hash.Hex(),
		WalletAddress: account.Hex(),
		Kind:          kind,
		Side:          side.String(),
		Token:         string(token),
		Amount:        amount.String(),
		Status:        models.StatusPending,
	})

	waitCtx, cancel := context.WithTimeout(ctx, t.txTimeout)
	defer cancel()

	receipt, err := t.chain.WaitMined(waitCtx, hash)
	elapsed := time.Since(start)
	t.metrics.RecordTransaction(ctx, kind, side.String(), elapsed, err == nil)
	t.journalUpdate(hash, receipt, err, elapsed)

	if err != nil {
		t.logger.Error("Transaction not confirmed",
			zap.String("kind", kind),
			zap.String("tx", hash.Hex()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return fmt.Errorf("wait for %s: %w", hash.Hex(), err)
	}

	t.logger.Info("Transaction confirmed",
		zap.String("kind", kind),
		zap.String("side", side.String()),
		zap.String("tx", hash.Hex()),
		zap.Uint64("block", receipt.BlockNumber.Uint64()),
		zap.Duration("elapsed", elapsed))
	return nil
}

func (t *Tracker) begin(kind string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending.Any() {
		return ErrBusy
	}
	if kind == models.KindApprove {
		t.pending.Approve = true
	} else {
		t.pending.Deposit = true
	}
	return nil
}

func (t *Tracker) end(kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if kind == models.KindApprove {
		t.pending.Approve = false
	} else {
		t.pending.Deposit = false
	}
}

func (t *Tracker) journalSave(ctx context.Context, tx *models.Transaction) {
	if t.store == nil {
		return
	}
	if err := t.store.SaveTransaction(ctx, tx); err != nil {
		t.logger.Warn("Failed to journal transaction", zap.String("tx", tx.Hash), zap.Error(err))
	}
}

func (t *Tracker) journalUpdate(hash common.Hash, receipt *types.Receipt, waitErr error, elapsed time.Duration) {
	if t.store == nil {
		return
	}
	status, msg := models.StatusConfirmed, ""
	if waitErr != nil {
		status, msg = models.StatusFailed, waitErr.Error()
	}
	var block uint64
	if receipt != nil && receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}

	// Контекст ожидания мог истечь, а запись в журнал всё равно нужна.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.store.UpdateTransactionStatus(ctx, hash.Hex(), status, msg, block, elapsed.Seconds()); err != nil {
		t.logger.Warn("Failed to update journal", zap.String("tx", hash.Hex()), zap.Error(err))
	}
}
