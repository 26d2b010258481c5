// internal/market/poller.go
package market

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
	"github.com/rovshanmuradov/hyperbet/internal/utils/metrics"
)

// Query describes what the screen currently needs.
type Query struct {
	Side bet.Side
	// Amount is the last normalized amount; used only to dry-run the deposit.
	Amount *big.Int
}

// Snapshot is one refresh of everything the bet screen shows.
// A nil pointer means the value is unavailable, never zero.
type Snapshot struct {
	Query     Query
	Account   common.Address
	Connected bool

	Precision *uint8
	Balance   *big.Int
	Allowance *big.Int
	// CanDeposit is true when a dry run of the deposit succeeded.
	CanDeposit bool

	USDCTotal *big.Int
	BTCTotal  *big.Int
	EndTime   *time.Time

	FetchedAt time.Time
	Err       error
}

// SnapshotMsg delivers a Snapshot to the TUI.
type SnapshotMsg Snapshot

// Poller reads chain state for the bet screen. Token decimals are cached
// because they never change.
type Poller struct {
	chain    Chain
	addrs    blockchain.Addresses
	interval time.Duration
	metrics  *metrics.Collector
	logger   *zap.Logger

	decimals sync.Map // common.Address -> uint8
	now      func() time.Time
}

// NewPoller создает poller для заданного клиента.
func NewPoller(chain Chain, addrs blockchain.Addresses, interval time.Duration, collector *metrics.Collector, logger *zap.Logger) *Poller {
	return &Poller{
		chain:    chain,
		addrs:    addrs,
		interval: interval,
		metrics:  collector,
		logger:   logger.Named("poller"),
		now:      time.Now,
	}
}

// Refresh reads all values concurrently. A failed read leaves its field
// nil and is recorded in Snapshot.Err; the other fields are still filled.
func (p *Poller) Refresh(ctx context.Context, q Query) Snapshot {
	snap := Snapshot{Query: q, FetchedAt: p.now()}
	snap.Account, snap.Connected = p.chain.Account()

	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(what string, err error) {
		p.logger.Debug("Read failed", zap.String("field", what), zap.Error(err))
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	// Ошибки чтения не отменяют остальные запросы, поэтому горутины всегда возвращают nil.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := p.chain.USDCTotalDeposits(gctx)
		if err != nil {
			record("usdcTotalDeposits", err)
			return nil
		}
		snap.USDCTotal = v
		return nil
	})
	g.Go(func() error {
		v, err := p.chain.BTCTotalDeposits(gctx)
		if err != nil {
			record("btcTotalDeposits", err)
			return nil
		}
		snap.BTCTotal = v
		return nil
	})
	g.Go(func() error {
		v, err := p.chain.EndTimestamp(gctx)
		if err != nil {
			record("endTimestamp", err)
			return nil
		}
		snap.EndTime = &v
		return nil
	})

	if q.Side.Valid() {
		token := TokenAddress(p.addrs, q.Side.InputToken())

		g.Go(func() error {
			v, err := p.tokenDecimals(gctx, token)
			if err != nil {
				record("decimals", err)
				return nil
			}
			snap.Precision = &v
			return nil
		})

		if snap.Connected {
			g.Go(func() error {
				v, err := p.chain.BalanceOf(gctx, token, snap.Account)
				if err != nil {
					record("balanceOf", err)
					return nil
				}
				snap.Balance = v
				return nil
			})
			g.Go(func() error {
				v, err := p.chain.Allowance(gctx, token, snap.Account, p.addrs.Contract)
				if err != nil {
					record("allowance", err)
					return nil
				}
				snap.Allowance = v
				return nil
			})
			if q.Amount != nil && q.Amount.Sign() > 0 {
				g.Go(func() error {
					// Обычно откатывается, пока нет allowance: это ожидаемо и не считается ошибкой.
					snap.CanDeposit = p.chain.SimulateDeposit(gctx, DepositMethod(q.Side), q.Amount) == nil
					return nil
				})
			}
		}
	}

	_ = g.Wait()

	snap.Err = errors.Join(errs...)
	p.metrics.RecordRefresh(snap.Err != nil)
	return snap
}

func (p *Poller) tokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	if v, ok := p.decimals.Load(token); ok {
		return v.(uint8), nil
	}
	v, err := p.chain.Decimals(ctx, token)
	if err != nil {
		return 0, err
	}
	p.decimals.Store(token, v)
	return v, nil
}

// RefreshCmd runs Refresh off the UI goroutine.
func (p *Poller) RefreshCmd(ctx context.Context, q Query) tea.Cmd {
	return func() tea.Msg {
		return SnapshotMsg(p.Refresh(ctx, q))
	}
}

// Run refreshes immediately and then every interval until ctx is done.
// query is called before each refresh to pick up the current side.
func (p *Poller) Run(ctx context.Context, query func() Query, sink func(Snapshot)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		sink(p.Refresh(ctx, query()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
