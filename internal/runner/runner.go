// internal/runner/runner.go
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain/ethbc"
	"github.com/rovshanmuradov/hyperbet/internal/config"
	"github.com/rovshanmuradov/hyperbet/internal/export"
	"github.com/rovshanmuradov/hyperbet/internal/market"
	"github.com/rovshanmuradov/hyperbet/internal/storage"
	"github.com/rovshanmuradov/hyperbet/internal/storage/memory"
	"github.com/rovshanmuradov/hyperbet/internal/storage/postgres"
	"github.com/rovshanmuradov/hyperbet/internal/utils/metrics"
	"github.com/rovshanmuradov/hyperbet/internal/wallet"
)

// Runner собирает все сервисы приложения из конфига и закрывает их при выходе.
type Runner struct {
	logger   *zap.Logger
	config   *config.Config
	shutdown *ShutdownHandler

	Metrics  *metrics.Collector
	Client   *ethbc.Client
	Wallet   *wallet.Wallet
	Storage  storage.Storage
	Poller   *market.Poller
	Tracker  *market.Tracker
	Engine   *bet.Engine
	Exporter *export.HistoryExporter
}

// NewRunner принимает cfg и logger
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		logger:   logger,
		config:   cfg,
		shutdown: NewShutdownHandler(logger, 10*time.Second),
		Metrics:  metrics.NewCollector(),
	}
}

// Initialize dials the RPC pool, opens the journal and starts the metrics
// server when configured. Services opened before a failure are closed by Close.
func (r *Runner) Initialize(ctx context.Context) error {
	if r.config.HasWallet() {
		w, err := wallet.NewWallet(r.config.PrivateKey)
		if err != nil {
			return fmt.Errorf("failed to load wallet: %w", err)
		}
		r.Wallet = w
		r.logger.Info("Wallet loaded", zap.String("address", w.Address().Hex()))
	} else {
		r.logger.Info("No private key configured, running read-only")
	}

	addrs := blockchain.ParseAddresses(r.config.ContractAddress, r.config.WBTCAddress, r.config.USDCAddress)
	client, err := ethbc.Dial(ctx, ethbc.Options{
		RPCList:   r.config.RPCList,
		ChainID:   r.config.ChainID,
		Addresses: addrs,
		Wallet:    r.Wallet,
		Retries:   r.config.Retries,
		Metrics:   r.Metrics,
	}, r.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}
	r.Client = client
	r.shutdown.AddFunc("rpc", func() error {
		client.Close()
		return nil
	})

	store, err := r.OpenStorage(ctx)
	if err != nil {
		return err
	}
	r.Storage = store
	r.shutdown.Add("storage", store)

	if r.config.MetricsAddr != "" {
		srv := metrics.StartServer(r.config.MetricsAddr, r.Metrics, client.Ping, r.logger)
		r.shutdown.AddFunc("metrics", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
	}

	r.Poller = market.NewPoller(client, addrs, r.config.PollInterval, r.Metrics, r.logger)
	if r.Wallet != nil {
		r.Tracker = market.NewTracker(client, addrs, store, r.config.TxTimeout, r.Metrics, r.logger)
	}
	r.Engine = bet.NewEngine(r.logger)
	r.Exporter = export.NewHistoryExporter(r.logger)
	return nil
}

// OpenStorage returns the postgres journal when postgres_url is set and the
// in-memory one otherwise.
func (r *Runner) OpenStorage(ctx context.Context) (storage.Storage, error) {
	var store storage.Storage
	if r.config.PostgresURL == "" {
		store = memory.NewStorage()
	} else {
		pg, err := postgres.NewStorage(ctx, r.config.PostgresURL, r.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres journal: %w", err)
		}
		store = pg
	}
	if err := store.RunMigrations(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// Actions returns the transaction tracker, or nil without a wallet.
func (r *Runner) Actions() bet.Actions {
	if r.Tracker == nil {
		return nil
	}
	return r.Tracker
}

// WalletAddress returns the signing address, or "" when read-only.
func (r *Runner) WalletAddress() string {
	if r.Wallet == nil {
		return ""
	}
	return r.Wallet.Address().Hex()
}

// Close shuts down every service opened by Initialize.
func (r *Runner) Close(ctx context.Context) error {
	return r.shutdown.Shutdown(ctx)
}
