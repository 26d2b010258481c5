package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/logger"
	"github.com/rovshanmuradov/hyperbet/internal/market"
	"github.com/rovshanmuradov/hyperbet/internal/runner"
	"github.com/rovshanmuradov/hyperbet/internal/ui"
	"github.com/rovshanmuradov/hyperbet/internal/ui/app"
	"github.com/rovshanmuradov/hyperbet/internal/ui/router"
	"github.com/rovshanmuradov/hyperbet/internal/ui/screen"
	"github.com/rovshanmuradov/hyperbet/internal/ui/state"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive betting screen (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}
}

// runTUI owns the terminal: every log line goes to the ring buffer shown on
// the logs screen and spills to cfg.LogFile.
func runTUI(ctx context.Context) error {
	buffer, err := logger.NewLogBuffer(cfg.LogBufferSize, cfg.LogFile, zap.NewNop())
	if err != nil {
		return err
	}
	defer buffer.Close()
	stopFlush := buffer.StartPeriodicFlush(5 * time.Second)
	defer close(stopFlush)

	appLogger, err := logger.CreateTUILoggerWithBuffer(cfg.DebugLogging, buffer)
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting hyperbet", zap.Strings("rpc", cfg.MaskedRPCList()))

	r := runner.NewRunner(cfg, appLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.Close(shutdownCtx); err != nil {
			appLogger.Error("Shutdown failed", zap.Error(err))
		}
	}()
	if err := r.Initialize(ctx); err != nil {
		return fmt.Errorf("startup failed (see %s): %w", cfg.LogFile, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := state.NewStore()
	sender := ui.NewUpdateSender(64, appLogger)
	defer sender.Close()

	go func() {
		err := r.Poller.Run(ctx, store.Query, func(snap market.Snapshot) {
			store.RecordSnapshot(snap)
			sender.SendUpdate(market.SnapshotMsg(snap))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Poller stopped", zap.Error(err))
		}
	}()

	refresh := func(ctx context.Context, q market.Query) tea.Cmd {
		return func() tea.Msg {
			snap := r.Poller.Refresh(ctx, q)
			store.RecordSnapshot(snap)
			return market.SnapshotMsg(snap)
		}
	}

	walletShort := ""
	if r.Wallet != nil {
		walletShort = r.Wallet.Short()
	}

	createUI := func() (tea.Model, []tea.ProgramOption) {
		betScreen := screen.NewBetScreen(screen.BetDeps{
			Ctx:     ctx,
			Engine:  r.Engine,
			Actions: r.Actions(),
			Refresh: refresh,
			Store:   store,
			Wallet:  walletShort,
			Logger:  appLogger,
		})
		routes := map[ui.Route]router.Factory{
			ui.RouteLogs: func() router.Screen {
				return screen.NewLogsScreen(buffer, cfg.LogBufferSize)
			},
			ui.RouteHistory: func() router.Screen {
				return screen.NewHistoryScreen(screen.HistoryDeps{
					Ctx:       ctx,
					Storage:   r.Storage,
					Exporter:  r.Exporter,
					Wallet:    r.WalletAddress(),
					ExportDir: "exports",
					Decimals:  store.Decimals,
					Logger:    appLogger,
				})
			},
		}
		model := app.NewAppModel(router.New(betScreen, routes), sender)
		return ui.NewSafeModel(model, appLogger), []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	}

	return ui.NewRecoveryHandler(appLogger, createUI).RunWithRecovery(ctx)
}
