package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/export"
	"github.com/rovshanmuradov/hyperbet/internal/logger"
	"github.com/rovshanmuradov/hyperbet/internal/runner"
	"github.com/rovshanmuradov/hyperbet/internal/wallet"
)

const exportLimit = 10000

func historyCmd() *cobra.Command {
	var (
		format string
		kind   string
		side   string
		status string
		since  time.Duration
		outDir string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Export this wallet's approve/deposit journal to CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if !cfg.HasWallet() {
				return errors.New("no private key configured: the journal is keyed by wallet address")
			}
			if cfg.PostgresURL == "" {
				return errors.New("postgres_url is not set: the in-memory journal does not outlive the TUI")
			}
			if side != "" {
				parsed, err := bet.ParseSide(side)
				if err != nil {
					return err
				}
				side = parsed.String()
			}

			w, err := wallet.NewWallet(cfg.PrivateKey)
			if err != nil {
				return err
			}
			log, err := logger.CreatePrettyLogger(cfg.DebugLogging)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			// журнал читается без RPC
			r := runner.NewRunner(cfg, log)
			store, err := r.OpenStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			txs, err := store.ListTransactions(ctx, w.Address().Hex(), exportLimit, 0)
			if err != nil {
				return err
			}

			opts := export.Options{
				Format:    f,
				Kind:      kind,
				Side:      side,
				Status:    status,
				OutputDir: outDir,
				// decimals of the mainnet tokens; the export does not touch RPC
				Decimals:  map[string]uint8{string(bet.TokenUSDC): 6, string(bet.TokenWBTC): 8},
			}
			if since > 0 {
				opts.StartTime = time.Now().Add(-since)
			}

			exporter := export.NewHistoryExporter(log)
			if stdout {
				return exporter.Write(cmd.OutOrStdout(), txs, opts)
			}
			path, err := exporter.Export(txs, opts)
			if err != nil {
				return err
			}
			log.Debug("Export finished", zap.String("file", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVar(&kind, "kind", "", "approve or deposit")
	cmd.Flags().StringVar(&side, "side", "", "btc or usdc")
	cmd.Flags().StringVar(&status, "status", "", "pending, confirmed or failed")
	cmd.Flags().DurationVar(&since, "since", 0, "only transactions newer than this, e.g. 72h")
	cmd.Flags().StringVarP(&outDir, "out", "o", "exports", "output directory")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write to stdout instead of a file")
	return cmd
}
