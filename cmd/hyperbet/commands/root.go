package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/hyperbet/internal/config"
)

var (
	configPath string
	debug      bool
	cfg        *config.Config
)

// Execute runs the CLI. Without a subcommand it starts the TUI.
func Execute() error {
	root := &cobra.Command{
		Use:          "hyperbet",
		Short:        "Bet on Bitcoin reaching $1M in 90 days",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if debug {
				loaded.DebugLogging = true
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.json", "path to JSON config (empty: defaults and HYPERBET_* env)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(tuiCmd(), statusCmd(), betCmd(), historyCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}
