package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/logger"
	"github.com/rovshanmuradov/hyperbet/internal/runner"
)

// startRunner wires the services for a one-shot command with console logging.
// The returned func closes them and flushes the logger.
func startRunner(ctx context.Context) (*runner.Runner, *zap.Logger, func(), error) {
	log, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		return nil, nil, nil, err
	}

	r := runner.NewRunner(cfg, log)
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.Close(shutdownCtx); err != nil {
			log.Warn("Shutdown failed", zap.Error(err))
		}
		_ = log.Sync()
	}

	if err := r.Initialize(ctx); err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return r, log, cleanup, nil
}
