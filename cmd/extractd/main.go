// extractd watches receipt directories and runs the extraction pipeline on
// every file that appears.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipt-pipeline/internal/app"
	"github.com/joseph-ayodele/receipt-pipeline/internal/async"
	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/ingest"
	"github.com/joseph-ayodele/receipt-pipeline/internal/pipeline"
)

func main() {
	zl, _ := zap.NewProduction()
	defer func() { _ = zl.Sync() }()
	log := zl.Sugar()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if len(cfg.Ingest.WatchRoots) == 0 {
		log.Fatal("WATCH_ROOTS env var is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer func() { _ = store.Close() }()

	selector := app.BuildSelector(cfg, logger)
	processor := pipeline.NewProcessor(selector, store, logger)

	pool := async.NewPool(cfg.Ingest.Workers, cfg.Ingest.Workers*8, func(ctx context.Context, path string) error {
		_, err := processor.ProcessFile(ctx, path)
		return err
	}, logger)
	pool.Start(ctx)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Ingest.WatchRoots,
		InitialScan: cfg.Ingest.InitialScan,
		Debounce:    cfg.Ingest.Debounce,
	}, logger)
	if err != nil {
		log.Fatalf("starting watcher: %v", err)
	}

	log.Infow("extractd running",
		"roots", cfg.Ingest.WatchRoots,
		"workers", cfg.Ingest.Workers,
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			pool.Shutdown(shutdownCtx)
			cancel()
			log.Info("stopped.")
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			pool.Enqueue(path)
		case werr, ok := <-watchErrs:
			if ok && werr != nil {
				log.Warnw("watch error", "error", werr)
			}
		}
	}
}
