// receipt-export writes stored receipts for a date window to an XLSX file.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/receipt-pipeline/internal/app"
	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/export"
)

func main() {
	out := flag.String("out", "receipts.xlsx", "output file")
	fromStr := flag.String("from", "", "start date (YYYY-MM-DD, inclusive)")
	toStr := flag.String("to", "", "end date (YYYY-MM-DD, inclusive)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var from, to *time.Time
	if *fromStr != "" {
		t, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			logger.Error("invalid -from date", "value", *fromStr, "error", err)
			os.Exit(2)
		}
		from = &t
	}
	if *toStr != "" {
		t, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			logger.Error("invalid -to date", "value", *toStr, "error", err)
			os.Exit(2)
		}
		to = &t
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	data, err := export.NewService(store, logger).ExportReceiptsXLSX(ctx, from, to)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("write output", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "bytes", len(data))
}
