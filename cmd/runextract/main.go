// runextract runs the pipeline once for a single file (or every receipt in a
// directory) and prints the resulting records as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/receipt-pipeline/internal/app"
	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
	"github.com/joseph-ayodele/receipt-pipeline/internal/ingest"
	"github.com/joseph-ayodele/receipt-pipeline/internal/pipeline"
)

func main() {
	dir := flag.Bool("dir", false, "treat the argument as a directory and process every receipt in it")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runextract [-dir] <path>")
		os.Exit(2)
	}
	target := flag.Arg(0)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	processor := pipeline.NewProcessor(app.BuildSelector(cfg, logger), store, logger)

	paths := []string{target}
	if *dir {
		var stats ingest.ScanStats
		paths, stats, err = ingest.ScanDirectory(target, nil, true)
		if err != nil {
			logger.Error("scan directory", "root", target, "error", err)
			os.Exit(1)
		}
		logger.Warn("scan complete", "matched", stats.Matched, "scanned", stats.Scanned)
	}

	var receipts []*entity.ReceiptSchema
	failed := 0
	for _, p := range paths {
		r, err := processor.ProcessFile(ctx, p)
		if err != nil {
			logger.Error("extraction failed", "path", p, "error", err)
			failed++
			continue
		}
		receipts = append(receipts, r)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if !*dir && len(receipts) == 1 {
		_ = enc.Encode(receipts[0])
	} else {
		_ = enc.Encode(receipts)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
