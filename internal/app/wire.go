// Package app wires configuration into the concrete provider stack and
// storage backend shared by the command binaries.
package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/hybrid"
	"github.com/joseph-ayodele/receipt-pipeline/internal/provider"
	"github.com/joseph-ayodele/receipt-pipeline/internal/repository"
	"github.com/joseph-ayodele/receipt-pipeline/internal/retry"
)

// BuildSelector assembles the acquisition tiers from config. Preference
// order for the primary is document understanding, then cloud OCR, then the
// on-device recognizer; whatever is next in line becomes the fallback.
func BuildSelector(cfg *common.Config, logger *slog.Logger) *hybrid.Selector {
	exec := retry.NewExecutor(cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, logger)

	tess := provider.NewTesseractClient(provider.TesseractConfig{
		Binary:        cfg.OCR.Tesseract,
		Lang:          cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		Pdftotext:     cfg.OCR.Pdftotext,
		HeicConverter: cfg.OCR.HeicConverter,
	}, logger)

	var tiers []provider.Provider
	if cfg.Provider.DocAIEndpoint != "" {
		tiers = append(tiers, provider.NewDocAIClient(provider.DocAIConfig{
			Endpoint: cfg.Provider.DocAIEndpoint,
			APIKey:   cfg.Provider.APIKey,
			Timeout:  cfg.Provider.Timeout,
		}, exec, logger))
	}
	if cfg.Provider.VisionEndpoint != "" && cfg.Provider.APIKey != "" {
		tiers = append(tiers, provider.NewVisionClient(provider.VisionConfig{
			Endpoint:   cfg.Provider.VisionEndpoint,
			APIKey:     cfg.Provider.APIKey,
			MaxResults: cfg.Provider.MaxResults,
			Timeout:    cfg.Provider.Timeout,
		}, exec, logger))
	}
	tiers = append(tiers, tess)

	primary := tiers[0]
	var fallback provider.Provider
	enableFallback := cfg.Pipeline.EnableFallback
	if len(tiers) > 1 {
		fallback = tiers[1]
	} else {
		enableFallback = false
	}

	logger.Info("acquisition stack",
		"primary", primary.Name(),
		"fallback", fallbackName(fallback),
		"fallback_enabled", enableFallback,
		"accept_threshold", cfg.Pipeline.AcceptThreshold,
	)
	return hybrid.NewSelector(primary, fallback, cfg.Pipeline.AcceptThreshold, enableFallback, logger)
}

func fallbackName(p provider.Provider) string {
	if p == nil {
		return "none"
	}
	return string(p.Name())
}

// OpenStore picks the storage backend from the database config.
func OpenStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (repository.Store, error) {
	if cfg.Database.Driver == "postgres" {
		pool, err := repository.OpenPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
			pool.Close()
			return nil, err
		}
		return repository.NewPostgresStore(ctx, pool, logger)
	}
	return repository.OpenSQLite(ctx, cfg.Database.DSN, logger)
}
