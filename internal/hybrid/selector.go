// Package hybrid implements the two-tier acquisition strategy: prefer the
// document-understanding provider, fall back to plain OCR.
package hybrid

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
	"github.com/joseph-ayodele/receipt-pipeline/internal/provider"
)

// ErrAllProvidersFailed is the explicit terminal failure, distinct from a
// success with low confidence — callers must not conflate the two.
var ErrAllProvidersFailed = errors.New("all acquisition providers failed")

// Outcome is the selector result plus provenance: which method produced the
// data and whether the fallback tier was used.
type Outcome struct {
	Result       entity.AcquisitionResult
	UsedFallback bool
}

// Selector orchestrates acquisition. The primary provider's result is
// accepted only above the confidence threshold; the fallback OCR result is
// final whatever its confidence.
type Selector struct {
	primary         provider.Provider
	fallback        provider.Provider
	acceptThreshold float32
	enableFallback  bool
	logger          *slog.Logger
}

func NewSelector(primary, fallback provider.Provider, acceptThreshold float32, enableFallback bool, logger *slog.Logger) *Selector {
	if acceptThreshold <= 0 {
		acceptThreshold = 0.7
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		primary:         primary,
		fallback:        fallback,
		acceptThreshold: acceptThreshold,
		enableFallback:  enableFallback,
		logger:          logger,
	}
}

// Acquire runs the primary attempt and, when it fails or scores at or below
// the threshold, the fallback attempt. Network calls are the only side
// effects; the selector keeps no state across invocations.
func (s *Selector) Acquire(ctx context.Context, img provider.Image) (Outcome, error) {
	primaryRes, primaryErr := s.primary.Acquire(ctx, img)

	if primaryErr == nil && primaryRes.Success && primaryRes.Confidence > s.acceptThreshold {
		s.logger.Info("hybrid.primary.accepted",
			"method", primaryRes.Method,
			"confidence", primaryRes.Confidence,
		)
		return Outcome{Result: primaryRes}, nil
	}

	if !s.enableFallback || s.fallback == nil {
		if primaryErr == nil && primaryRes.Success {
			// No fallback available: a low-confidence primary result is
			// still returned, labeled as such by its confidence.
			s.logger.Warn("hybrid.primary.low_confidence_final",
				"confidence", primaryRes.Confidence,
				"threshold", s.acceptThreshold,
			)
			return Outcome{Result: primaryRes}, nil
		}
		s.logger.Error("hybrid.failed", "fallback_enabled", false, "error", primaryErr)
		return Outcome{Result: primaryRes}, ErrAllProvidersFailed
	}

	if primaryErr != nil {
		s.logger.Warn("hybrid.primary.failed", "error", primaryErr)
	} else {
		s.logger.Info("hybrid.primary.below_threshold",
			"confidence", primaryRes.Confidence,
			"threshold", s.acceptThreshold,
		)
	}

	fallbackRes, fallbackErr := s.fallback.Acquire(ctx, img)
	if fallbackErr == nil && fallbackRes.Success {
		s.logger.Info("hybrid.fallback.accepted",
			"method", fallbackRes.Method,
			"confidence", fallbackRes.Confidence,
		)
		return Outcome{Result: fallbackRes, UsedFallback: true}, nil
	}

	// Fallback failed too; a low-confidence primary success still beats
	// nothing at all.
	if primaryErr == nil && primaryRes.Success {
		s.logger.Warn("hybrid.fallback.failed_keeping_primary", "error", fallbackErr)
		return Outcome{Result: primaryRes}, nil
	}

	s.logger.Error("hybrid.failed",
		"primary_error", primaryErr,
		"fallback_error", fallbackErr,
	)
	return Outcome{Result: fallbackRes, UsedFallback: true}, ErrAllProvidersFailed
}
