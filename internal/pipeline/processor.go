// Package pipeline coordinates one receipt end to end: acquire text or
// entities through the hybrid selector, derive fields, score confidence,
// assemble the canonical record, and persist it with its extract job.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
	"github.com/joseph-ayodele/receipt-pipeline/internal/extract"
	"github.com/joseph-ayodele/receipt-pipeline/internal/hybrid"
	"github.com/joseph-ayodele/receipt-pipeline/internal/provider"
	"github.com/joseph-ayodele/receipt-pipeline/internal/repository"
)

// Acquirer is the selector surface the processor needs; tests stub it.
type Acquirer interface {
	Acquire(ctx context.Context, img provider.Image) (hybrid.Outcome, error)
}

var _ Acquirer = (*hybrid.Selector)(nil)

type Processor struct {
	Selector Acquirer
	Store    repository.Store
	Logger   *slog.Logger

	// Now is stubbed in tests; nil means time.Now.
	Now func() time.Time
}

func NewProcessor(selector Acquirer, store repository.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Selector: selector, Store: store, Logger: logger}
}

// ProcessFile runs the whole pipeline for one source file, tracking progress
// in an extract job. The job survives failure with status FAILED and the
// error message, so a batch run can be audited afterwards.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*entity.ReceiptSchema, error) {
	ctx = common.EnsureRequestID(ctx)

	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return nil, common.NewAppError("UNSUPPORTED_FORMAT", filepath.Ext(path), common.ErrInvalidInput)
	}

	job, err := p.Store.StartJob(ctx, path, format)
	if err != nil {
		return nil, err
	}

	receipt, err := p.run(ctx, job.ID, provider.Image{Path: path}, "")
	if err != nil {
		_ = p.Store.FinishJobFailure(ctx, job.ID, err.Error())
		return nil, err
	}

	if err := p.Store.FinishJobSuccess(ctx, job.ID, receipt.ID, receipt.Confidence, receipt.NeedsReview); err != nil {
		return receipt, err
	}
	return receipt, nil
}

// ProcessImage runs the pipeline for in-memory bytes, as received from a mail
// attachment. originatingAddress feeds the merchant domain fallback.
func (p *Processor) ProcessImage(ctx context.Context, img provider.Image, originatingAddress string) (*entity.ReceiptSchema, error) {
	ctx = common.EnsureRequestID(ctx)

	job, err := p.Store.StartJob(ctx, img.Path, constants.IMAGE)
	if err != nil {
		return nil, err
	}

	receipt, err := p.run(ctx, job.ID, img, originatingAddress)
	if err != nil {
		_ = p.Store.FinishJobFailure(ctx, job.ID, err.Error())
		return nil, err
	}

	if err := p.Store.FinishJobSuccess(ctx, job.ID, receipt.ID, receipt.Confidence, receipt.NeedsReview); err != nil {
		return receipt, err
	}
	return receipt, nil
}

func (p *Processor) run(ctx context.Context, jobID uuid.UUID, img provider.Image, originatingAddress string) (*entity.ReceiptSchema, error) {
	reqID := common.RequestIDFromContext(ctx)

	outcome, err := p.Selector.Acquire(ctx, img)
	if err != nil {
		p.Logger.Error("pipeline.acquire.failed", "request_id", reqID, "job_id", jobID, "error", err)
		return nil, err
	}
	res := outcome.Result
	p.Logger.Info("pipeline.acquire.ok",
		"request_id", reqID,
		"job_id", jobID,
		"method", res.Method,
		"confidence", res.Confidence,
		"used_fallback", outcome.UsedFallback,
	)
	if err := p.Store.MarkJobAcquired(ctx, jobID, string(res.Method), res.Confidence); err != nil {
		return nil, err
	}

	strategy := extract.StrategyFor(res)
	fields := strategy.Extract(res, originatingAddress)

	text := res.FullText()
	confidence := extract.Score(fields, text)

	receipt := extract.Assemble(fields, extract.AssembleInput{
		Method:       res.Method,
		UsedFallback: outcome.UsedFallback,
		RawText:      text,
		Confidence:   confidence,
		Now:          p.Now,
	})

	if err := p.validate(&receipt); err != nil {
		// A record failing its own schema is a bug worth surfacing, but the
		// user still gets their data: flag for review instead of dropping.
		p.Logger.Warn("pipeline.validate.failed", "request_id", reqID, "job_id", jobID, "error", err)
		receipt.NeedsReview = true
	}

	if err := p.Store.SaveReceipt(ctx, &receipt); err != nil {
		return nil, err
	}

	p.Logger.Info("pipeline.parse.ok",
		"request_id", reqID,
		"job_id", jobID,
		"receipt_id", receipt.ID,
		"merchant", receipt.MerchantName,
		"total", receipt.Total,
		"confidence", receipt.Confidence,
		"needs_review", receipt.NeedsReview,
	)
	return &receipt, nil
}

func (p *Processor) validate(r *entity.ReceiptSchema) error {
	m, err := extract.ToMap(*r)
	if err != nil {
		return err
	}
	extract.SanitizeReceiptMap(m, p.Logger)
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode receipt map: %w", err)
	}
	return extract.ValidateJSONAgainstSchema(extract.BuildReceiptJSONSchema(), b)
}
