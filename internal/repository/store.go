// Package repository persists receipts and extract jobs. Two backends share
// one interface: Postgres over a pgx pool for the daemon, SQLite for
// single-user and test runs. Receipts are stored with a few queryable
// columns plus the full JSON payload, so schema evolution never needs a
// column migration for new receipt fields.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

// ReceiptFilter narrows ListReceipts. Zero values mean "no constraint".
type ReceiptFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	Category    string
	NeedsReview *bool
}

// Annotation is a user correction applied to a stored receipt. Nil fields
// are left untouched. Verified also clears NeedsReview.
type Annotation struct {
	MerchantName *string
	Category     *string
	Total        *float64
	Notes        *string
	Verified     *bool
}

type ReceiptStore interface {
	SaveReceipt(ctx context.Context, r *entity.ReceiptSchema) error
	GetReceipt(ctx context.Context, id uuid.UUID) (*entity.ReceiptSchema, error)
	ListReceipts(ctx context.Context, filter ReceiptFilter) ([]*entity.ReceiptSchema, error)
	AnnotateReceipt(ctx context.Context, id uuid.UUID, ann Annotation) (*entity.ReceiptSchema, error)
}

type JobStore interface {
	StartJob(ctx context.Context, sourcePath, format string) (*entity.ExtractJob, error)
	MarkJobAcquired(ctx context.Context, jobID uuid.UUID, method string, confidence float32) error
	FinishJobSuccess(ctx context.Context, jobID, receiptID uuid.UUID, confidence float32, needsReview bool) error
	FinishJobFailure(ctx context.Context, jobID uuid.UUID, message string) error
	GetJob(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
}

// Store is the full persistence surface the pipeline needs.
type Store interface {
	ReceiptStore
	JobStore
	Close() error
}
