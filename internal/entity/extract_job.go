package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractJob tracks one pipeline invocation for a source file.
type ExtractJob struct {
	ID           uuid.UUID  `json:"id"`
	ReceiptID    *uuid.UUID `json:"receipt_id,omitempty"`
	SourcePath   string     `json:"source_path"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	Method       string     `json:"method,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Confidence   float32    `json:"confidence"`
	NeedsReview  bool       `json:"needs_review"`
	RawText      string     `json:"raw_text,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
