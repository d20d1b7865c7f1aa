package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id                TEXT PRIMARY KEY,
	merchant_name     TEXT NOT NULL,
	tx_date           TIMESTAMP NOT NULL,
	total             REAL NOT NULL,
	currency_code     TEXT NOT NULL,
	category          TEXT NOT NULL,
	confidence        REAL NOT NULL,
	needs_review      INTEGER NOT NULL DEFAULT 0,
	manually_verified INTEGER NOT NULL DEFAULT 0,
	payload           TEXT NOT NULL,
	processed_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_tx_date ON receipts (tx_date);
CREATE INDEX IF NOT EXISTS idx_receipts_category ON receipts (category);

CREATE TABLE IF NOT EXISTS extract_jobs (
	id            TEXT PRIMARY KEY,
	receipt_id    TEXT,
	source_path   TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	method        TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	confidence    REAL NOT NULL DEFAULT 0,
	needs_review  INTEGER NOT NULL DEFAULT 0,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP
);
`

// SQLiteStore is the single-user backend. The modernc driver keeps the
// binary cgo-free.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at dsn and applies the
// schema. dsn accepts ":memory:" for tests.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	// modernc serializes writes; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "apply sqlite schema")
	}
	logger.Info("sqlite store ready", "dsn", dsn)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) SaveReceipt(ctx context.Context, r *entity.ReceiptSchema) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return common.WrapError(err, "marshal receipt")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO receipts
			(id, merchant_name, tx_date, total, currency_code, category,
			 confidence, needs_review, manually_verified, payload, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			merchant_name     = excluded.merchant_name,
			tx_date           = excluded.tx_date,
			total             = excluded.total,
			currency_code     = excluded.currency_code,
			category          = excluded.category,
			confidence        = excluded.confidence,
			needs_review      = excluded.needs_review,
			manually_verified = excluded.manually_verified,
			payload           = excluded.payload,
			processed_at      = excluded.processed_at`,
		r.ID.String(), r.MerchantName, r.TxDate.UTC(), r.Total, r.CurrencyCode,
		r.Category, r.Confidence, r.NeedsReview, r.ManuallyVerified,
		string(payload), r.ProcessedAt.UTC(),
	)
	if err != nil {
		s.logger.Error("receipt save failed", "receipt_id", r.ID, "error", err)
		return common.WrapError(err, "save receipt")
	}
	s.logger.Debug("receipt saved", "receipt_id", r.ID, "merchant", r.MerchantName)
	return nil
}

func (s *SQLiteStore) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.ReceiptSchema, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM receipts WHERE id = ?`, id.String(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("RECEIPT_NOT_FOUND", id.String(), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "get receipt")
	}
	return unmarshalReceipt([]byte(payload))
}

func (s *SQLiteStore) ListReceipts(ctx context.Context, filter ReceiptFilter) ([]*entity.ReceiptSchema, error) {
	query := `SELECT payload FROM receipts`
	var conds []string
	var args []any
	if filter.FromDate != nil {
		conds = append(conds, "tx_date >= ?")
		args = append(args, filter.FromDate.UTC())
	}
	if filter.ToDate != nil {
		conds = append(conds, "tx_date <= ?")
		args = append(args, filter.ToDate.UTC())
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.NeedsReview != nil {
		conds = append(conds, "needs_review = ?")
		args = append(args, *filter.NeedsReview)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY tx_date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list receipts")
	}
	defer rows.Close()

	var out []*entity.ReceiptSchema
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, common.WrapError(err, "scan receipt")
		}
		r, err := unmarshalReceipt([]byte(payload))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AnnotateReceipt(ctx context.Context, id uuid.UUID, ann Annotation) (*entity.ReceiptSchema, error) {
	r, err := s.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	applyAnnotation(r, ann)
	if err := s.SaveReceipt(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("receipt annotated", "receipt_id", id)
	return r, nil
}

func (s *SQLiteStore) StartJob(ctx context.Context, sourcePath, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Format:     format,
		Status:     string(constants.JobStatusRunning),
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extract_jobs (id, source_path, format, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		job.ID.String(), job.SourcePath, job.Format, job.Status, job.StartedAt,
	)
	if err != nil {
		s.logger.Error("extract_job start failed", "source", sourcePath, "error", err)
		return nil, common.WrapError(err, "start job")
	}
	s.logger.Info("extract_job started", "job_id", job.ID, "source", sourcePath, "format", format)
	return job, nil
}

func (s *SQLiteStore) MarkJobAcquired(ctx context.Context, jobID uuid.UUID, method string, confidence float32) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE extract_jobs SET status = ?, method = ?, confidence = ? WHERE id = ?`,
		string(constants.JobStatusAcquired), method, confidence, jobID.String(),
	)
	return common.WrapError(err, "mark job acquired")
}

func (s *SQLiteStore) FinishJobSuccess(ctx context.Context, jobID, receiptID uuid.UUID, confidence float32, needsReview bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE extract_jobs
		SET status = ?, receipt_id = ?, confidence = ?, needs_review = ?, finished_at = ?
		WHERE id = ?`,
		string(constants.JobStatusParsed), receiptID.String(), confidence,
		needsReview, time.Now().UTC(), jobID.String(),
	)
	if err != nil {
		s.logger.Error("extract_job finish failed", "job_id", jobID, "error", err)
		return common.WrapError(err, "finish job")
	}
	s.logger.Info("extract_job finished", "job_id", jobID, "receipt_id", receiptID, "confidence", confidence)
	return nil
}

func (s *SQLiteStore) FinishJobFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE extract_jobs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), message, time.Now().UTC(), jobID.String(),
	)
	if err != nil {
		s.logger.Error("extract_job fail-mark failed", "job_id", jobID, "error", err)
		return common.WrapError(err, "fail job")
	}
	s.logger.Warn("extract_job failed", "job_id", jobID, "error", message)
	return nil
}

func (s *SQLiteStore) GetJob(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, receipt_id, source_path, format, status, method,
		       error_message, confidence, needs_review, started_at, finished_at
		FROM extract_jobs WHERE id = ?`, jobID.String())
	return scanJob(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*entity.ExtractJob, error) {
	var (
		job        entity.ExtractJob
		idStr      string
		receiptID  sql.NullString
		finishedAt sql.NullTime
	)
	err := row.Scan(&idStr, &receiptID, &job.SourcePath, &job.Format, &job.Status,
		&job.Method, &job.ErrorMessage, &job.Confidence, &job.NeedsReview,
		&job.StartedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("JOB_NOT_FOUND", "extract job", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "scan job")
	}
	job.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, common.WrapError(err, "parse job id")
	}
	if receiptID.Valid {
		rid, err := uuid.Parse(receiptID.String)
		if err != nil {
			return nil, common.WrapError(err, "parse receipt id")
		}
		job.ReceiptID = &rid
	}
	if finishedAt.Valid {
		job.FinishedAt = &finishedAt.Time
	}
	return &job, nil
}

func unmarshalReceipt(payload []byte) (*entity.ReceiptSchema, error) {
	var r entity.ReceiptSchema
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("decode receipt payload: %w", err)
	}
	return &r, nil
}

// applyAnnotation patches r in place. Free-form categories are folded onto
// the fixed taxonomy first.
func applyAnnotation(r *entity.ReceiptSchema, ann Annotation) {
	if ann.MerchantName != nil && *ann.MerchantName != "" {
		r.MerchantName = *ann.MerchantName
	}
	if ann.Category != nil && *ann.Category != "" {
		if cat, ok := constants.Canonicalize(*ann.Category); ok {
			r.Category = string(cat)
		} else {
			r.Category = string(constants.Other)
		}
	}
	if ann.Total != nil && *ann.Total > 0 {
		r.Total = *ann.Total
	}
	if ann.Notes != nil {
		r.Notes = *ann.Notes
	}
	if ann.Verified != nil {
		r.ManuallyVerified = *ann.Verified
		if *ann.Verified {
			r.NeedsReview = false
		}
	}
}
