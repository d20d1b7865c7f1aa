package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/receipt-pipeline/constants"
	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS receipts (
	id                UUID PRIMARY KEY,
	merchant_name     TEXT NOT NULL,
	tx_date           TIMESTAMPTZ NOT NULL,
	total             DOUBLE PRECISION NOT NULL,
	currency_code     TEXT NOT NULL,
	category          TEXT NOT NULL,
	confidence        REAL NOT NULL,
	needs_review      BOOLEAN NOT NULL DEFAULT FALSE,
	manually_verified BOOLEAN NOT NULL DEFAULT FALSE,
	payload           JSONB NOT NULL,
	processed_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_tx_date ON receipts (tx_date);
CREATE INDEX IF NOT EXISTS idx_receipts_category ON receipts (category);

CREATE TABLE IF NOT EXISTS extract_jobs (
	id            UUID PRIMARY KEY,
	receipt_id    UUID,
	source_path   TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	method        TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	confidence    REAL NOT NULL DEFAULT 0,
	needs_review  BOOLEAN NOT NULL DEFAULT FALSE,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ
);
`

// OpenPool creates a pgx pool from the database config.
func OpenPool(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "receipt-pipeline"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// PostgresStore is the daemon backend.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore applies the schema and wraps the pool.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, common.WrapError(err, "apply postgres schema")
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveReceipt(ctx context.Context, r *entity.ReceiptSchema) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return common.WrapError(err, "marshal receipt")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO receipts
			(id, merchant_name, tx_date, total, currency_code, category,
			 confidence, needs_review, manually_verified, payload, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			merchant_name     = EXCLUDED.merchant_name,
			tx_date           = EXCLUDED.tx_date,
			total             = EXCLUDED.total,
			currency_code     = EXCLUDED.currency_code,
			category          = EXCLUDED.category,
			confidence        = EXCLUDED.confidence,
			needs_review      = EXCLUDED.needs_review,
			manually_verified = EXCLUDED.manually_verified,
			payload           = EXCLUDED.payload,
			processed_at      = EXCLUDED.processed_at`,
		r.ID, r.MerchantName, r.TxDate.UTC(), r.Total, r.CurrencyCode,
		r.Category, r.Confidence, r.NeedsReview, r.ManuallyVerified,
		payload, r.ProcessedAt.UTC(),
	)
	if err != nil {
		s.logger.Error("receipt save failed", "receipt_id", r.ID, "error", err)
		return common.WrapError(err, "save receipt")
	}
	s.logger.Debug("receipt saved", "receipt_id", r.ID, "merchant", r.MerchantName)
	return nil
}

func (s *PostgresStore) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.ReceiptSchema, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM receipts WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("RECEIPT_NOT_FOUND", id.String(), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "get receipt")
	}
	return unmarshalReceipt(payload)
}

func (s *PostgresStore) ListReceipts(ctx context.Context, filter ReceiptFilter) ([]*entity.ReceiptSchema, error) {
	query := `SELECT payload FROM receipts`
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.FromDate != nil {
		conds = append(conds, "tx_date >= "+arg(filter.FromDate.UTC()))
	}
	if filter.ToDate != nil {
		conds = append(conds, "tx_date <= "+arg(filter.ToDate.UTC()))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.NeedsReview != nil {
		conds = append(conds, "needs_review = "+arg(*filter.NeedsReview))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY tx_date"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, common.WrapError(err, "list receipts")
	}
	defer rows.Close()

	var out []*entity.ReceiptSchema
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, common.WrapError(err, "scan receipt")
		}
		r, err := unmarshalReceipt(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AnnotateReceipt(ctx context.Context, id uuid.UUID, ann Annotation) (*entity.ReceiptSchema, error) {
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

func (s *PostgresStore) StartJob(ctx context.Context, sourcePath, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Format:     format,
		Status:     string(constants.JobStatusRunning),
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO extract_jobs (id, source_path, format, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.SourcePath, job.Format, job.Status, job.StartedAt,
	)
	if err != nil {
		s.logger.Error("extract_job start failed", "source", sourcePath, "error", err)
		return nil, common.WrapError(err, "start job")
	}
	s.logger.Info("extract_job started", "job_id", job.ID, "source", sourcePath, "format", format)
	return job, nil
}

func (s *PostgresStore) MarkJobAcquired(ctx context.Context, jobID uuid.UUID, method string, confidence float32) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE extract_jobs SET status = $1, method = $2, confidence = $3 WHERE id = $4`,
		string(constants.JobStatusAcquired), method, confidence, jobID,
	)
	return common.WrapError(err, "mark job acquired")
}

func (s *PostgresStore) FinishJobSuccess(ctx context.Context, jobID, receiptID uuid.UUID, confidence float32, needsReview bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE extract_jobs
		SET status = $1, receipt_id = $2, confidence = $3, needs_review = $4, finished_at = $5
		WHERE id = $6`,
		string(constants.JobStatusParsed), receiptID, confidence,
		needsReview, time.Now().UTC(), jobID,
	)
	if err != nil {
		s.logger.Error("extract_job finish failed", "job_id", jobID, "error", err)
		return common.WrapError(err, "finish job")
	}
	s.logger.Info("extract_job finished", "job_id", jobID, "receipt_id", receiptID, "confidence", confidence)
	return nil
}

func (s *PostgresStore) FinishJobFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE extract_jobs SET status = $1, error_message = $2, finished_at = $3 WHERE id = $4`,
		string(constants.JobStatusFailed), message, time.Now().UTC(), jobID,
	)
	if err != nil {
		s.logger.Error("extract_job fail-mark failed", "job_id", jobID, "error", err)
		return common.WrapError(err, "fail job")
	}
	s.logger.Warn("extract_job failed", "job_id", jobID, "error", message)
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, receipt_id, source_path, format, status, method,
		       error_message, confidence, needs_review, started_at, finished_at
		FROM extract_jobs WHERE id = $1`, jobID)
	return scanPgJob(row)
}

func scanPgJob(row pgx.Row) (*entity.ExtractJob, error) {
	var (
		job        entity.ExtractJob
		receiptID  *uuid.UUID
		finishedAt *time.Time
	)
	err := row.Scan(&job.ID, &receiptID, &job.SourcePath, &job.Format, &job.Status,
		&job.Method, &job.ErrorMessage, &job.Confidence, &job.NeedsReview,
		&job.StartedAt, &finishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewAppError("JOB_NOT_FOUND", "extract job", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.WrapError(err, "scan job")
	}
	job.ReceiptID = receiptID
	job.FinishedAt = finishedAt
	return &job, nil
}
