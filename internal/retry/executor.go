// Package retry wraps cloud provider calls with bounded retries, linear
// backoff and an optional circuit breaker.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
)

// Executor retries an operation up to MaxAttempts with a linearly increasing
// delay (BaseDelay × attempt number). A call returning nil or a terminal
// (non-transient) error stops immediately; exhausting retries surfaces the
// last observed error. The executor holds no mutable state and is safe for
// concurrent use across independent requests.
type Executor struct {
	MaxAttempts int
	BaseDelay   time.Duration
	logger      *slog.Logger
}

func NewExecutor(maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{MaxAttempts: maxAttempts, BaseDelay: baseDelay, logger: logger}
}

// Do runs fn until it succeeds, fails terminally, exhausts the attempt
// bound, or the context is cancelled.
func (e *Executor) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= e.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				e.logger.Info("retry.recovered", "op", name, "attempt", attempt)
			}
			return nil
		}
		if !common.IsTransient(err) {
			e.logger.Warn("retry.terminal", "op", name, "attempt", attempt, "error", err)
			return err
		}

		lastErr = err
		if attempt == e.MaxAttempts {
			break
		}

		delay := e.BaseDelay * time.Duration(attempt)
		e.logger.Warn("retry.backoff", "op", name, "attempt", attempt, "delay_ms", delay.Milliseconds(), "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	e.logger.Error("retry.exhausted", "op", name, "attempts", e.MaxAttempts, "error", lastErr)
	return lastErr
}
