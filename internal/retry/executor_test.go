package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
)

func TestExecutor_SucceedsFirstAttempt(t *testing.T) {
	e := NewExecutor(3, time.Millisecond, nil)
	calls := 0

	err := e.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_RetriesTransientThenSucceeds(t *testing.T) {
	e := NewExecutor(4, time.Millisecond, nil)
	calls := 0

	err := e.Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls <= 3 {
			return common.NewTransientError("vision", 503, "unavailable", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestExecutor_ExhaustsTransient(t *testing.T) {
	e := NewExecutor(3, time.Millisecond, nil)
	calls := 0
	failure := common.NewTransientError("vision", 500, "boom", nil)

	err := e.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return failure
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	var pe *common.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 500, pe.Status)
}

func TestExecutor_TerminalStopsImmediately(t *testing.T) {
	e := NewExecutor(3, time.Millisecond, nil)
	calls := 0

	err := e.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return common.NewTerminalError("vision", 400, "bad request", nil)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, common.IsTransient(err))
}

func TestExecutor_RawErrorsCountAsTransient(t *testing.T) {
	e := NewExecutor(2, time.Millisecond, nil)
	calls := 0
	netErr := errors.New("connection reset")

	err := e.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return netErr
	})

	require.ErrorIs(t, err, netErr)
	assert.Equal(t, 2, calls)
}

func TestExecutor_ContextCancelStopsRetries(t *testing.T) {
	e := NewExecutor(5, 50*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := e.Do(ctx, "op", func(context.Context) error {
		calls++
		cancel()
		return common.NewTransientError("vision", 503, "unavailable", nil)
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
