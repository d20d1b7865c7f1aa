package retry

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
)

// NewProviderBreaker builds a circuit breaker for one acquisition provider.
// Only transient failures count against the breaker; terminal 4xx responses
// are the caller's problem, not the endpoint's health. An open breaker makes
// the provider fail fast so the hybrid selector moves on to its fallback
// instead of burning the retry budget against a dead endpoint.
func NewProviderBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !common.IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("breaker.state_change", "provider", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[[]byte](settings)
}
