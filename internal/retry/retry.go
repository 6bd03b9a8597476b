// Package retry implements the exponential-backoff retry wrapper used
// around any operation that talks to storage or an embedding provider.
package retry

import (
	"context"
	"time"

	"github.com/kaizen-dev/memento/internal/kerrors"
)

// Config controls retry behavior. BaseDelay is multiplied by 2^attempt
// for each successive retry.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultConfig matches the teacher's LLM circuit breaker defaults in
// spirit: a handful of quick retries rather than a long backoff tail.
func DefaultConfig() Config {
	return Config{MaxRetries: 3, BaseDelay: 200 * time.Millisecond}
}

// With runs fn, retrying up to cfg.MaxRetries times on transient errors
// with delay base_delay * 2^attempt between attempts. Non-transient
// errors (as classified by kerrors.IsTransient) are returned immediately
// without retrying. The context is checked before every sleep so a
// cancellation interrupts the wait instead of running it to completion.
func With[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !kerrors.IsTransient(err) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.BaseDelay * time.Duration(1<<uint(attempt))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
