// Package resilience wraps gobreaker into a generic circuit breaker that
// guards any outbound call — embedding providers, the remote storage
// backend — rather than being scoped to one LLM client.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned when the circuit is open and rejects calls outright.
var ErrOpen = errors.New("circuit breaker is open")

// Config controls trip/reset behavior.
type Config struct {
	// MaxFailures is the number of consecutive failures that trips the breaker.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// HalfOpenMaxSuccesses is the consecutive successes needed in half-open
	// state to close the breaker again.
	HalfOpenMaxSuccesses uint32
}

// DefaultConfig mirrors the teacher's LLM circuit breaker defaults.
func DefaultConfig() Config {
	return Config{MaxFailures: 3, Timeout: 30 * time.Second, HalfOpenMaxSuccesses: 2}
}

// Metrics is a point-in-time snapshot of breaker activity.
type Metrics struct {
	TotalRequests        uint64
	TotalSuccesses        uint64
	TotalFailures         uint64
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker wraps gobreaker with a name so multiple independent breakers
// (one per embedding provider, one for the remote backend) can coexist.
type Breaker struct {
	name    string
	breaker *gobreaker.CircuitBreaker
	mu      sync.RWMutex
	metrics Metrics
}

// New creates a named breaker with cfg.
func New(name string, cfg Config) *Breaker {
	b := &Breaker{name: name}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Interval:    0,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	}
	b.breaker = gobreaker.NewCircuitBreaker(settings)
	return b
}

// Execute runs fn through the breaker. If the circuit is open it returns
// ErrOpen without invoking fn. Context cancellation is checked both
// before entering and before the call itself runs.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	select {
	case <-ctx.Done():
		b.recordFailure()
		return nil, ctx.Err()
	default:
	}

	result, err := b.breaker.Execute(func() (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return fn(ctx)
	})

	if err != nil {
		b.recordFailure()
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, ErrOpen
		}
		return nil, err
	}
	b.recordSuccess()
	return result, nil
}

// State returns "closed", "open", or "half-open".
func (b *Breaker) State() string {
	switch b.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Metrics returns a snapshot combining locally tracked totals with
// gobreaker's live consecutive counters.
func (b *Breaker) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := b.breaker.Counts()
	return Metrics{
		TotalRequests:        b.metrics.TotalRequests,
		TotalSuccesses:       b.metrics.TotalSuccesses,
		TotalFailures:        b.metrics.TotalFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics.TotalRequests++
	b.metrics.TotalSuccesses++
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics.TotalRequests++
	b.metrics.TotalFailures++
}
