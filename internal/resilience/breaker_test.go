package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSuccessKeepsClosed(t *testing.T) {
	b := New("test", DefaultConfig())
	result, err := b.Execute(context.Background(), func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, "closed", b.State())
}

func TestExecuteTripsAfterMaxFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 2, Timeout: time.Minute, HalfOpenMaxSuccesses: 1})
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := b.Execute(context.Background(), func(ctx context.Context) (any, error) {
			return nil, boom
		})
		assert.Error(t, err)
	}

	assert.Equal(t, "open", b.State())

	_, err := b.Execute(context.Background(), func(ctx context.Context) (any, error) {
		return "should not run", nil
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestMetricsTrackTotals(t *testing.T) {
	b := New("test", DefaultConfig())
	_, _ = b.Execute(context.Background(), func(ctx context.Context) (any, error) { return 1, nil })
	_, _ = b.Execute(context.Background(), func(ctx context.Context) (any, error) { return nil, errors.New("x") })

	m := b.Metrics()
	assert.Equal(t, uint64(2), m.TotalRequests)
	assert.Equal(t, uint64(1), m.TotalSuccesses)
	assert.Equal(t, uint64(1), m.TotalFailures)
}

func TestExecuteRespectsCancelledContext(t *testing.T) {
	b := New("test", DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Execute(ctx, func(ctx context.Context) (any, error) {
		return "should not run", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
