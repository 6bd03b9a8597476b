package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{MaxRetries: 3, BaseDelay: time.Millisecond}
}

func TestWithSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := With(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestWithDoesNotRetryNonTransient(t *testing.T) {
	calls := 0
	_, err := With(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, kerrors.InvalidInput("bad input")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetriesTransientUpToMax(t *testing.T) {
	calls := 0
	_, err := With(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		return 0, kerrors.Wrap(kerrors.Http, "503 service unavailable", nil)
	})
	require.Error(t, err)
	assert.Equal(t, fastConfig().MaxRetries+1, calls)
}

func TestWithSucceedsOnRetry(t *testing.T) {
	calls := 0
	got, err := With(context.Background(), fastConfig(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, kerrors.StorageErr("connection refused")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, calls)
}

func TestWithRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(2 * time.Millisecond)
		cancel()
	}()

	_, err := With(ctx, Config{MaxRetries: 10, BaseDelay: 50 * time.Millisecond}, func(ctx context.Context) (int, error) {
		calls++
		return 0, kerrors.RemoteErr("unreachable")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
