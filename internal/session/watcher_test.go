package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerSweepCompressesStaleBuffers(t *testing.T) {
	base := t.TempDir()
	sessionsDir := filepath.Join(base, "sessions")
	require.NoError(t, os.MkdirAll(sessionsDir, 0o700))

	stalePath := filepath.Join(sessionsDir, "stale-session.jsonl")
	require.NoError(t, os.WriteFile(stalePath, []byte(`{"event_type":"edit"}`+"\n"), 0o600))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stalePath, old, old))

	var mu sync.Mutex
	var compressed []string
	r := NewReconciler(base, time.Minute, func(_ string, sessionID string) {
		mu.Lock()
		defer mu.Unlock()
		compressed = append(compressed, sessionID)
	}, nil)

	r.sweep()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"stale-session"}, compressed)
}

func TestReconcilerSweepSkipsFreshBuffers(t *testing.T) {
	base := t.TempDir()
	sessionsDir := filepath.Join(base, "sessions")
	require.NoError(t, os.MkdirAll(sessionsDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(sessionsDir, "fresh.jsonl"), []byte("{}\n"), 0o600))

	called := false
	r := NewReconciler(base, time.Hour, func(_ string, _ string) { called = true }, nil)
	r.sweep()

	assert.False(t, called)
}

func TestReconcilerCheckStaleIgnoresNonJSONLFiles(t *testing.T) {
	base := t.TempDir()
	sessionsDir := filepath.Join(base, "sessions")
	require.NoError(t, os.MkdirAll(sessionsDir, 0o700))
	path := filepath.Join(sessionsDir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	called := false
	r := NewReconciler(base, time.Minute, func(_ string, _ string) { called = true }, nil)
	r.checkStale(path)

	assert.False(t, called)
}
