package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaizen-dev/memento/pkg/model"
)

func TestBufferPathLayout(t *testing.T) {
	got := BufferPath("/home/user/.config/kaizen", "abc-123")
	assert.Equal(t, filepath.Join("/home/user/.config/kaizen", "sessions", "abc-123.jsonl"), got)
}

func TestAppendAndReadBufferRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "s1.jsonl")

	e1 := BufferedEvent{EventType: "edit", Kind: model.KindDecision, Title: "Tool use: Edit", Content: "File modified via Edit: /tmp/a.go", Importance: 0.5, Timestamp: time.Now()}
	e2 := BufferedEvent{EventType: "intent", Kind: model.KindObservation, Title: "User intent", Content: "Fix the bug", Importance: 0.3, Timestamp: time.Now()}

	require.NoError(t, Append(path, e1))
	require.NoError(t, Append(path, e2))

	events, err := ReadBuffer(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "edit", events[0].EventType)
	assert.Equal(t, "intent", events[1].EventType)
}

func TestReadBufferMissingFileIsEmptyNotError(t *testing.T) {
	events, err := ReadBuffer(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReadBufferSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s2.jsonl")
	require.NoError(t, Append(path, BufferedEvent{EventType: "edit"}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := ReadBuffer(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestDeleteBufferMissingFileIsNotError(t *testing.T) {
	assert.NoError(t, DeleteBuffer(filepath.Join(t.TempDir(), "nope.jsonl")))
}

func TestDeleteBufferRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s3.jsonl")
	require.NoError(t, Append(path, BufferedEvent{EventType: "edit"}))
	require.NoError(t, DeleteBuffer(path))

	events, err := ReadBuffer(path)
	require.NoError(t, err)
	assert.Empty(t, events)
}
