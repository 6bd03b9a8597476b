package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaizen-dev/memento/internal/capture"
	"github.com/kaizen-dev/memento/internal/embedding"
	"github.com/kaizen-dev/memento/internal/history"
	"github.com/kaizen-dev/memento/internal/session"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBackend struct {
	storage.Backend
	saved   []*model.Memory
	patched []*model.UpdateMemoryInput
}

func (f *fakeBackend) SaveMemory(_ context.Context, m *model.Memory, _ *model.Embedding) error {
	f.saved = append(f.saved, m)
	return nil
}

func (f *fakeBackend) UpdateMemory(_ context.Context, _ uuid.UUID, patch *model.UpdateMemoryInput) (*model.Memory, error) {
	f.patched = append(f.patched, patch)
	return f.saved[len(f.saved)-1], nil
}

// Timeline returns no entries so capture.AutoRelate (always invoked by
// saveMemory) finds no candidates and returns immediately.
func (f *fakeBackend) Timeline(_ context.Context, _ storage.TimelineQuery) ([]model.TimelineEntry, error) {
	return nil, nil
}

type stubGenerator struct {
	response string
	err      error
}

func (g stubGenerator) Complete(_ context.Context, _ string) (string, error) {
	return g.response, g.err
}
func (g stubGenerator) GetModel() string { return "stub" }

func TestIsTerminalEvent(t *testing.T) {
	assert.True(t, isTerminalEvent("Stop"))
	assert.True(t, isTerminalEvent("SubagentStop"))
	assert.False(t, isTerminalEvent("PostToolUse"))
	assert.False(t, isTerminalEvent(""))
}

func TestBufferIntentAppendsOneLine(t *testing.T) {
	path := session.BufferPath(t.TempDir(), "sess-1")
	intent := capture.Intent{
		Kind:       capture.IntentBuffer,
		MemoryKind: model.KindObservation,
		Title:      "Edited file.go",
		Content:    "added a helper",
		Importance: 0.4,
		FilePath:   "file.go",
		EventType:  "edit",
	}

	bufferIntent(path, intent, discardLogger())

	events, err := session.ReadBuffer(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Edited file.go", events[0].Title)
	assert.Equal(t, "edit", events[0].EventType)
	assert.Equal(t, "file.go", events[0].FilePath)
}

func TestBufferIntentSurvivesUnwritablePath(t *testing.T) {
	intent := capture.Intent{Title: "t", Content: "c"}
	assert.NotPanics(t, func() {
		bufferIntent("/nonexistent-root-dir/sessions/x.jsonl", intent, discardLogger())
	})
}

func TestSaveMemoryPersistsWithoutSessionIDWhenNotUUID(t *testing.T) {
	backend := &fakeBackend{}
	hist := history.New(t.TempDir()+"/history.jsonl", false, discardLogger())
	embedder := embedding.NewHashProvider()
	gen := stubGenerator{response: `{"tags":["go","fix"],"importance":0.6}`}

	event := capture.HookEvent{SessionID: "not-a-uuid", Cwd: "/tmp", HookEventName: "PostToolUse"}
	intent := capture.Intent{
		Kind:       capture.IntentSave,
		MemoryKind: model.KindFix,
		Title:      "Tool failed",
		Content:    "edit on missing.go failed: no such file",
		Importance: 0.5,
	}

	saveMemory(context.Background(), backend, embedder, gen, hist, event, intent, discardLogger())

	require.Len(t, backend.saved, 1)
	assert.Nil(t, backend.saved[0].SessionID, "non-uuid session id must not be attached")
	assert.Equal(t, "Tool failed", backend.saved[0].Title)
}

func TestSaveMemoryAttachesParsableSessionID(t *testing.T) {
	backend := &fakeBackend{}
	hist := history.New(t.TempDir()+"/history.jsonl", false, discardLogger())
	embedder := embedding.NewHashProvider()
	gen := stubGenerator{err: assert.AnError}

	event := capture.HookEvent{SessionID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8", Cwd: "/tmp", HookEventName: "PostToolUse"}
	intent := capture.Intent{
		Kind:       capture.IntentSave,
		MemoryKind: model.KindError,
		Title:      "Build broke",
		Content:    "compile error in main.go",
		Importance: 0.8,
	}

	saveMemory(context.Background(), backend, embedder, gen, hist, event, intent, discardLogger())

	require.Len(t, backend.saved, 1)
	require.NotNil(t, backend.saved[0].SessionID)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", backend.saved[0].SessionID.String())
	assert.Empty(t, backend.patched, "generator failure must not apply a tag patch")
}

func TestSaveMemoryAppliesAutoTagPatchOnSuccess(t *testing.T) {
	backend := &fakeBackend{}
	hist := history.New(t.TempDir()+"/history.jsonl", false, discardLogger())
	embedder := embedding.NewHashProvider()
	gen := stubGenerator{response: `{"tags":["go"],"importance":0.9}`}

	event := capture.HookEvent{SessionID: "sess-2", Cwd: "/tmp", HookEventName: "PostToolUse"}
	intent := capture.Intent{
		Kind:       capture.IntentSave,
		MemoryKind: model.KindFix,
		Title:      "Fixed flaky test",
		Content:    "added a retry",
		Importance: 0.5,
	}

	saveMemory(context.Background(), backend, embedder, gen, hist, event, intent, discardLogger())

	require.Len(t, backend.patched, 1)
	require.NotNil(t, backend.patched[0].Tags)
	assert.Equal(t, []string{"go"}, *backend.patched[0].Tags)
}
