package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) { return []float32{1, 0}, nil }
func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}
func (stubEmbedder) Dimensions() int  { return 2 }
func (stubEmbedder) ModelID() string { return "stub" }

type fakeBackend struct {
	storage.Backend
	saved []*model.Memory
}

func (f *fakeBackend) SaveMemory(_ context.Context, m *model.Memory, _ *model.Embedding) error {
	f.saved = append(f.saved, m)
	return nil
}

type fixedSummarizer struct {
	summaries []Summary
	err       error
}

func (s fixedSummarizer) Summarize(_ context.Context, _ string, _ []BufferedEvent) ([]Summary, error) {
	return s.summaries, s.err
}

func TestCompressUsesSummarizerResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "s1.jsonl")
	require.NoError(t, Append(path, BufferedEvent{EventType: "edit", Kind: model.KindDecision, Title: "x", Content: "y", Importance: 0.5}))

	backend := &fakeBackend{}
	summarizer := fixedSummarizer{summaries: []Summary{{Title: "Session summary", Content: "did stuff", Kind: model.KindDecision, Importance: 0.6}}}

	result := Compress(context.Background(), backend, stubEmbedder{}, summarizer, nil, path, "sess-1", nil, nil)

	assert.Equal(t, 1, result.EventCount)
	assert.Equal(t, 1, result.MemoriesCreated)
	require.Len(t, backend.saved, 1)
	assert.Equal(t, "Session summary", backend.saved[0].Title)
	assert.Equal(t, model.SourceAutoCapture, backend.saved[0].Source.Kind)

	events, err := ReadBuffer(path)
	require.NoError(t, err)
	assert.Empty(t, events, "buffer should be deleted after compression")
}

func TestCompressFallsBackToHeuristicOnSummarizerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "s2.jsonl")
	require.NoError(t, Append(path, BufferedEvent{EventType: "edit", Kind: model.KindDecision, Content: "File modified via Edit: /tmp/a.go", FilePath: "/tmp/a.go", Importance: 0.5}))
	require.NoError(t, Append(path, BufferedEvent{EventType: "edit", Kind: model.KindDecision, Content: "File modified via Edit: /tmp/a.go again", FilePath: "/tmp/a.go", Importance: 0.4}))
	require.NoError(t, Append(path, BufferedEvent{EventType: "intent", Kind: model.KindObservation, Content: "fix the thing", Importance: 0.3}))

	backend := &fakeBackend{}
	summarizer := fixedSummarizer{err: errors.New("llm down")}

	result := Compress(context.Background(), backend, stubEmbedder{}, summarizer, nil, path, "sess-2", nil, nil)

	assert.Equal(t, 3, result.EventCount)
	assert.Equal(t, 2, result.MemoriesCreated) // one group per file path bucket
	require.Len(t, backend.saved, 2)
	assert.Equal(t, "Session work: a.go", backend.saved[0].Title)
	assert.Equal(t, "Session notes", backend.saved[1].Title)
}

func TestCompressEmptyBufferIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "s3.jsonl")
	backend := &fakeBackend{}

	result := Compress(context.Background(), backend, stubEmbedder{}, nil, nil, path, "sess-3", nil, nil)

	assert.Equal(t, 0, result.EventCount)
	assert.Empty(t, backend.saved)
}

func TestCompressAttachesSessionIDWhenParseable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "s4.jsonl")
	require.NoError(t, Append(path, BufferedEvent{EventType: "edit", Kind: model.KindDecision, Content: "c", Importance: 0.5}))

	id := uuid.Must(uuid.NewV7())
	backend := &fakeBackend{}
	summarizer := fixedSummarizer{summaries: []Summary{{Title: "t", Content: "c", Kind: model.KindDecision, Importance: 0.5}}}

	Compress(context.Background(), backend, stubEmbedder{}, summarizer, nil, path, id.String(), nil, nil)

	require.Len(t, backend.saved, 1)
	require.NotNil(t, backend.saved[0].SessionID)
	assert.Equal(t, id, *backend.saved[0].SessionID)
}

func TestCompressLeavesSessionIDNilForNonUUIDSessionID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "s5.jsonl")
	require.NoError(t, Append(path, BufferedEvent{EventType: "edit", Kind: model.KindDecision, Content: "c", Importance: 0.5}))

	backend := &fakeBackend{}
	summarizer := fixedSummarizer{summaries: []Summary{{Title: "t", Content: "c", Kind: model.KindDecision, Importance: 0.5}}}

	Compress(context.Background(), backend, stubEmbedder{}, summarizer, nil, path, "not-a-uuid", nil, nil)

	require.Len(t, backend.saved, 1)
	assert.Nil(t, backend.saved[0].SessionID)
}
