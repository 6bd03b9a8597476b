package consolidate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaizen-dev/memento/internal/history"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (stubEmbedder) Dimensions() int  { return 3 }
func (stubEmbedder) ModelID() string { return "stub" }

type stubMerger struct{}

func (stubMerger) Merge(_ context.Context, cluster []*model.Memory) (*Merge, error) {
	return &Merge{Title: "Merged", Content: "merged content", Tags: []string{"merged"}, Importance: 0.7}, nil
}

type fakeBackend struct {
	storage.Backend
	neighbors map[uuid.UUID][]storage.ScoredMemory
	saved     []*model.Memory
	updated   map[uuid.UUID]model.MemoryStatus
	relations []*model.Relation
}

func (f *fakeBackend) VectorSearch(_ context.Context, _ []float32, _ int) ([]storage.ScoredMemory, error) {
	// deterministic: return a fixed set regardless of query vector
	var out []storage.ScoredMemory
	for _, v := range f.neighbors {
		out = append(out, v...)
	}
	return out, nil
}

func (f *fakeBackend) SaveMemory(_ context.Context, m *model.Memory, _ *model.Embedding) error {
	f.saved = append(f.saved, m)
	return nil
}

func (f *fakeBackend) UpdateMemory(_ context.Context, id uuid.UUID, patch *model.UpdateMemoryInput) (*model.Memory, error) {
	if f.updated == nil {
		f.updated = map[uuid.UUID]model.MemoryStatus{}
	}
	if patch.Status != nil {
		f.updated[id] = *patch.Status
	}
	return nil, nil
}

func (f *fakeBackend) AddRelation(_ context.Context, rel *model.Relation) error {
	f.relations = append(f.relations, rel)
	return nil
}

func TestRunMergesClusterAboveThreshold(t *testing.T) {
	a := model.New("Dup A", "same idea", model.KindFact, "user")
	b := model.New("Dup B", "same idea again", model.KindFact, "user")

	backend := &fakeBackend{
		neighbors: map[uuid.UUID][]storage.ScoredMemory{
			a.ID: {{Memory: b, Score: 0.95}},
		},
	}

	hist := history.New(t.TempDir()+"/history.jsonl", true, nil)
	result := Run(context.Background(), backend, stubEmbedder{}, stubMerger{}, hist, []*model.Memory{a, b}, DefaultConfig(), nil)

	assert.Equal(t, 1, result.ClustersConsolidated)
	assert.Equal(t, 1, result.MemoriesCreated)
	assert.Equal(t, 2, result.MemoriesSuperseded)
	require.Len(t, backend.saved, 1)
	assert.Equal(t, "Merged", backend.saved[0].Title)
	assert.Equal(t, model.StatusSuperseded, backend.updated[a.ID])
	assert.Equal(t, model.StatusSuperseded, backend.updated[b.ID])
	require.Len(t, backend.relations, 2)
	assert.Equal(t, model.RelationSupersedes, backend.relations[0].Type)
}

func TestRunSkipsBelowThreshold(t *testing.T) {
	a := model.New("A", "content a", model.KindFact, "user")
	b := model.New("B", "content b", model.KindFact, "user")

	backend := &fakeBackend{
		neighbors: map[uuid.UUID][]storage.ScoredMemory{
			a.ID: {{Memory: b, Score: 0.5}},
		},
	}

	result := Run(context.Background(), backend, stubEmbedder{}, stubMerger{}, nil, []*model.Memory{a, b}, DefaultConfig(), nil)
	assert.Equal(t, 0, result.ClustersConsolidated)
	assert.Empty(t, backend.saved)
}

func TestRunSkipsInactiveCandidates(t *testing.T) {
	a := model.New("A", "content a", model.KindFact, "user")
	a.Status = model.StatusArchived

	backend := &fakeBackend{neighbors: map[uuid.UUID][]storage.ScoredMemory{}}
	result := Run(context.Background(), backend, stubEmbedder{}, stubMerger{}, nil, []*model.Memory{a}, DefaultConfig(), nil)
	assert.Equal(t, 0, result.ClustersConsolidated)
}

func TestDueWithZeroLastRunIsAlwaysDue(t *testing.T) {
	assert.True(t, Due(time.Time{}, DefaultConfig(), time.Now()))
}

func TestDueRespectsInterval(t *testing.T) {
	cfg := Config{Interval: time.Hour}
	now := time.Now()
	assert.False(t, Due(now.Add(-30*time.Minute), cfg, now))
	assert.True(t, Due(now.Add(-2*time.Hour), cfg, now))
}
