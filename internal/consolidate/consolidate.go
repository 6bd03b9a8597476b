// Package consolidate finds clusters of near-duplicate active memories
// and merges each cluster into one new memory, superseding its members.
package consolidate

import (
	"context"
	"log/slog"
	"time"

	"github.com/kaizen-dev/memento/internal/embedding"
	"github.com/kaizen-dev/memento/internal/history"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"

	"github.com/google/uuid"
)

// Config tunes clustering and the run-interval gate.
type Config struct {
	// TopK is how many vector-search neighbors are considered per candidate.
	TopK int
	// ClusterThreshold is the minimum cosine similarity for a neighbor to
	// join a candidate's cluster.
	ClusterThreshold float64
	// MinClusterSize is the smallest cluster worth merging; clusters
	// below this are left alone.
	MinClusterSize int
	// Interval gates how often consolidation is allowed to run again.
	Interval time.Duration
}

// DefaultConfig matches the spec's documented defaults.
func DefaultConfig() Config {
	return Config{TopK: 10, ClusterThreshold: 0.88, MinClusterSize: 2, Interval: 24 * time.Hour}
}

// Merge is what the LLM collaborator returns when asked to merge a
// cluster of near-duplicate memories into one.
type Merge struct {
	Title      string
	Content    string
	Tags       []string
	Importance float64
}

// Merger is the LLM collaborator contract consolidation depends on.
type Merger interface {
	Merge(ctx context.Context, cluster []*model.Memory) (*Merge, error)
}

// Result summarizes one consolidation run.
type Result struct {
	ClustersConsolidated int
	MemoriesSuperseded    int
	MemoriesCreated       int
}

// Due reports whether enough time has passed since lastRun for another
// consolidation pass, per cfg.Interval. A zero lastRun is always due.
func Due(lastRun time.Time, cfg Config, now time.Time) bool {
	return lastRun.IsZero() || now.Sub(lastRun) >= cfg.Interval
}

// Run clusters candidates (expected: every active memory, pre-fetched by
// the caller) via vector-search neighbors and merges clusters of size
// MinClusterSize or more. Embedding, storage, and merge failures for one
// candidate are logged at debug and do not abort the run; they just skip
// that candidate.
func Run(ctx context.Context, backend storage.Backend, embedder embedding.Provider, merger Merger, hist *history.Logger, candidates []*model.Memory, cfg Config, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	result := Result{}
	seen := make(map[uuid.UUID]bool, len(candidates))

	for _, candidate := range candidates {
		if seen[candidate.ID] || !candidate.IsActive() {
			continue
		}
		seen[candidate.ID] = true

		cluster := findCluster(ctx, backend, embedder, candidate, candidates, seen, cfg, logger)
		if len(cluster) < cfg.MinClusterSize {
			continue
		}

		if err := mergeCluster(ctx, backend, embedder, merger, hist, cluster, &result, logger); err != nil {
			logger.Debug("consolidate: failed to merge cluster", "error", err, "candidate", candidate.ID)
			continue
		}
	}

	return result
}

func findCluster(ctx context.Context, backend storage.Backend, embedder embedding.Provider, candidate *model.Memory, candidates []*model.Memory, seen map[uuid.UUID]bool, cfg Config, logger *slog.Logger) []*model.Memory {
	vec, err := embedder.Embed(ctx, candidate.Content)
	if err != nil {
		logger.Debug("consolidate: failed to embed candidate", "error", err, "candidate", candidate.ID)
		return nil
	}

	neighbors, err := backend.VectorSearch(ctx, vec, cfg.TopK)
	if err != nil {
		logger.Debug("consolidate: vector search failed", "error", err, "candidate", candidate.ID)
		return nil
	}

	cluster := []*model.Memory{candidate}
	for _, n := range neighbors {
		if n.Memory.ID == candidate.ID || seen[n.Memory.ID] || !n.Memory.IsActive() {
			continue
		}
		if n.Score < cfg.ClusterThreshold {
			continue
		}
		cluster = append(cluster, n.Memory)
		seen[n.Memory.ID] = true
	}
	return cluster
}

func mergeCluster(ctx context.Context, backend storage.Backend, embedder embedding.Provider, merger Merger, hist *history.Logger, cluster []*model.Memory, result *Result, logger *slog.Logger) error {
	merged, err := merger.Merge(ctx, cluster)
	if err != nil {
		return err
	}

	fromIDs := make([]uuid.UUID, len(cluster))
	for i, m := range cluster {
		fromIDs[i] = m.ID
	}

	newMemory := model.New(merged.Title, merged.Content, cluster[0].Kind, "consolidate")
	newMemory.Tags = model.NormalizeTags(merged.Tags)
	newMemory.Importance = clampImportance(merged.Importance)
	newMemory.Source = model.DerivedSource(fromIDs)

	var newEmbedding *model.Embedding
	if vec, err := embedder.Embed(ctx, newMemory.Content); err == nil {
		emb := model.NewEmbedding(newMemory.ID, vec)
		newEmbedding = &emb
	} else {
		logger.Debug("consolidate: failed to embed merged memory", "error", err)
	}

	if err := backend.SaveMemory(ctx, newMemory, newEmbedding); err != nil {
		return err
	}
	if hist != nil {
		hist.Log(model.NewMemoryEvent(newMemory.ID, model.ActionCreated, "consolidate").WithTitle(newMemory.Title))
	}

	for _, member := range cluster {
		status := model.StatusSuperseded
		if _, err := backend.UpdateMemory(ctx, member.ID, &model.UpdateMemoryInput{Status: &status}); err != nil {
			logger.Debug("consolidate: failed to supersede member", "error", err, "member", member.ID)
			continue
		}

		rel := model.NewRelation(newMemory.ID, member.ID, model.RelationSupersedes, 1.0)
		if err := backend.AddRelation(ctx, rel); err != nil {
			logger.Debug("consolidate: failed to add supersedes relation", "error", err, "member", member.ID)
		}

		if hist != nil {
			hist.Log(model.NewMemoryEvent(member.ID, model.ActionSuperseded, "consolidate").WithTitle(member.Title))
		}
		result.MemoriesSuperseded++
	}

	result.ClustersConsolidated++
	result.MemoriesCreated++
	return nil
}

func clampImportance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
