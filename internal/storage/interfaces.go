// Package storage defines the pluggable backend contract every storage
// implementation satisfies, plus the two concrete backends dispatched
// through Backend: an embedded relational store (internal/storage/sqlite)
// and a remote graph store over HTTP (internal/storage/remote).
package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/kaizen-dev/memento/pkg/model"
)

// ScoredMemory pairs a Memory with its cosine-similarity score from a
// vector_search call.
type ScoredMemory struct {
	Memory *model.Memory
	Score  float64
}

// TimelineQuery is the recognized filter set for the timeline operation.
type TimelineQuery struct {
	Limit     int
	ProjectID *string
	SessionID *uuid.UUID
	Kinds     []model.MemoryKind
	Status    *model.MemoryStatus
}

// RelationCount is one (id, count) pair as returned by count_relations and
// count_contradictions, covering every requested id including zeros.
type RelationCount struct {
	ID    uuid.UUID
	Count int
}

// Backend is the operation set every storage implementation satisfies.
// Implementations must be safe for concurrent use by multiple callers.
type Backend interface {
	// SaveMemory upserts memory by id. If embedding is non-nil it is
	// stored atomically alongside the memory row — no partial state is
	// ever visible to a concurrent reader.
	SaveMemory(ctx context.Context, memory *model.Memory, embedding *model.Embedding) error

	// GetMemory returns the memory for id, or a NotFound error if absent.
	GetMemory(ctx context.Context, id uuid.UUID) (*model.Memory, error)

	// GetMemories returns memories for ids, preserving input order where
	// possible; ids with no matching row are silently dropped.
	GetMemories(ctx context.Context, ids []uuid.UUID) ([]*model.Memory, error)

	// UpdateMemory applies patch to the memory for id and returns the
	// updated row. UpdatedAt advances to now regardless of which fields
	// changed.
	UpdateMemory(ctx context.Context, id uuid.UUID, patch *model.UpdateMemoryInput) (*model.Memory, error)

	// DeleteMemory hard-deletes the memory for id, cascading to its
	// embedding and every incident relation.
	DeleteMemory(ctx context.Context, id uuid.UUID) error

	// VectorSearch returns up to limit (Memory, score) pairs in
	// descending score order. queryEmbedding's length must match the
	// dimensions of stored embeddings.
	VectorSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]ScoredMemory, error)

	// Timeline returns TimelineEntry rows matching query, newest first.
	Timeline(ctx context.Context, query TimelineQuery) ([]model.TimelineEntry, error)

	// AddRelation inserts rel, or overwrites Strength if a row already
	// exists for (SourceID, TargetID, Type).
	AddRelation(ctx context.Context, rel *model.Relation) error

	// GetRelations returns every relation where memoryID is either
	// endpoint.
	GetRelations(ctx context.Context, memoryID uuid.UUID) ([]model.Relation, error)

	// CountRelations returns a RelationCount per id in ids, including
	// zeros, without an N+1 round trip.
	CountRelations(ctx context.Context, ids []uuid.UUID) ([]RelationCount, error)

	// CountContradictions returns a RelationCount per id in ids counting
	// only `contradicts` relations.
	CountContradictions(ctx context.Context, ids []uuid.UUID) ([]RelationCount, error)

	// SaveSession upserts session.
	SaveSession(ctx context.Context, session *model.Session) error

	// GetSession returns the session for id, or NotFound if absent.
	GetSession(ctx context.Context, id uuid.UUID) (*model.Session, error)

	// Close releases any resources (connections, clients) held by the backend.
	Close() error
}
