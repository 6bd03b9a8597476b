// Package graph implements bounded traversal over the memory relation
// graph.
package graph

import (
	"context"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

// DefaultMaxDepth and MaxAllowedDepth bound follow_chain: callers may
// request up to MaxAllowedDepth, and the default when unset is
// DefaultMaxDepth.
const (
	DefaultMaxDepth = 3
	MaxAllowedDepth = 5
)

// ChainLink is one edge discovered by FollowChain: a previously-unseen
// neighbor reached from from_id via relation_type.
type ChainLink struct {
	FromID       uuid.UUID
	MemoryID     uuid.UUID
	RelationType model.RelationType
	Strength     float64
	Depth        int
}

type frontierItem struct {
	id    uuid.UUID
	depth int
}

// FollowChain performs a bounded breadth-first traversal of the relation
// graph starting at startID. Only edges whose type is in allowedTypes
// are followed; traversal is symmetric (an edge is followed regardless
// of which endpoint is the frontier node). maxDepth is clamped to
// [1, MaxAllowedDepth], defaulting to DefaultMaxDepth when <= 0.
func FollowChain(ctx context.Context, backend storage.Backend, startID uuid.UUID, allowedTypes []model.RelationType, maxDepth int) ([]ChainLink, error) {
	maxDepth = normalizeDepth(maxDepth)
	allowed := make(map[model.RelationType]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}

	visited := map[uuid.UUID]struct{}{startID: {}}
	queue := []frontierItem{{id: startID, depth: 0}}
	var links []ChainLink

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return links, ctx.Err()
		default:
		}

		current := queue[0]
		queue = queue[1:]
		if current.depth >= maxDepth {
			continue
		}

		relations, err := backend.GetRelations(ctx, current.id)
		if err != nil {
			return links, err
		}

		for _, rel := range relations {
			if _, ok := allowed[rel.Type]; !ok {
				continue
			}
			neighbor := rel.TargetID
			if neighbor == current.id {
				neighbor = rel.SourceID
			}
			if _, seen := visited[neighbor]; seen {
				continue
			}
			visited[neighbor] = struct{}{}

			nextDepth := current.depth + 1
			links = append(links, ChainLink{
				FromID:       current.id,
				MemoryID:     neighbor,
				RelationType: rel.Type,
				Strength:     rel.Strength,
				Depth:        nextDepth,
			})
			queue = append(queue, frontierItem{id: neighbor, depth: nextDepth})
		}
	}

	return links, nil
}

func normalizeDepth(maxDepth int) int {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxDepth > MaxAllowedDepth {
		maxDepth = MaxAllowedDepth
	}
	return maxDepth
}
