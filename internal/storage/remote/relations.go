package remote

import (
	"context"

	"github.com/google/uuid"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

// AddRelation upserts rel; the upstream graph store is expected to key
// on (SourceID, TargetID, Type) the same way the embedded backend does.
func (s *Store) AddRelation(ctx context.Context, rel *model.Relation) error {
	return s.doJSON(ctx, "PUT", "/v1/relations/"+rel.ID.String(), rel, nil)
}

type getRelationsResponse struct {
	Relations []model.Relation `json:"relations"`
}

// GetRelations returns every relation incident to memoryID.
func (s *Store) GetRelations(ctx context.Context, memoryID uuid.UUID) ([]model.Relation, error) {
	var out getRelationsResponse
	if err := s.doJSON(ctx, "GET", "/v1/memories/"+memoryID.String()+"/relations", nil, &out); err != nil {
		return nil, err
	}
	return out.Relations, nil
}

type countRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type countResponse struct {
	Counts []storage.RelationCount `json:"counts"`
}

// CountRelations batches a relation-count lookup for ids.
func (s *Store) CountRelations(ctx context.Context, ids []uuid.UUID) ([]storage.RelationCount, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out countResponse
	if err := s.doJSON(ctx, "POST", "/v1/relations/count", countRequest{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return out.Counts, nil
}

// CountContradictions batches a contradicts-only relation-count lookup.
func (s *Store) CountContradictions(ctx context.Context, ids []uuid.UUID) ([]storage.RelationCount, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out countResponse
	if err := s.doJSON(ctx, "POST", "/v1/relations/count-contradictions", countRequest{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return out.Counts, nil
}
