package remote

import (
	"context"

	"github.com/google/uuid"
	"github.com/kaizen-dev/memento/pkg/model"
)

type saveMemoryRequest struct {
	Memory    *model.Memory    `json:"memory"`
	Embedding *model.Embedding `json:"embedding,omitempty"`
}

// SaveMemory PUTs memory (and its embedding, if present) as one request
// so the upstream applies them atomically.
func (s *Store) SaveMemory(ctx context.Context, memory *model.Memory, embedding *model.Embedding) error {
	req := saveMemoryRequest{Memory: memory, Embedding: embedding}
	return s.doJSON(ctx, "PUT", "/v1/memories/"+memory.ID.String(), req, nil)
}

// GetMemory fetches a single memory by id.
func (s *Store) GetMemory(ctx context.Context, id uuid.UUID) (*model.Memory, error) {
	var out model.Memory
	if err := s.doJSON(ctx, "GET", "/v1/memories/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type getMemoriesRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type getMemoriesResponse struct {
	Memories []*model.Memory `json:"memories"`
}

// GetMemories batches the id lookup into one round trip. The server is
// responsible for preserving input order and dropping missing ids.
func (s *Store) GetMemories(ctx context.Context, ids []uuid.UUID) ([]*model.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out getMemoriesResponse
	if err := s.doJSON(ctx, "POST", "/v1/memories/batch-get", getMemoriesRequest{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return out.Memories, nil
}

// UpdateMemory PATCHes the recognized fields of patch and returns the
// updated row.
func (s *Store) UpdateMemory(ctx context.Context, id uuid.UUID, patch *model.UpdateMemoryInput) (*model.Memory, error) {
	var out model.Memory
	if err := s.doJSON(ctx, "PATCH", "/v1/memories/"+id.String(), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMemory hard-deletes memory id; the upstream is responsible for
// cascading to its embedding and incident relations.
func (s *Store) DeleteMemory(ctx context.Context, id uuid.UUID) error {
	return s.doJSON(ctx, "DELETE", "/v1/memories/"+id.String(), nil, nil)
}
