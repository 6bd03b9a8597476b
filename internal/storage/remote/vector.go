package remote

import (
	"context"

	"github.com/kaizen-dev/memento/internal/storage"
)

type vectorSearchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	Limit          int       `json:"limit"`
}

type vectorSearchResponse struct {
	Results []storage.ScoredMemory `json:"results"`
}

// VectorSearch pushes the similarity query itself to the remote graph
// store rather than pulling every embedding across the wire to score
// locally — the backend is expected to hold its own vector index.
func (s *Store) VectorSearch(ctx context.Context, queryEmbedding []float32, limit int) ([]storage.ScoredMemory, error) {
	req := vectorSearchRequest{QueryEmbedding: queryEmbedding, Limit: limit}
	var out vectorSearchResponse
	if err := s.doJSON(ctx, "POST", "/v1/memories/vector-search", req, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
