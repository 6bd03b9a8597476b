package remote

import (
	"context"

	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

type timelineResponse struct {
	Entries []model.TimelineEntry `json:"entries"`
}

// Timeline forwards query as-is; the upstream applies the same filter
// and ordering semantics as the embedded backend.
func (s *Store) Timeline(ctx context.Context, query storage.TimelineQuery) ([]model.TimelineEntry, error) {
	var out timelineResponse
	if err := s.doJSON(ctx, "POST", "/v1/timeline", query, &out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}
