package remote

import (
	"context"

	"github.com/google/uuid"
	"github.com/kaizen-dev/memento/pkg/model"
)

// SaveSession upserts session by id.
func (s *Store) SaveSession(ctx context.Context, session *model.Session) error {
	return s.doJSON(ctx, "PUT", "/v1/sessions/"+session.ID.String(), session, nil)
}

// GetSession fetches a single session by id.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var out model.Session
	if err := s.doJSON(ctx, "GET", "/v1/sessions/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
