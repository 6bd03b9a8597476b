package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/pkg/model"
)

func (s *Store) SaveSession(ctx context.Context, session *model.Session) error {
	return s.withConn(ctx, func(ctx context.Context) error {
		var endedAt, summary any
		if session.EndedAt != nil {
			endedAt = session.EndedAt.UTC().Format(time.RFC3339Nano)
		}
		if session.Summary != nil {
			summary = *session.Summary
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO sessions (id, project_id, started_at, ended_at, summary, memory_count)
			VALUES (?,?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				project_id = excluded.project_id, ended_at = excluded.ended_at,
				summary = excluded.summary, memory_count = excluded.memory_count
		`, session.ID.String(), nullableString(session.ProjectID), session.StartedAt.UTC().Format(time.RFC3339Nano),
			endedAt, summary, session.MemoryCount)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "save_session", err)
		}
		return nil
	})
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var out *model.Session
	err := s.withConn(ctx, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, `
			SELECT id, project_id, started_at, ended_at, summary, memory_count FROM sessions WHERE id = ?
		`, id.String())

		var idStr, startedAt string
		var projectID, endedAt, summary sql.NullString
		var memoryCount int

		if err := row.Scan(&idStr, &projectID, &startedAt, &endedAt, &summary, &memoryCount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return kerrors.NotFound("session not found: " + id.String())
			}
			return kerrors.Wrap(kerrors.Storage, "get_session", err)
		}

		sessionID, err := uuid.Parse(idStr)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "get_session: parse id", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "get_session: parse started_at", err)
		}

		session := &model.Session{ID: sessionID, StartedAt: started, MemoryCount: memoryCount}
		if projectID.Valid {
			session.ProjectID = &projectID.String
		}
		if endedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, endedAt.String)
			if err == nil {
				session.EndedAt = &t
			}
		}
		if summary.Valid {
			session.Summary = &summary.String
		}

		out = session
		return nil
	})
	return out, err
}
