package sqlite

import (
	"context"
	"strings"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

func (s *Store) Timeline(ctx context.Context, query storage.TimelineQuery) ([]model.TimelineEntry, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 10000 {
		limit = 10000
	}

	var entries []model.TimelineEntry
	err := s.withConn(ctx, func(ctx context.Context) error {
		sqlQuery := "SELECT " + memoryColumns + " FROM memories WHERE 1=1"
		var args []any

		if query.ProjectID != nil {
			sqlQuery += " AND project_id = ?"
			args = append(args, *query.ProjectID)
		}
		if query.SessionID != nil {
			sqlQuery += " AND session_id = ?"
			args = append(args, query.SessionID.String())
		}
		if len(query.Kinds) > 0 {
			placeholders := make([]string, len(query.Kinds))
			for i, k := range query.Kinds {
				placeholders[i] = "?"
				args = append(args, k.String())
			}
			sqlQuery += " AND kind IN (" + strings.Join(placeholders, ",") + ")"
		}
		if query.Status != nil {
			sqlQuery += " AND status = ?"
			args = append(args, query.Status.String())
		} else {
			sqlQuery += " AND status = ?"
			args = append(args, model.StatusActive.String())
		}

		sqlQuery += " ORDER BY created_at DESC LIMIT ?"
		args = append(args, limit)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "timeline", err)
		}
		defer rows.Close()

		for rows.Next() {
			m, err := scanMemory(rows)
			if err != nil {
				return kerrors.Wrap(kerrors.Storage, "timeline: scan row", err)
			}
			entries = append(entries, model.TimelineEntryFromMemory(m))
		}
		return rows.Err()
	})
	return entries, err
}
