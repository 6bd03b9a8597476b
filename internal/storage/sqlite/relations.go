package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/storage"
	"github.com/kaizen-dev/memento/pkg/model"
)

func (s *Store) AddRelation(ctx context.Context, rel *model.Relation) error {
	return s.withConn(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO relations (id, source_id, target_id, relation_type, strength, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?)
			ON CONFLICT(source_id, target_id, relation_type) DO UPDATE SET
				strength = excluded.strength, updated_at = excluded.updated_at
		`, rel.ID.String(), rel.SourceID.String(), rel.TargetID.String(), rel.Type.String(), rel.Strength,
			rel.CreatedAt.UTC().Format(time.RFC3339Nano), rel.UpdatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "add_relation", err)
		}
		return nil
	})
}

func scanRelation(rows interface{ Scan(dest ...any) error }) (model.Relation, error) {
	var r model.Relation
	var idStr, sourceStr, targetStr, typeStr, createdAt, updatedAt string

	if err := rows.Scan(&idStr, &sourceStr, &targetStr, &typeStr, &r.Strength, &createdAt, &updatedAt); err != nil {
		return r, err
	}

	var err error
	if r.ID, err = uuid.Parse(idStr); err != nil {
		return r, err
	}
	if r.SourceID, err = uuid.Parse(sourceStr); err != nil {
		return r, err
	}
	if r.TargetID, err = uuid.Parse(targetStr); err != nil {
		return r, err
	}
	if r.Type, err = model.ParseRelationType(typeStr); err != nil {
		return r, err
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return r, err
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return r, err
	}
	return r, nil
}

func (s *Store) GetRelations(ctx context.Context, memoryID uuid.UUID) ([]model.Relation, error) {
	var relations []model.Relation
	err := s.withConn(ctx, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, source_id, target_id, relation_type, strength, created_at, updated_at
			FROM relations WHERE source_id = ? OR target_id = ?
		`, memoryID.String(), memoryID.String())
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "get_relations", err)
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanRelation(rows)
			if err != nil {
				return kerrors.Wrap(kerrors.Storage, "get_relations: scan row", err)
			}
			relations = append(relations, r)
		}
		return rows.Err()
	})
	return relations, err
}

func (s *Store) countBy(ctx context.Context, ids []uuid.UUID, extraWhere string) ([]storage.RelationCount, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	counts := make(map[uuid.UUID]int, len(ids))
	for _, id := range ids {
		counts[id] = 0
	}

	err := s.withConn(ctx, func(ctx context.Context) error {
		placeholders := make([]string, len(ids))
		args := make([]any, 0, len(ids)*2)
		for i, id := range ids {
			placeholders[i] = "?"
			args = append(args, id.String())
		}
		idList := strings.Join(placeholders, ",")
		// Each id may appear as either endpoint; count regardless of direction.
		args = append(args, args...)

		query := "SELECT source_id, target_id FROM relations WHERE (source_id IN (" + idList + ") OR target_id IN (" + idList + "))" + extraWhere

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "count relations", err)
		}
		defer rows.Close()

		for rows.Next() {
			var sourceStr, targetStr string
			if err := rows.Scan(&sourceStr, &targetStr); err != nil {
				return kerrors.Wrap(kerrors.Storage, "count relations: scan row", err)
			}
			if sid, err := uuid.Parse(sourceStr); err == nil {
				if _, ok := counts[sid]; ok {
					counts[sid]++
				}
			}
			if tid, err := uuid.Parse(targetStr); err == nil {
				if _, ok := counts[tid]; ok {
					counts[tid]++
				}
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	out := make([]storage.RelationCount, len(ids))
	for i, id := range ids {
		out[i] = storage.RelationCount{ID: id, Count: counts[id]}
	}
	return out, nil
}

func (s *Store) CountRelations(ctx context.Context, ids []uuid.UUID) ([]storage.RelationCount, error) {
	return s.countBy(ctx, ids, "")
}

func (s *Store) CountContradictions(ctx context.Context, ids []uuid.UUID) ([]storage.RelationCount, error) {
	return s.countBy(ctx, ids, " AND relation_type = 'contradicts'")
}
