package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/pkg/model"
)

func (s *Store) SaveMemory(ctx context.Context, m *model.Memory, embedding *model.Embedding) error {
	return s.withConn(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "begin save_memory transaction", err)
		}
		defer rollback(tx)

		fromIDs := make([]string, len(m.Source.FromIDs))
		for i, id := range m.Source.FromIDs {
			fromIDs[i] = id.String()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO memories (
				id, title, content, kind, summary, tags, source_kind, source_from_ids,
				source_hook, scope, importance, status, privacy, verification,
				project_id, session_id, created_by, created_at, updated_at, accessed_at
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(id) DO UPDATE SET
				title=excluded.title, content=excluded.content, kind=excluded.kind,
				summary=excluded.summary, tags=excluded.tags, source_kind=excluded.source_kind,
				source_from_ids=excluded.source_from_ids, source_hook=excluded.source_hook,
				scope=excluded.scope, importance=excluded.importance, status=excluded.status,
				privacy=excluded.privacy, verification=excluded.verification,
				project_id=excluded.project_id, session_id=excluded.session_id,
				created_by=excluded.created_by, updated_at=excluded.updated_at,
				accessed_at=excluded.accessed_at
		`,
			m.ID.String(), m.Title, m.Content, m.Kind.String(), m.Summary, strings.Join(m.Tags, ","),
			string(m.Source.Kind), strings.Join(fromIDs, ","), m.Source.Hook, m.Scope.String(),
			m.Importance, m.Status.String(), m.Privacy.String(), m.Verification.String(),
			nullableString(m.ProjectID), nullableUUID(m.SessionID), m.CreatedBy,
			m.CreatedAt.UTC().Format(time.RFC3339Nano), m.UpdatedAt.UTC().Format(time.RFC3339Nano),
			m.AccessedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "upsert memory", err)
		}

		if embedding != nil {
			blob := encodeVector(embedding.Vector)
			_, err = tx.ExecContext(ctx, `
				INSERT INTO embeddings (memory_id, vector, dimensions) VALUES (?,?,?)
				ON CONFLICT(memory_id) DO UPDATE SET vector=excluded.vector, dimensions=excluded.dimensions
			`, m.ID.String(), blob, embedding.Dimensions)
			if err != nil {
				return kerrors.Wrap(kerrors.Storage, "upsert embedding", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return kerrors.Wrap(kerrors.Storage, "commit save_memory transaction", err)
		}
		return nil
	})
}

const memoryColumns = `id, title, content, kind, summary, tags, source_kind, source_from_ids,
	source_hook, scope, importance, status, privacy, verification, project_id, session_id,
	created_by, created_at, updated_at, accessed_at`

// memoryScanTarget holds pointers to every memory column's scan
// destination. scanMemoryRow fills one for a plain memory query;
// callers needing trailing columns (e.g. a joined embedding blob) scan
// into these same pointers plus their own extra destinations.
type memoryScanTarget struct {
	idStr, kindStr, tagsStr            string
	sourceKindStr, fromIDsStr, hookStr string
	scopeStr, statusStr, privacyStr    string
	verificationStr                    string
	projectID, sessionID               sql.NullString
	createdAt, updatedAt, accessedAt   string
	m                                  model.Memory
}

func (t *memoryScanTarget) dest() []any {
	return []any{
		&t.idStr, &t.m.Title, &t.m.Content, &t.kindStr, &t.m.Summary, &t.tagsStr, &t.sourceKindStr, &t.fromIDsStr,
		&t.hookStr, &t.scopeStr, &t.m.Importance, &t.statusStr, &t.privacyStr, &t.verificationStr,
		&t.projectID, &t.sessionID, &t.m.CreatedBy, &t.createdAt, &t.updatedAt, &t.accessedAt,
	}
}

func (t *memoryScanTarget) build() (*model.Memory, error) {
	m := &t.m

	id, err := uuid.Parse(t.idStr)
	if err != nil {
		return nil, err
	}
	m.ID = id

	if m.Kind, err = model.ParseMemoryKind(t.kindStr); err != nil {
		return nil, err
	}
	if t.tagsStr != "" {
		m.Tags = strings.Split(t.tagsStr, ",")
	} else {
		m.Tags = []string{}
	}

	m.Source.Kind = model.SourceKind(t.sourceKindStr)
	m.Source.Hook = t.hookStr
	if t.fromIDsStr != "" {
		for _, part := range strings.Split(t.fromIDsStr, ",") {
			fid, err := uuid.Parse(part)
			if err != nil {
				continue
			}
			m.Source.FromIDs = append(m.Source.FromIDs, fid)
		}
	}

	m.Scope = model.MemoryScope(t.scopeStr)
	if m.Status, err = parseStatus(t.statusStr); err != nil {
		return nil, err
	}
	if m.Privacy, err = model.ParseMemoryPrivacy(t.privacyStr); err != nil {
		return nil, err
	}
	if m.Verification, err = model.ParseVerificationStatus(t.verificationStr); err != nil {
		return nil, err
	}

	if t.projectID.Valid {
		m.ProjectID = &t.projectID.String
	}
	if t.sessionID.Valid {
		sid, err := uuid.Parse(t.sessionID.String)
		if err == nil {
			m.SessionID = &sid
		}
	}

	if m.CreatedAt, err = time.Parse(time.RFC3339Nano, t.createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = time.Parse(time.RFC3339Nano, t.updatedAt); err != nil {
		return nil, err
	}
	if m.AccessedAt, err = time.Parse(time.RFC3339Nano, t.accessedAt); err != nil {
		return nil, err
	}

	return m, nil
}

func scanMemory(row interface{ Scan(dest ...any) error }) (*model.Memory, error) {
	var t memoryScanTarget
	if err := row.Scan(t.dest()...); err != nil {
		return nil, err
	}
	return t.build()
}

func scanMemoryWithTrailing(row interface{ Scan(dest ...any) error }, extra ...any) (*model.Memory, error) {
	var t memoryScanTarget
	dest := append(t.dest(), extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return t.build()
}

func parseStatus(s string) (model.MemoryStatus, error) {
	st := model.MemoryStatus(s)
	if !st.IsValid() {
		return "", kerrors.InvalidInput("unknown memory status: " + s)
	}
	return st, nil
}

func (s *Store) GetMemory(ctx context.Context, id uuid.UUID) (*model.Memory, error) {
	var m *model.Memory
	err := s.withConn(ctx, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, "SELECT "+memoryColumns+" FROM memories WHERE id = ?", id.String())
		memory, err := scanMemory(row)
		if errors.Is(err, sql.ErrNoRows) {
			return kerrors.NotFound("memory not found: " + id.String())
		}
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "get_memory", err)
		}
		m = memory
		return nil
	})
	return m, err
}

func (s *Store) GetMemories(ctx context.Context, ids []uuid.UUID) ([]*model.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[uuid.UUID]*model.Memory, len(ids))
	err := s.withConn(ctx, func(ctx context.Context) error {
		placeholders := make([]string, len(ids))
		args := make([]any, len(ids))
		for i, id := range ids {
			placeholders[i] = "?"
			args[i] = id.String()
		}

		rows, err := s.db.QueryContext(ctx, "SELECT "+memoryColumns+" FROM memories WHERE id IN ("+strings.Join(placeholders, ",")+")", args...)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "get_memories", err)
		}
		defer rows.Close()

		for rows.Next() {
			m, err := scanMemory(rows)
			if err != nil {
				return kerrors.Wrap(kerrors.Storage, "scan memory row", err)
			}
			byID[m.ID] = m
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	out := make([]*model.Memory, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) UpdateMemory(ctx context.Context, id uuid.UUID, patch *model.UpdateMemoryInput) (*model.Memory, error) {
	if err := model.ValidateUpdateInput(patch); err != nil {
		return nil, err
	}

	var updated *model.Memory
	err := s.withConn(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "begin update_memory transaction", err)
		}
		defer rollback(tx)

		row := tx.QueryRowContext(ctx, "SELECT "+memoryColumns+" FROM memories WHERE id = ?", id.String())
		m, err := scanMemory(row)
		if errors.Is(err, sql.ErrNoRows) {
			return kerrors.NotFound("memory not found: " + id.String())
		}
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "update_memory: load existing", err)
		}

		applyPatch(m, patch)
		m.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE memories SET title=?, content=?, summary=?, tags=?, importance=?, status=?,
				privacy=?, verification=?, updated_at=?, accessed_at=? WHERE id=?
		`, m.Title, m.Content, m.Summary, strings.Join(m.Tags, ","), m.Importance, m.Status.String(),
			m.Privacy.String(), m.Verification.String(), m.UpdatedAt.Format(time.RFC3339Nano),
			m.AccessedAt.Format(time.RFC3339Nano), id.String())
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "apply update_memory", err)
		}

		if err := tx.Commit(); err != nil {
			return kerrors.Wrap(kerrors.Storage, "commit update_memory transaction", err)
		}
		updated = m
		return nil
	})
	return updated, err
}

// applyPatch overwrites each field present (non-nil) in patch onto m.
// Content's auto-derived Summary is recomputed only when patch.Summary
// itself is nil but Content changed, matching the builder's own
// derivation rule.
func applyPatch(m *model.Memory, patch *model.UpdateMemoryInput) {
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	contentChanged := false
	if patch.Content != nil {
		m.Content = *patch.Content
		contentChanged = true
	}
	if patch.Tags != nil {
		m.Tags = model.NormalizeTags(*patch.Tags)
	}
	if patch.Importance != nil {
		imp := *patch.Importance
		if imp < 0 {
			imp = 0
		}
		if imp > 1 {
			imp = 1
		}
		m.Importance = imp
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.Privacy != nil {
		m.Privacy = *patch.Privacy
	}
	if patch.Verification != nil {
		m.Verification = *patch.Verification
	}
	if patch.Summary != nil {
		m.Summary = *patch.Summary
	} else if contentChanged {
		m.Summary = deriveSummaryForUpdate(m.Content)
	}
	if patch.AccessedAt != nil {
		if t, err := time.Parse(time.RFC3339Nano, *patch.AccessedAt); err == nil {
			m.AccessedAt = t
		}
	}
}

func deriveSummaryForUpdate(content string) string {
	runes := []rune(content)
	if len(runes) <= model.SummaryTruncateAt {
		return content
	}
	return string(runes[:model.SummaryTruncateAt]) + "..."
}

func (s *Store) DeleteMemory(ctx context.Context, id uuid.UUID) error {
	return s.withConn(ctx, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id.String())
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "delete_memory", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return kerrors.Wrap(kerrors.Storage, "delete_memory: rows affected", err)
		}
		if n == 0 {
			return kerrors.NotFound("memory not found: " + id.String())
		}
		return nil
	})
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
