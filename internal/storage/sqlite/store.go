// Package sqlite implements the embedded relational storage backend: a
// single-file SQLite database with write-ahead logging, foreign keys
// enabled, and one connection guarded by the database/sql pool settings
// below (MaxOpenConns=1) so every write is serialized without an
// explicit application-level mutex.
package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/kaizen-dev/memento/internal/kerrors"
	"github.com/kaizen-dev/memento/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS memories (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	content       TEXT NOT NULL,
	kind          TEXT NOT NULL,
	summary       TEXT NOT NULL,
	tags          TEXT NOT NULL,
	source_kind   TEXT NOT NULL,
	source_from_ids TEXT NOT NULL DEFAULT '',
	source_hook   TEXT NOT NULL DEFAULT '',
	scope         TEXT NOT NULL,
	importance    REAL NOT NULL,
	status        TEXT NOT NULL,
	privacy       TEXT NOT NULL,
	verification  TEXT NOT NULL,
	project_id    TEXT,
	session_id    TEXT,
	created_by    TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	accessed_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS embeddings (
	memory_id  TEXT PRIMARY KEY REFERENCES memories(id) ON DELETE CASCADE,
	vector     BLOB NOT NULL,
	dimensions INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS relations (
	id            TEXT PRIMARY KEY,
	source_id     TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	target_id     TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	relation_type TEXT NOT NULL,
	strength      REAL NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	UNIQUE(source_id, target_id, relation_type)
);

CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT PRIMARY KEY,
	project_id   TEXT,
	started_at   TEXT NOT NULL,
	ended_at     TEXT,
	summary      TEXT,
	memory_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_memories_project ON memories(project_id);
CREATE INDEX IF NOT EXISTS idx_memories_session ON memories(session_id);
CREATE INDEX IF NOT EXISTS idx_memories_status ON memories(status);
CREATE INDEX IF NOT EXISTS idx_memories_created_at ON memories(created_at);
CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_id);
CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_id);
`

// Store implements storage.Backend over a single SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn, enables WAL mode and
// foreign keys, and creates the schema if missing. dsn ":memory:" opens
// an in-process database, used by tests.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.Storage, "open sqlite database", err)
	}

	// SQLite allows exactly one concurrent writer; pinning the pool to a
	// single connection serializes writes and sidesteps SQLITE_BUSY
	// errors instead of adding an explicit mutex around every call.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, kerrors.Wrap(kerrors.Storage, "enable WAL mode", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, kerrors.Wrap(kerrors.Storage, "set busy timeout", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, kerrors.Wrap(kerrors.Storage, "enable foreign keys", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, kerrors.Wrap(kerrors.Storage, "create schema", err)
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway shared-cache in-memory database.
func OpenInMemory() (*Store, error) {
	return Open("file::memory:?cache=shared")
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withConn runs fn against the store's connection. SQLite calls through
// database/sql already run on a goroutine dispatched from Go's runtime
// blocking-syscall handling, so no separate thread-pool offload is
// needed here the way the teacher's engine does for CPU-bound work —
// the single-connection pool setting above is what actually serializes
// access.
func (s *Store) withConn(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return fn(ctx)
}

func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}

var _ storage.Backend = (*Store)(nil)
