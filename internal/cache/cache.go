// Package cache memoizes a full compile behind a SQLite-backed store,
// grounded on the teacher's own embedding of a CGo-free SQLite driver
// (_examples/funvibe-funxy's vm/bytecode bundle persistence) adapted to
// this project's domain: rather than caching parsed modules, it caches
// the rendered assembly text for a given (source, calling-convention)
// pair, so re-compiling an unchanged file — the common case in a
// build/test loop — skips straight to the answer.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Cache wraps a SQLite database file holding one row per distinct
// (source hash, convention key) pair compiled so far.
type Cache struct {
	db *sql.DB
}

// Open creates or attaches to the SQLite database at path, creating the
// schema on first use.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS compiles (
	source_hash   TEXT NOT NULL,
	convention    TEXT NOT NULL,
	session_id    TEXT NOT NULL,
	assembly      TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	PRIMARY KEY (source_hash, convention)
);
`

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Key identifies one cacheable compile: the exact source text and the
// calling-convention descriptor it was compiled against (a change to
// either invalidates the cached entry).
type Key struct {
	Source     string
	Convention string
}

func (k Key) hash() string {
	sum := sha256.Sum256([]byte(k.Source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached assembly for key, and whether it was found.
func (c *Cache) Lookup(ctx context.Context, key Key) (string, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT assembly FROM compiles WHERE source_hash = ? AND convention = ?`,
		key.hash(), key.Convention)
	var assembly string
	switch err := row.Scan(&assembly); err {
	case nil:
		return assembly, true, nil
	case sql.ErrNoRows:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("cache: lookup: %w", err)
	}
}

// Store records a freshly compiled assembly under key, tagged with a
// fresh session ID for traceability; the ID is stored in the row and
// returned to the caller.
func (c *Cache) Store(ctx context.Context, key Key, assembly string) (sessionID string, err error) {
	id := uuid.New().String()
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO compiles (source_hash, convention, session_id, assembly, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_hash, convention) DO UPDATE SET
		   session_id = excluded.session_id,
		   assembly = excluded.assembly,
		   created_at = excluded.created_at`,
		key.hash(), key.Convention, id, assembly, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("cache: store: %w", err)
	}
	return id, nil
}
