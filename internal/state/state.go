// Package state owns the single local store: the sqlite file holding the
// library entities and the play queues.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

// MemoryPath opens a private in-memory store.
const MemoryPath = ":memory:"

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Manager owns the sqlite database holding the library and play queues.
type Manager struct {
	db   *sqlx.DB
	path string
}

// Open opens (creating if needed) the store at path and applies the schema.
func Open(path string) (*Manager, error) {
	if path != MemoryPath {
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// One connection keeps the pragmas (and an in-memory db) shared by every
	// caller; the engine is the only writer after startup.
	// Readers such as the HTTP now-playing handler share that connection, so
	// an engine Advance or TrackAt can wait behind one of their queries.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Manager{db: db, path: path}, nil
}

// DB returns the underlying connection pool.
func (m *Manager) DB() *sqlx.DB {
	return m.db
}

// Path returns the location the store was opened from.
func (m *Manager) Path() string {
	return m.path
}

// Reset drops every table and recreates the empty schema. Artists, albums,
// tracks and all play queues are lost.
func (m *Manager) Reset() error {
	if err := dropSchema(m.db); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return initSchema(m.db)
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}
