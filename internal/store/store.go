// Package store persists local client state: per-page mistake sets and the
// offline submission queue. Backed by an embedded SQLite database so both
// survive restarts. Single writer; every mutation is a read-modify-persist.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS page_mistakes (
	page_number INTEGER PRIMARY KEY,
	word_ids TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS offline_queue (
	id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	enqueued_at TEXT NOT NULL,
	retry_count INTEGER NOT NULL DEFAULT 0
);
`

// Store owns the local database handle.
type Store struct {
	db *sqlx.DB
}

// Open creates or opens the local database at the given directory and
// applies the schema.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", dataDir, err)
	}

	dbPath := filepath.Join(dataDir, "hifztrack.db")
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open(%s) > %w", dbPath, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db.Exec(%s) > %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Exec(schema) > %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
