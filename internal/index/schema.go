// Package index provides the SQLite-backed journal collection index with
// optional FTS5 full-text search over entries.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS journal_files (
	path            TEXT PRIMARY KEY,
	filename        TEXT NOT NULL DEFAULT '',
	checksum        TEXT NOT NULL DEFAULT '',
	entry_count     INTEGER NOT NULL DEFAULT 0,
	first_timestamp TEXT NOT NULL DEFAULT '',
	last_timestamp  TEXT NOT NULL DEFAULT '',
	labels          TEXT NOT NULL DEFAULT '[]',
	entry_types     TEXT NOT NULL DEFAULT '[]',
	tones           TEXT NOT NULL DEFAULT '[]',
	tags            TEXT NOT NULL DEFAULT '[]',
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS journal_entries (
	path        TEXT NOT NULL,
	entry_id    TEXT NOT NULL DEFAULT '',
	label       TEXT NOT NULL DEFAULT '',
	entry_type  TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	reflections TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_path ON journal_entries(path);
`

// DB wraps a sql.DB with journal-index operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
