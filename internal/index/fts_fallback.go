//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/quietwren/gemjournal/internal/journal"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses a LIKE fallback on journal_entries.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ string, _ []journal.Entry) error {
	// Entry text already lives in journal_entries; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, entry_id, substr(description, 1, 200)
		FROM journal_entries
		WHERE description LIKE ? OR reflections LIKE ? OR tags LIKE ?
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.EntryID, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
