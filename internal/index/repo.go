package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quietwren/gemjournal/internal/journal"
)

// FileRow is the aggregate index row for one journal file.
type FileRow struct {
	Path           string
	Filename       string
	Checksum       string
	EntryCount     int
	FirstTimestamp string
	LastTimestamp  string
	Labels         []string
	EntryTypes     []string
	Tones          []string
	Tags           []string
	UpdatedAt      time.Time
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	Path    string `json:"path"`
	EntryID string `json:"entry_id"`
	Snippet string `json:"snippet"`
}

// UpsertFile replaces the aggregate row and the per-entry search rows for a
// journal file within one transaction.
func (db *DB) UpsertFile(row FileRow, entries []journal.Entry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	labelsJSON, _ := json.Marshal(row.Labels)
	typesJSON, _ := json.Marshal(row.EntryTypes)
	tonesJSON, _ := json.Marshal(row.Tones)
	tagsJSON, _ := json.Marshal(row.Tags)

	_, err = tx.Exec(`
		INSERT INTO journal_files (path, filename, checksum, entry_count,
			first_timestamp, last_timestamp, labels, entry_types, tones, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			filename        = excluded.filename,
			checksum        = excluded.checksum,
			entry_count     = excluded.entry_count,
			first_timestamp = excluded.first_timestamp,
			last_timestamp  = excluded.last_timestamp,
			labels          = excluded.labels,
			entry_types     = excluded.entry_types,
			tones           = excluded.tones,
			tags            = excluded.tags,
			updated_at      = excluded.updated_at
	`, row.Path, row.Filename, row.Checksum, row.EntryCount,
		row.FirstTimestamp, row.LastTimestamp,
		string(labelsJSON), string(typesJSON), string(tonesJSON), string(tagsJSON), row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM journal_entries WHERE path = ?`, row.Path)
	if len(entries) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO journal_entries (path, entry_id, label, entry_type, description, reflections, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.Exec(row.Path, e.ID, e.Label, e.EntryType,
				e.Description, e.Reflections, strings.Join(e.Tags, " ")); err != nil {
				return fmt.Errorf("index: insert entry: %w", err)
			}
		}
	}

	if err := ftsUpsert(tx, row.Path, entries); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteFile removes a journal file and its search rows from the index.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM journal_entries WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM journal_files WHERE path = ?`, path)

	return tx.Commit()
}

// GetFile returns the aggregate row for one journal file.
func (db *DB) GetFile(path string) (*FileRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, filename, checksum, entry_count, first_timestamp,
		       last_timestamp, labels, entry_types, tones, tags, updated_at
		FROM journal_files WHERE path = ?`, path)
	fr, err := scanFileRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("index: get file: %w", err)
	}
	return fr, nil
}

// ListFiles returns every indexed journal file ordered by path.
func (db *DB) ListFiles() ([]FileRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, filename, checksum, entry_count, first_timestamp,
		       last_timestamp, labels, entry_types, tones, tags, updated_at
		FROM journal_files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		fr, err := scanFileRow(rows)
		if err != nil {
			return nil, fmt.Errorf("index: list files: %w", err)
		}
		out = append(out, *fr)
	}
	return out, rows.Err()
}

// AllChecksums returns the stored checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM journal_files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRow(r rowScanner) (*FileRow, error) {
	var fr FileRow
	var labels, types, tones, tags string
	if err := r.Scan(&fr.Path, &fr.Filename, &fr.Checksum, &fr.EntryCount,
		&fr.FirstTimestamp, &fr.LastTimestamp, &labels, &types, &tones, &tags, &fr.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(labels), &fr.Labels)
	_ = json.Unmarshal([]byte(types), &fr.EntryTypes)
	_ = json.Unmarshal([]byte(tones), &fr.Tones)
	_ = json.Unmarshal([]byte(tags), &fr.Tags)
	return &fr, nil
}
