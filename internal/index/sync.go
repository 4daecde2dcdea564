package index

import (
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/quietwren/gemjournal/internal/journal"
	"github.com/quietwren/gemjournal/internal/storage"
)

// Sync walks the approved journal roots and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
//
// Files that fail to parse are logged and skipped; the rest of the sync
// continues, matching the per-file error surface of the parser.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile parses raw journal bytes and upserts the file's aggregate row
// and per-entry search rows.
func IndexFile(db *DB, path string, data []byte) error {
	entries, err := journal.Parse(data)
	if err != nil {
		return err
	}
	row := BuildFileRow(path, storage.Checksum(data), entries)
	return db.UpsertFile(row, entries)
}

// BuildFileRow aggregates parsed entries into the index row for one file.
func BuildFileRow(path, checksum string, entries []journal.Entry) FileRow {
	row := FileRow{
		Path:      path,
		Filename:  filepath.Base(path),
		Checksum:  checksum,
		UpdatedAt: time.Now(),
	}

	labels := make(map[string]struct{})
	types := make(map[string]struct{})
	tones := make(map[string]struct{})
	tags := make(map[string]struct{})
	for _, e := range entries {
		row.EntryCount++
		if row.FirstTimestamp == "" || e.Timestamp < row.FirstTimestamp {
			row.FirstTimestamp = e.Timestamp
		}
		if e.Timestamp > row.LastTimestamp {
			row.LastTimestamp = e.Timestamp
		}
		labels[e.Label] = struct{}{}
		types[e.EntryType] = struct{}{}
		for _, t := range e.EmotionalTone {
			tones[t] = struct{}{}
		}
		for _, t := range e.Tags {
			tags[t] = struct{}{}
		}
	}
	row.Labels = sortedKeys(labels)
	row.EntryTypes = sortedKeys(types)
	row.Tones = sortedKeys(tones)
	row.Tags = sortedKeys(tags)
	return row
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
