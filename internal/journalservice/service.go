// Package journalservice coordinates the guard, storage, parser, index,
// publish, and export operations behind the serving surfaces.
package journalservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/quietwren/gemjournal/internal/index"
	"github.com/quietwren/gemjournal/internal/journal"
	"github.com/quietwren/gemjournal/internal/pathguard"
	"github.com/quietwren/gemjournal/internal/publish"
	"github.com/quietwren/gemjournal/internal/storage"
)

// Service exposes the journal operations as library calls.
type Service struct {
	guard  *pathguard.Guard
	store  *storage.Store
	db     *index.DB
	logger *slog.Logger
}

// NewService creates a journal service.
func NewService(guard *pathguard.Guard, store *storage.Store, db *index.DB, logger *slog.Logger) *Service {
	return &Service{guard: guard, store: store, db: db, logger: logger}
}

// ListFiles returns the aggregate index rows for every journal file.
func (s *Service) ListFiles(_ context.Context) ([]index.FileRow, error) {
	return s.db.ListFiles()
}

// GetEntries validates the path and returns the parsed entries of one
// journal file. The whole file fails if any single entry is invalid.
func (s *Service) GetEntries(_ context.Context, path string) ([]journal.Entry, error) {
	safePath, err := s.guard.Normalize(path, true)
	if err != nil {
		return nil, err
	}
	return journal.ParseFile(safePath)
}

// TogglePublish flips the publish flag of the entry with entryID in the
// journal file at path, then refreshes that file's index row.
func (s *Service) TogglePublish(_ context.Context, path, entryID string) (bool, error) {
	updated, err := publish.Toggle(s.store, path, entryID)
	if err != nil || !updated {
		return updated, err
	}
	if err := s.reindexFile(path); err != nil {
		// The toggle itself succeeded; index drift is repaired on next sync.
		s.logger.Warn("toggle: reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	return true, nil
}

// Export writes every published entry of the journal file at path to
// Markdown files under outDir and returns the written paths.
func (s *Service) Export(_ context.Context, path, outDir string) ([]string, error) {
	return publish.ExportMarked(s.guard, path, outDir)
}

// Search delegates full-text search over entries to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// IndexEntries returns the validated per-file index entries.
func (s *Service) IndexEntries(_ context.Context) ([]journal.IndexEntry, error) {
	return s.db.IndexEntries()
}

// Manifest aggregates the index into a validated collection manifest.
func (s *Service) Manifest(_ context.Context) (*journal.Manifest, error) {
	return s.db.BuildManifest(time.Now())
}

// Reindex runs a full sync of the index against the approved roots.
func (s *Service) Reindex(_ context.Context) error {
	return index.Sync(s.db, s.store, s.logger)
}

// Watch follows filesystem events under the approved roots and keeps the
// index current, invoking cb with "indexed" or "removed" per file. It blocks
// until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, cb index.EventCallback) error {
	return index.Watch(ctx, s.db, s.store, s.guard.Roots(), s.logger, cb)
}

// WriteCollectionArtifacts renders journal_index.json and
// journal_manifest.json into dir. Both names are skipped by the storage
// listing, so the artifacts never index themselves.
func (s *Service) WriteCollectionArtifacts(ctx context.Context, dir string) error {
	entries, err := s.IndexEntries(ctx)
	if err != nil {
		return err
	}
	manifest, err := s.Manifest(ctx)
	if err != nil {
		return err
	}
	if err := writeIndented(filepath.Join(dir, index.IndexFilename), entries); err != nil {
		return err
	}
	return writeIndented(filepath.Join(dir, index.ManifestFilename), manifest)
}

// reindexFile refreshes one file's index row, keyed by its canonical path so
// watcher and sync updates hit the same row.
func (s *Service) reindexFile(path string) error {
	safePath, err := s.guard.Normalize(path, true)
	if err != nil {
		return err
	}
	data, err := s.store.Read(safePath)
	if err != nil {
		return err
	}
	return index.IndexFile(s.db, safePath, data)
}

func writeIndented(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("journalservice: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("journalservice: write %s: %w", path, err)
	}
	return nil
}
