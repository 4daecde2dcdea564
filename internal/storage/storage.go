// Package storage provides guarded, atomic file access to the approved
// journal directories.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quietwren/gemjournal/internal/pathguard"
)

// FileMeta is a lightweight description of one journal file on disk.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for journal file operations. Paths are absolute;
// every access is validated by the path guard before any I/O happens.
type Provider interface {
	// List returns metadata for every journal file under the approved roots.
	List() ([]FileMeta, error)
	// Read returns the raw bytes of the journal file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the journal file at path.
	Write(path string, content []byte) error
}

// Store implements Provider backed by the local file system.
type Store struct {
	guard *pathguard.Guard
}

// New creates a Store over the given guard.
func New(guard *pathguard.Guard) *Store {
	return &Store{guard: guard}
}

// Roots returns the approved root directories the store operates on.
func (s *Store) Roots() []string {
	return s.guard.Roots()
}

// Skip reports whether a file name is a backup, manifest, or index artifact
// rather than a journal file.
func Skip(name string) bool {
	return strings.Contains(name, ".backup") ||
		strings.HasPrefix(name, "journal_manifest") ||
		strings.HasPrefix(name, "journal_index")
}

// List walks every approved root and returns metadata for each .json journal
// file, skipping backup/manifest/index artifacts.
func (s *Store) List() ([]FileMeta, error) {
	var out []FileMeta
	for _, root := range s.guard.Roots() {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".json") || Skip(d.Name()) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			out = append(out, FileMeta{
				Path:      p,
				Checksum:  Checksum(data),
				UpdatedAt: info.ModTime(),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", root, err)
		}
	}
	return out, nil
}

// Read returns the raw bytes of a journal file after guard validation.
func (s *Store) Read(path string) ([]byte, error) {
	abs, err := s.guard.Normalize(path, true)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically replaces content: tmp file → fsync → rename. The target
// must pass the guard but does not have to exist yet.
func (s *Store) Write(path string, content []byte) error {
	abs, err := s.guard.Normalize(path, false)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".gemjournal-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
