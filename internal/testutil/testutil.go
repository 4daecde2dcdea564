// Package testutil provides shared test helpers for setting up journal roots
// and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quietwren/gemjournal/internal/index"
	"github.com/quietwren/gemjournal/internal/pathguard"
	"github.com/quietwren/gemjournal/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gemjournal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRoot creates a temporary journal root with a guard and store over it.
func TestRoot(t *testing.T) (string, *pathguard.Guard, *storage.Store) {
	t.Helper()
	root := t.TempDir()
	guard, err := pathguard.New([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	return root, guard, storage.New(guard)
}

// WriteJournal writes raw journal bytes under root and returns the full path.
func WriteJournal(t *testing.T, root, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
