package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quietwren/gemjournal/internal/apperr"
	"github.com/quietwren/gemjournal/internal/pathguard"
)

func newStore(t *testing.T) (string, *Store) {
	t.Helper()
	root := t.TempDir()
	guard, err := pathguard.New([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	return root, New(guard)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	root, store := newStore(t)
	path := filepath.Join(root, "a.json")
	content := []byte(`{"journal_entry": {}}`)

	if err := store.Write(path, content); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := store.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("read = %q, want %q", got, content)
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	root, store := newStore(t)
	if err := store.Write(filepath.Join(root, "a.json"), []byte("{}")); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestRead_OutsideRootRejected(t *testing.T) {
	_, store := newStore(t)
	outside := filepath.Join(t.TempDir(), "x.json")
	if err := os.WriteFile(outside, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Read(outside)
	if !errors.Is(err, apperr.ErrUntrustedPath) {
		t.Fatalf("err = %v, want ErrUntrustedPath", err)
	}
}

func TestList_SkipsArtifacts(t *testing.T) {
	root, store := newStore(t)
	files := map[string]bool{
		"a.json":                true,
		"nested":                false, // directory
		"a.json.backup":         false,
		"journal_index.json":    false,
		"journal_manifest.json": false,
		"notes.txt":             false,
	}
	if err := os.MkdirAll(filepath.Join(root, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name := range files {
		if name == "nested" {
			continue
		}
		if err := os.WriteFile(filepath.Join(root, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "nested", "b.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len(metas) = %d, want 2 (a.json and nested/b.json): %+v", len(metas), metas)
	}
	for _, m := range metas {
		if m.Checksum == "" {
			t.Errorf("missing checksum for %s", m.Path)
		}
	}
}

func TestSkip(t *testing.T) {
	cases := map[string]bool{
		"a.json":                   false,
		"a.json.backup":            true,
		"old.backup.json":          true,
		"journal_index.json":       true,
		"journal_manifest_v2.json": true,
		"journalfile.json":         false,
	}
	for name, want := range cases {
		if got := Skip(name); got != want {
			t.Errorf("Skip(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	a := Checksum([]byte("abc"))
	b := Checksum([]byte("abc"))
	c := Checksum([]byte("abd"))
	if a != b {
		t.Error("checksum not deterministic")
	}
	if a == c {
		t.Error("different content must produce different checksums")
	}
}
