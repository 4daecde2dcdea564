package publish

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quietwren/gemjournal/internal/apperr"
	"github.com/quietwren/gemjournal/internal/pathguard"
	"github.com/quietwren/gemjournal/internal/storage"
)

func newStore(t *testing.T) (string, *storage.Store) {
	t.Helper()
	root := t.TempDir()
	guard, err := pathguard.New([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	return root, storage.New(guard)
}

func writeDoc(t *testing.T, root, name, doc string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func publishFlag(t *testing.T, path, id string) bool {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("reparse %s: %v", path, err)
	}
	for _, item := range items {
		entry := item
		if inner, ok := item["journal_entry"].(map[string]any); ok {
			entry = inner
		}
		if entry["id"] == id {
			flag, _ := entry["publish"].(bool)
			return flag
		}
	}
	t.Fatalf("entry %s not found in %s", id, path)
	return false
}

func TestToggle_FlipsAndFlipsBack(t *testing.T) {
	root, store := newStore(t)
	path := writeDoc(t, root, "j.json",
		`[{"journal_entry": {"id": "e1", "publish": false}}]`)

	updated, err := Toggle(store, path, "e1")
	if err != nil || !updated {
		t.Fatalf("toggle: updated=%v err=%v", updated, err)
	}
	if !publishFlag(t, path, "e1") {
		t.Error("publish should be true after first toggle")
	}

	if _, err := Toggle(store, path, "e1"); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if publishFlag(t, path, "e1") {
		t.Error("publish should be false after second toggle")
	}
}

func TestToggle_MissingFlagBecomesTrue(t *testing.T) {
	root, store := newStore(t)
	path := writeDoc(t, root, "j.json", `[{"journal_entry": {"id": "e1"}}]`)

	updated, err := Toggle(store, path, "e1")
	if err != nil || !updated {
		t.Fatalf("toggle: updated=%v err=%v", updated, err)
	}
	if !publishFlag(t, path, "e1") {
		t.Error("absent publish treated as false, so toggle sets true")
	}
}

func TestToggle_NotFoundLeavesFileUntouched(t *testing.T) {
	root, store := newStore(t)
	doc := `[{"journal_entry": {"id": "e1", "publish": false}}]`
	path := writeDoc(t, root, "j.json", doc)

	updated, err := Toggle(store, path, "nope")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if updated {
		t.Error("no entry should have matched")
	}
	data, _ := os.ReadFile(path)
	if !bytes.Equal(data, []byte(doc)) {
		t.Errorf("file must be byte-identical when nothing matched:\n%s", data)
	}
}

func TestToggle_BareListShape(t *testing.T) {
	root, store := newStore(t)
	path := writeDoc(t, root, "j.json", `[{"id": "e1", "publish": true}]`)

	updated, err := Toggle(store, path, "e1")
	if err != nil || !updated {
		t.Fatalf("toggle: updated=%v err=%v", updated, err)
	}
	if publishFlag(t, path, "e1") {
		t.Error("publish should have flipped to false")
	}
}

func TestToggle_EntriesObjectShape(t *testing.T) {
	root, store := newStore(t)
	path := writeDoc(t, root, "j.json",
		`{"entries": [{"id": "e1", "publish": false}]}`)

	updated, err := Toggle(store, path, "e1")
	if err != nil || !updated {
		t.Fatalf("toggle: updated=%v err=%v", updated, err)
	}
	data, _ := os.ReadFile(path)
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	entry := doc["entries"].([]any)[0].(map[string]any)
	if entry["publish"] != true {
		t.Errorf("publish = %v, want true", entry["publish"])
	}
}

func TestToggle_DuplicateIDFirstWins(t *testing.T) {
	root, store := newStore(t)
	path := writeDoc(t, root, "j.json",
		`[{"id": "e1", "publish": false}, {"id": "e1", "publish": false}]`)

	if _, err := Toggle(store, path, "e1"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatal(err)
	}
	if items[0]["publish"] != true {
		t.Error("first duplicate should have been toggled")
	}
	if items[1]["publish"] != false {
		t.Error("second duplicate must stay untouched")
	}
}

func TestToggle_NumericIDPreserved(t *testing.T) {
	root, store := newStore(t)
	path := writeDoc(t, root, "j.json", `[{"id": 42, "publish": false}]`)

	updated, err := Toggle(store, path, "42")
	if err != nil || !updated {
		t.Fatalf("toggle: updated=%v err=%v", updated, err)
	}
	data, _ := os.ReadFile(path)
	if !bytes.Contains(data, []byte(`"id": 42`)) {
		t.Errorf("numeric id literal must survive the rewrite:\n%s", data)
	}
}

func TestToggle_MalformedJSON(t *testing.T) {
	root, store := newStore(t)
	path := writeDoc(t, root, "j.json", `{not json`)

	_, err := Toggle(store, path, "e1")
	if !errors.Is(err, apperr.ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}
