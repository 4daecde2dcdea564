// Package publish implements the publish-flag toggle and the redacting
// Markdown export for journal entries.
package publish

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/quietwren/gemjournal/internal/apperr"
	"github.com/quietwren/gemjournal/internal/storage"
)

// Toggle inverts the publish flag of the first entry in the journal file
// whose id stringifies equal to entryID. It reports whether an entry was
// updated; when no entry matches, the file is left byte-identical.
//
// Unlike the parser, Toggle accepts every historical top-level shape: a bare
// entry list, an {"entries": [...]} object, and per-item journal_entry
// envelopes. Exactly one entry is modified per call; on duplicate ids the
// first match in file order wins.
func Toggle(store storage.Provider, path, entryID string) (bool, error) {
	data, err := store.Read(path)
	if err != nil {
		return false, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return false, fmt.Errorf("publish: %s is not valid JSON: %w", path, apperr.ErrInvalidFormat)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		items, _ = v["entries"].([]any)
	}

	updated := false
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry := obj
		if inner, ok := obj["journal_entry"].(map[string]any); ok {
			entry = inner
		}
		if stringifyID(entry["id"]) != entryID {
			continue
		}
		current, _ := entry["publish"].(bool)
		entry["publish"] = !current
		updated = true
		break
	}

	if !updated {
		return false, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return false, fmt.Errorf("publish: encode %s: %w", path, err)
	}
	if err := store.Write(path, buf.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}

// stringifyID renders an id value for comparison, preserving number
// literals exactly as they appear in the file.
func stringifyID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprintf("%v", id)
	}
}
