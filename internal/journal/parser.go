package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/quietwren/gemjournal/internal/apperr"
)

// Record is the on-disk envelope wrapped around every entry.
type Record struct {
	JournalEntry Entry `json:"journal_entry"`
}

// ParseFile reads a journal JSON file and returns its validated entries.
// The file must contain either an array of enveloped records or a single
// enveloped record; the parse fails atomically if the file is malformed or
// any single entry violates the schema.
func ParseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("journal: %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("journal: read %s: %w", path, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("journal: %s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes journal entries from raw JSON document bytes.
func Parse(data []byte) ([]Entry, error) {
	raws, err := splitEnvelopes(data)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raws))
	for i, raw := range raws {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return nil, fmt.Errorf("entry %d: field %q: expected %s: %w",
					i, typeErr.Field, typeErr.Type, apperr.ErrValidation)
			}
			return nil, fmt.Errorf("entry %d: %w: %w", i, apperr.ErrValidation, err)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w: %w", i, apperr.ErrValidation, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// splitEnvelopes extracts the raw entry objects from the accepted envelope
// shapes: an array where every element carries a journal_entry key, or a
// single object carrying one.
func splitEnvelopes(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, apperr.ErrInvalidFormat
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, decodeError(data, err)
		}
		raws := make([]json.RawMessage, 0, len(items))
		for i, item := range items {
			var wrapper map[string]json.RawMessage
			if err := json.Unmarshal(item, &wrapper); err != nil {
				return nil, fmt.Errorf("element %d is not an envelope object: %w", i, apperr.ErrInvalidFormat)
			}
			raw, err := unwrapRecord(wrapper)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			raws = append(raws, raw)
		}
		return raws, nil

	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, decodeError(data, err)
		}
		raw, err := unwrapRecord(wrapper)
		if err != nil {
			return nil, err
		}
		return []json.RawMessage{raw}, nil
	}

	// Scalars and other top-level values are never a journal file, but a
	// malformed document should still surface as a decode error.
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, decodeError(data, err)
	}
	return nil, apperr.ErrInvalidFormat
}

// unwrapRecord returns the journal_entry object inside an envelope.
func unwrapRecord(wrapper map[string]json.RawMessage) (json.RawMessage, error) {
	raw, ok := wrapper["journal_entry"]
	if !ok {
		return nil, fmt.Errorf("missing journal_entry envelope: %w", apperr.ErrInvalidFormat)
	}
	inner := bytes.TrimLeft(raw, " \t\r\n")
	if len(inner) == 0 || inner[0] != '{' {
		return nil, fmt.Errorf("journal_entry must be an object: %w", apperr.ErrInvalidFormat)
	}
	return raw, nil
}

// Serialize renders entries back to the wrapped on-disk format with 2-space
// indentation and non-ASCII text preserved.
func Serialize(entries []Entry) ([]byte, error) {
	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = Record{JournalEntry: e}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("journal: serialize: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeError converts a json syntax error into a format error that names
// the line and column of the first offending byte.
func decodeError(data []byte, err error) error {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		line, col := lineCol(data, syn.Offset)
		return fmt.Errorf("malformed JSON at line %d, column %d: %w", line, col, apperr.ErrInvalidFormat)
	}
	return fmt.Errorf("%w: %w", apperr.ErrInvalidFormat, err)
}

func lineCol(data []byte, offset int64) (int, int) {
	line, col := 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
