package journal

import (
	"errors"
	"strings"
	"testing"

	"github.com/quietwren/gemjournal/internal/apperr"
)

const validEntry = `{
  "journal_entry": {
    "id": "2025-06-01-morning",
    "timestamp": "2025-06-01T08:30:00Z",
    "entry_type": "ritual",
    "emotional_tone": ["calm"],
    "description": "Morning observance at the window.",
    "key_insights": ["light returns slowly"],
    "lyra_reflections": "the quiet before words",
    "tags": ["morning"],
    "stewardship_trace": {
      "committed_by": "Auriel",
      "witnessed_by": "Lyra",
      "commitment_type": "daily",
      "reason": "continuity"
    }
  }
}`

func TestParse_SingleEnvelope(t *testing.T) {
	entries, err := Parse([]byte(validEntry))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.ID != "2025-06-01-morning" {
		t.Errorf("id = %q", e.ID)
	}
	if e.Label != DefaultLabel {
		t.Errorf("label = %q, want %q", e.Label, DefaultLabel)
	}
	if e.Reflections != "the quiet before words" {
		t.Errorf("reflections = %q", e.Reflections)
	}
}

func TestParse_ArrayOfEnvelopes(t *testing.T) {
	doc := "[" + validEntry + "," + validEntry + "]"
	entries, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
}

func TestParse_ReflectionAliases(t *testing.T) {
	for _, alias := range ReflectionAliases {
		doc := strings.Replace(validEntry, "lyra_reflections", alias, 1)
		entries, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("alias %s: unexpected error: %v", alias, err)
		}
		if entries[0].Reflections != "the quiet before words" {
			t.Errorf("alias %s: reflections = %q", alias, entries[0].Reflections)
		}
	}
}

func TestParse_CanonicalReflectionsWins(t *testing.T) {
	doc := strings.Replace(validEntry,
		`"lyra_reflections": "the quiet before words",`,
		`"lyra_reflections": "canonical", "lyra_reflection": "legacy",`, 1)
	entries, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].Reflections != "canonical" {
		t.Errorf("reflections = %q, want canonical", entries[0].Reflections)
	}
}

func TestParse_CommittedByList(t *testing.T) {
	doc := strings.Replace(validEntry, `"committed_by": "Auriel"`,
		`"committed_by": ["Auriel", "Thorn"]`, 1)
	entries, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := entries[0].Trace.CommittedBy; got != "Auriel, Thorn" {
		t.Errorf("committed_by = %q, want %q", got, "Auriel, Thorn")
	}
}

func TestParse_LegacySpellingAndTraceList(t *testing.T) {
	doc := `[{"journal_entry": {"timestamp": "2025-01-01T00:00:00Z",
		"entry_type": "journal", "emotional_tone": ["calm"], "description": "d",
		"lyra_reflection": "r", "tags": ["t"],
		"stewardship_trace": {"committed_by": ["A","B"], "witnessed_by": "C",
		"commitment_type": "x", "reason": "y"}}}]`
	entries, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Reflections != "r" {
		t.Errorf("reflections = %q, want r", e.Reflections)
	}
	if e.Trace.CommittedBy != "A, B" {
		t.Errorf("committed_by = %q, want %q", e.Trace.CommittedBy, "A, B")
	}
	if e.Trace.WitnessedBy != "C" {
		t.Errorf("witnessed_by = %q", e.Trace.WitnessedBy)
	}
}

func TestParse_MissingEnvelope(t *testing.T) {
	_, err := Parse([]byte(`{"entry": {"id": "x"}}`))
	if !errors.Is(err, apperr.ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestParse_ScalarDocument(t *testing.T) {
	_, err := Parse([]byte(`42`))
	if !errors.Is(err, apperr.ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestParse_OneBadEntryFailsWholeFile(t *testing.T) {
	bad := strings.Replace(validEntry, `"description": "Morning observance at the window.",`, "", 1)
	doc := "[" + validEntry + "," + bad + "]"
	_, err := Parse([]byte(doc))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "entry 1") {
		t.Errorf("error should name the failing entry index: %v", err)
	}
}

func TestParse_MissingReflectionsFails(t *testing.T) {
	bad := strings.Replace(validEntry, `"lyra_reflections": "the quiet before words",`, "", 1)
	_, err := Parse([]byte(bad))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestParse_MalformedJSONReportsLineAndColumn(t *testing.T) {
	doc := "{\n  \"journal_entry\": {,}\n}"
	_, err := Parse([]byte(doc))
	if !errors.Is(err, apperr.ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the offending line: %v", err)
	}
}

func TestParse_WrongFieldTypeNamesField(t *testing.T) {
	doc := strings.Replace(validEntry, `"tags": ["morning"]`, `"tags": "morning"`, 1)
	_, err := Parse([]byte(doc))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "tags") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile("/nonexistent/journal.json")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	entries, err := Parse([]byte(validEntry))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := Serialize(entries)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(again) != 1 || again[0].ID != entries[0].ID || again[0].Reflections != entries[0].Reflections {
		t.Errorf("round trip mismatch: %+v", again)
	}
	if !strings.Contains(string(out), `"lyra_reflections"`) {
		t.Errorf("serialized form must use the canonical reflections key:\n%s", out)
	}
}

func TestSerialize_PreservesNonASCII(t *testing.T) {
	entries, _ := Parse([]byte(validEntry))
	entries[0].Description = "ведьма & <moon>"
	out, err := Serialize(entries)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(string(out), "ведьма & <moon>") {
		t.Errorf("non-ASCII or HTML characters were escaped:\n%s", out)
	}
}
