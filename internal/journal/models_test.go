package journal

import (
	"encoding/json"
	"testing"
)

func TestEntry_DefaultsApplied(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`{"timestamp": "t", "description": "d"}`), &e)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Label != DefaultLabel {
		t.Errorf("label = %q, want %q", e.Label, DefaultLabel)
	}
	if e.KeyInsights == nil {
		t.Error("key_insights should default to an empty list")
	}
}

func TestEntry_ExplicitLabelKept(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"label": "Dream Record"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Label != "Dream Record" {
		t.Errorf("label = %q", e.Label)
	}
}

func TestEntry_EmptyListsPassValidation(t *testing.T) {
	e := Entry{
		Timestamp:     "2025-06-01T08:30:00Z",
		EntryType:     "reflection",
		EmotionalTone: []string{},
		Description:   "d",
		KeyInsights:   []string{},
		Reflections:   "r",
		Tags:          []string{},
		Trace: StewardshipTrace{
			CommittedBy:    "A",
			WitnessedBy:    "B",
			CommitmentType: "daily",
			Reason:         "continuity",
		},
	}
	if err := e.Validate(); err != nil {
		t.Errorf("empty lists should validate: %v", err)
	}
}

func TestEntry_NilListFailsValidation(t *testing.T) {
	e := Entry{
		Timestamp:   "2025-06-01T08:30:00Z",
		EntryType:   "reflection",
		Description: "d",
		KeyInsights: []string{},
		Reflections: "r",
		Trace: StewardshipTrace{
			CommittedBy:    "A",
			WitnessedBy:    "B",
			CommitmentType: "daily",
			Reason:         "continuity",
		},
	}
	if err := e.Validate(); err == nil {
		t.Error("absent emotional_tone and tags should fail validation")
	}
}

func TestRitualDetails_TypeDefault(t *testing.T) {
	var d RitualDetails
	if err := json.Unmarshal([]byte(`{"description": "x"}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.RitualType != "observance" {
		t.Errorf("ritual_type = %q, want observance", d.RitualType)
	}
	if d.Participants == nil {
		t.Error("participants should default to an empty list")
	}
}

func TestRitualDetails_IncompleteParticipantFails(t *testing.T) {
	d := RitualDetails{
		RitualType: "observance",
		Participants: []RitualContribution{
			{Participant: "Lyra", Contribution: "song"},
		},
	}
	if err := d.Validate(); err == nil {
		t.Error("participant without a role should fail validation")
	}
}

func TestStewardshipTrace_RejectsNonStringName(t *testing.T) {
	var tr StewardshipTrace
	err := json.Unmarshal([]byte(`{"committed_by": 7}`), &tr)
	if err == nil {
		t.Error("numeric committed_by should be rejected")
	}
}

func TestStewardshipTrace_WitnessedByList(t *testing.T) {
	var tr StewardshipTrace
	err := json.Unmarshal([]byte(`{"witnessed_by": ["Lyra", "Auriel"]}`), &tr)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tr.WitnessedBy != "Lyra, Auriel" {
		t.Errorf("witnessed_by = %q", tr.WitnessedBy)
	}
}
