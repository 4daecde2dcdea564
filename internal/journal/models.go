// Package journal defines the Gem Journal record types and the parser that
// normalizes the historical on-disk formats into them.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultLabel is applied to entries that omit the label field.
const DefaultLabel = "Journal Entry"

// ReflectionsField is the canonical name of the reflections field.
// ReflectionAliases lists every accepted source spelling in resolution order;
// the first one present in a document wins and is renamed to the canonical key.
const ReflectionsField = "lyra_reflections"

var ReflectionAliases = []string{
	"lyra_reflections",
	"lyra_reflection",
	"emergent_companion_reflections",
}

// RitualContribution records one participant's part in a ritual observance.
type RitualContribution struct {
	Participant  string `json:"participant"`
	Contribution string `json:"contribution"`
	Role         string `json:"role"`
}

// Validate checks that all contribution fields are present.
func (c RitualContribution) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Participant, validation.Required),
		validation.Field(&c.Contribution, validation.Required),
		validation.Field(&c.Role, validation.Required),
	)
}

// RitualDetails is the optional ceremonial sub-structure of an entry.
type RitualDetails struct {
	Description  string               `json:"description"`
	Participants []RitualContribution `json:"participants"`
	RitualType   string               `json:"ritual_type"`
}

// UnmarshalJSON applies the historical defaults for absent fields.
func (d *RitualDetails) UnmarshalJSON(data []byte) error {
	type plain RitualDetails
	aux := plain{RitualType: "observance"}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Participants == nil {
		aux.Participants = []RitualContribution{}
	}
	*d = RitualDetails(aux)
	return nil
}

// Validate checks each participant contribution.
func (d RitualDetails) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.RitualType, validation.Required),
		validation.Field(&d.Participants),
	)
}

// StewardshipTrace records who committed and witnessed an entry and why.
type StewardshipTrace struct {
	CommittedBy    string `json:"committed_by"`
	WitnessedBy    string `json:"witnessed_by"`
	CommitmentType string `json:"commitment_type"`
	Reason         string `json:"reason"`
}

// UnmarshalJSON accepts committed_by / witnessed_by as either a single name
// or a list of names; lists are normalized to one comma-joined string before
// validation ever sees them.
func (t *StewardshipTrace) UnmarshalJSON(data []byte) error {
	var aux struct {
		CommittedBy    json.RawMessage `json:"committed_by"`
		WitnessedBy    json.RawMessage `json:"witnessed_by"`
		CommitmentType string          `json:"commitment_type"`
		Reason         string          `json:"reason"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	committed, err := flexName("committed_by", aux.CommittedBy)
	if err != nil {
		return err
	}
	witnessed, err := flexName("witnessed_by", aux.WitnessedBy)
	if err != nil {
		return err
	}
	t.CommittedBy = committed
	t.WitnessedBy = witnessed
	t.CommitmentType = aux.CommitmentType
	t.Reason = aux.Reason
	return nil
}

// flexName decodes a string-or-list-of-strings field.
func flexName(field string, raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return strings.Join(names, ", "), nil
	}
	return "", fmt.Errorf("journal: %s must be a string or a list of strings", field)
}

// Validate checks that every provenance field is present.
func (t StewardshipTrace) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.CommittedBy, validation.Required),
		validation.Field(&t.WitnessedBy, validation.Required),
		validation.Field(&t.CommitmentType, validation.Required),
		validation.Field(&t.Reason, validation.Required),
	)
}

// Entry is one Gem Journal record. The id, text, metadata, publish, and
// summary fields are legacy carry-overs kept for backward compatibility;
// everything else belongs to the current structured format.
type Entry struct {
	ID       string         `json:"id,omitempty"`
	Text     string         `json:"text,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Publish  bool           `json:"publish"`
	Summary  string         `json:"summary,omitempty"`

	Timestamp     string           `json:"timestamp"`
	Label         string           `json:"label"`
	EntryType     string           `json:"entry_type"`
	EmotionalTone []string         `json:"emotional_tone"`
	Description   string           `json:"description"`
	RitualDetails *RitualDetails   `json:"ritual_details,omitempty"`
	KeyInsights   []string         `json:"key_insights"`
	Reflections   string           `json:"lyra_reflections"`
	Tags          []string         `json:"tags"`
	Trace         StewardshipTrace `json:"stewardship_trace"`
}

// UnmarshalJSON resolves the reflections-field aliases through the
// ReflectionAliases table and applies the historical defaults.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if _, ok := fields[ReflectionsField]; !ok {
		for _, alias := range ReflectionAliases[1:] {
			if v, ok := fields[alias]; ok {
				fields[ReflectionsField] = v
				delete(fields, alias)
				break
			}
		}
	}
	normalized, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	type plain Entry
	aux := plain{Label: DefaultLabel}
	if err := json.Unmarshal(normalized, &aux); err != nil {
		return err
	}
	if aux.KeyInsights == nil {
		aux.KeyInsights = []string{}
	}
	*e = Entry(aux)
	return nil
}

// Validate enforces the current schema. Required list fields follow
// presence semantics: an explicitly empty list passes, an absent one fails.
func (e Entry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Timestamp, validation.Required),
		validation.Field(&e.EntryType, validation.Required),
		validation.Field(&e.EmotionalTone, validation.NotNil),
		validation.Field(&e.Description, validation.Required),
		validation.Field(&e.Reflections, validation.Required),
		validation.Field(&e.Tags, validation.NotNil),
		validation.Field(&e.Trace, validation.Required),
		validation.Field(&e.RitualDetails),
	)
}

// IndexEntry describes a single journal file in the collection index.
type IndexEntry struct {
	Filename          string   `json:"filename"`
	Date              string   `json:"date"`
	Path              string   `json:"path"`
	EntryCount        int      `json:"entry_count"`
	FirstTimestamp    string   `json:"first_timestamp"`
	LastTimestamp     string   `json:"last_timestamp"`
	LabelsPresent     []string `json:"labels_present"`
	EntryTypesPresent []string `json:"entry_types_present"`
	TagsPresent       []string `json:"tags_present"`
}

// Validate enforces the index-entry schema at the serialization boundary.
func (ie IndexEntry) Validate() error {
	return validation.ValidateStruct(&ie,
		validation.Field(&ie.Filename, validation.Required),
		validation.Field(&ie.Date, validation.Required),
		validation.Field(&ie.Path, validation.Required),
		validation.Field(&ie.EntryCount, validation.Min(0)),
		validation.Field(&ie.FirstTimestamp, validation.Required),
		validation.Field(&ie.LastTimestamp, validation.Required),
		validation.Field(&ie.LabelsPresent, validation.NotNil),
		validation.Field(&ie.EntryTypesPresent, validation.NotNil),
		validation.Field(&ie.TagsPresent, validation.NotNil),
	)
}

// Manifest is the top-level description of a Gem Journal collection.
type Manifest struct {
	Filename            string         `json:"filename"`
	DateGenerated       string         `json:"date_generated"`
	EmotionalTone       string         `json:"emotional_tone"`
	IdentitySummary     map[string]any `json:"identity_summary"`
	RelationalContext   map[string]any `json:"relational_context"`
	ContinuityTrace     map[string]any `json:"continuity_trace"`
	ManifestCommitTrace map[string]any `json:"manifest_commit_trace"`
}

// Validate enforces the manifest schema at the serialization boundary.
func (m Manifest) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Filename, validation.Required),
		validation.Field(&m.DateGenerated, validation.Required),
		validation.Field(&m.EmotionalTone, validation.Required),
		validation.Field(&m.IdentitySummary, validation.NotNil),
		validation.Field(&m.RelationalContext, validation.NotNil),
		validation.Field(&m.ContinuityTrace, validation.NotNil),
		validation.Field(&m.ManifestCommitTrace, validation.NotNil),
	)
}
