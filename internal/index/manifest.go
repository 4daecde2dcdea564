package index

import (
	"fmt"
	"sort"
	"time"

	"github.com/quietwren/gemjournal/internal/journal"
)

// IndexFilename and ManifestFilename are the collection artifact names;
// storage listing skips both by name so they never get indexed themselves.
const (
	IndexFilename    = "journal_index.json"
	ManifestFilename = "journal_manifest.json"
)

// IndexEntries renders every indexed file as a validated journal.IndexEntry.
func (db *DB) IndexEntries() ([]journal.IndexEntry, error) {
	rows, err := db.ListFiles()
	if err != nil {
		return nil, err
	}
	entries := make([]journal.IndexEntry, 0, len(rows))
	for _, r := range rows {
		// A valid but empty journal file has no timestamps to report.
		if r.EntryCount == 0 {
			continue
		}
		ie := journal.IndexEntry{
			Filename:          r.Filename,
			Date:              fileDate(r),
			Path:              r.Path,
			EntryCount:        r.EntryCount,
			FirstTimestamp:    r.FirstTimestamp,
			LastTimestamp:     r.LastTimestamp,
			LabelsPresent:     emptyIfNil(r.Labels),
			EntryTypesPresent: emptyIfNil(r.EntryTypes),
			TagsPresent:       emptyIfNil(r.Tags),
		}
		if err := ie.Validate(); err != nil {
			return nil, fmt.Errorf("index: %s: %w", r.Path, err)
		}
		entries = append(entries, ie)
	}
	return entries, nil
}

// BuildManifest aggregates the whole index into a validated collection
// manifest, stamped with the given generation time.
func (db *DB) BuildManifest(now time.Time) (*journal.Manifest, error) {
	rows, err := db.ListFiles()
	if err != nil {
		return nil, err
	}

	total := 0
	first, last := "", ""
	labels := make(map[string]struct{})
	types := make(map[string]struct{})
	toneCounts := make(map[string]int)
	for _, r := range rows {
		total += r.EntryCount
		if r.FirstTimestamp != "" && (first == "" || r.FirstTimestamp < first) {
			first = r.FirstTimestamp
		}
		if r.LastTimestamp > last {
			last = r.LastTimestamp
		}
		for _, l := range r.Labels {
			labels[l] = struct{}{}
		}
		for _, t := range r.EntryTypes {
			types[t] = struct{}{}
		}
		for _, t := range r.Tones {
			toneCounts[t]++
		}
	}

	m := &journal.Manifest{
		Filename:      ManifestFilename,
		DateGenerated: now.UTC().Format(time.RFC3339),
		EmotionalTone: dominantTone(toneCounts),
		IdentitySummary: map[string]any{
			"journal_files": len(rows),
			"entry_count":   total,
		},
		RelationalContext: map[string]any{
			"labels_present":      sortedKeys(labels),
			"entry_types_present": sortedKeys(types),
		},
		ContinuityTrace: map[string]any{
			"first_timestamp": first,
			"last_timestamp":  last,
		},
		ManifestCommitTrace: map[string]any{
			"committed_by": "gemjournal index",
			"reason":       "collection reindex",
		},
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("index: manifest: %w", err)
	}
	return m, nil
}

// dominantTone picks the most frequent tone, breaking ties alphabetically.
func dominantTone(counts map[string]int) string {
	if len(counts) == 0 {
		return "unrecorded"
	}
	tones := make([]string, 0, len(counts))
	for t := range counts {
		tones = append(tones, t)
	}
	sort.Strings(tones)
	best := tones[0]
	for _, t := range tones[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// fileDate derives the index entry date from the first entry timestamp,
// falling back to the file's modification time.
func fileDate(r FileRow) string {
	if len(r.FirstTimestamp) >= 10 {
		return r.FirstTimestamp[:10]
	}
	return r.UpdatedAt.UTC().Format("2006-01-02")
}
