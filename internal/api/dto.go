package api

import (
	"time"

	"github.com/quietwren/gemjournal/internal/index"
	"github.com/quietwren/gemjournal/internal/journal"
)

// JournalFileItem is one journal file in a list response.
type JournalFileItem struct {
	Path           string    `json:"path"`
	Filename       string    `json:"filename"`
	Checksum       string    `json:"checksum"`
	EntryCount     int       `json:"entry_count"`
	FirstTimestamp string    `json:"first_timestamp"`
	LastTimestamp  string    `json:"last_timestamp"`
	Labels         []string  `json:"labels"`
	EntryTypes     []string  `json:"entry_types"`
	Tags           []string  `json:"tags"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// JournalFileListResponse wraps journal file listings.
type JournalFileListResponse struct {
	Journals []JournalFileItem `json:"journals"`
	Total    int               `json:"total"`
}

// EntriesResponse wraps the parsed entries of one journal file.
type EntriesResponse struct {
	Path    string          `json:"path"`
	Entries []journal.Entry `json:"entries"`
}

// ToggleRequest is the request body for toggling a publish flag.
type ToggleRequest struct {
	Path string `json:"path"`
	ID   string `json:"id"`
}

// ToggleResponse reports the outcome of a publish toggle.
type ToggleResponse struct {
	Updated bool `json:"updated"`
}

// ExportRequest is the request body for exporting published entries.
type ExportRequest struct {
	Path   string `json:"path"`
	OutDir string `json:"out_dir,omitempty"`
}

// ExportResponse lists the Markdown files written by an export.
type ExportResponse struct {
	Exported []string `json:"exported"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// IndexResponse wraps the validated per-file index entries.
type IndexResponse struct {
	Entries []journal.IndexEntry `json:"entries"`
}
