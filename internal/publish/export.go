package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quietwren/gemjournal/internal/journal"
	"github.com/quietwren/gemjournal/internal/pathguard"
)

// RedactionBanner is prepended to an exported body when any redaction occurred.
const RedactionBanner = "<!-- WARNING: Potential secrets were redacted -->"

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)secret`),
}

// SanitizeText redacts the fixed sensitive keyword patterns from text and
// reports whether anything was replaced.
func SanitizeText(text string) (string, bool) {
	sanitized := text
	redacted := false
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(sanitized) {
			sanitized = pattern.ReplaceAllString(sanitized, "[REDACTED]")
			redacted = true
		}
	}
	return sanitized, redacted
}

// ExportMarked renders every published entry of the journal file at path to
// an individual Markdown file under outDir and returns the written paths.
// Re-running with unchanged input produces byte-identical output; entries
// sharing an id collide on the same file name, last one wins. An entry
// without a legacy id is named by its position so id-less entries neither
// collide with each other nor produce a hidden ".md" file.
func ExportMarked(guard *pathguard.Guard, path, outDir string) ([]string, error) {
	safePath, err := guard.Normalize(path, true)
	if err != nil {
		return nil, err
	}
	entries, err := journal.ParseFile(safePath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("publish: create output dir %s: %w", outDir, err)
	}

	var exported []string
	for i, e := range entries {
		if !e.Publish {
			continue
		}
		name := e.ID
		if name == "" {
			name = fmt.Sprintf("entry-%d", i)
		}
		target := filepath.Join(outDir, name+".md")
		if err := os.WriteFile(target, renderMarkdown(e), 0o644); err != nil {
			return nil, fmt.Errorf("publish: write %s: %w", target, err)
		}
		exported = append(exported, target)
	}
	return exported, nil
}

// renderMarkdown produces the YAML-front-matter export format for one entry.
func renderMarkdown(e journal.Entry) []byte {
	sanitized, redacted := SanitizeText(e.Text)

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "id: \"%s\"\n", e.ID)
	if e.Summary != "" {
		fmt.Fprintf(&b, "summary: \"%s\"\n", e.Summary)
	}
	b.WriteString("---\n\n")
	if redacted {
		b.WriteString(RedactionBanner + "\n\n")
	}
	b.WriteString(sanitized)
	return []byte(b.String())
}
