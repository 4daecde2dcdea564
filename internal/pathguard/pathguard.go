// Package pathguard restricts journal file access to an allow-list of
// approved root directories, failing closed on traversal and symlink escapes.
package pathguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quietwren/gemjournal/internal/apperr"
)

// AllowedExtensions is the fixed set of journal file extensions, compared
// case-insensitively against the resolved path.
var AllowedExtensions = map[string]struct{}{
	".json": {},
}

// Guard validates candidate journal paths against a fixed set of approved
// roots. It is immutable after construction and safe for concurrent use.
type Guard struct {
	roots []string
}

// New builds a guard from the approved root directories. Each root is
// canonicalized once; roots that do not exist yet are kept in cleaned
// absolute form so they can be created later.
func New(roots []string) (*Guard, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("pathguard: at least one approved root is required")
	}
	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := absolute(root)
		if err != nil {
			return nil, fmt.Errorf("pathguard: resolve root %s: %w", root, err)
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		canonical = append(canonical, abs)
	}
	return &Guard{roots: canonical}, nil
}

// Roots returns the canonical approved root directories.
func (g *Guard) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Normalize canonicalizes path and verifies it is safe to open: no symlink
// anywhere on the resolved chain, an allow-listed extension, and strict
// containment inside one of the approved roots. With requireExists the
// target must also be an existing regular file; without it the parent
// directory must exist so the result is safe to create.
func (g *Guard) Normalize(path string, requireExists bool) (string, error) {
	abs, err := absolute(path)
	if err != nil {
		return "", fmt.Errorf("pathguard: %s: %w: %w", path, err, apperr.ErrUntrustedPath)
	}

	resolved, err := g.resolve(abs, requireExists)
	if err != nil {
		return "", err
	}

	// Authoritative symlink check: EvalSymlinks already followed links, but
	// re-walking every component from the target to the filesystem root is
	// what actually rejects "approved directory contains a symlink" escapes.
	if err := rejectSymlinkComponents(resolved); err != nil {
		return "", err
	}

	if _, ok := AllowedExtensions[strings.ToLower(filepath.Ext(resolved))]; !ok {
		return "", fmt.Errorf("pathguard: %s: extension not allowed: %w", path, apperr.ErrUntrustedPath)
	}

	if !g.contains(resolved) {
		return "", fmt.Errorf("pathguard: %s resolves outside the approved journal roots (%s): %w",
			path, strings.Join(g.roots, ", "), apperr.ErrUntrustedPath)
	}

	info, statErr := os.Stat(resolved)
	switch {
	case statErr == nil && info.IsDir():
		return "", fmt.Errorf("pathguard: %s is a directory: %w", path, apperr.ErrUntrustedPath)
	case statErr != nil && requireExists:
		return "", fmt.Errorf("pathguard: journal file not found: %s: %w", path, apperr.ErrNotFound)
	}

	return resolved, nil
}

// resolve canonicalizes abs, resolving through the parent directory when the
// target itself is allowed to be absent.
func (g *Guard) resolve(abs string, requireExists bool) (string, error) {
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("pathguard: resolve %s: %w: %w", abs, err, apperr.ErrUntrustedPath)
	}
	if requireExists {
		return "", fmt.Errorf("pathguard: journal file not found: %s: %w", abs, apperr.ErrNotFound)
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", fmt.Errorf("pathguard: parent directory of %s: %w: %w", abs, err, apperr.ErrUntrustedPath)
	}
	return filepath.Join(parent, filepath.Base(abs)), nil
}

// contains reports whether p lies strictly inside one of the approved roots.
// Containment is component-wise, so data/journalX never matches data/journal.
func (g *Guard) contains(p string) bool {
	for _, root := range g.roots {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return true
	}
	return false
}

// rejectSymlinkComponents walks from p up to the filesystem root and fails
// if any existing component is a symbolic link.
func rejectSymlinkComponents(p string) error {
	for current := p; ; {
		info, err := os.Lstat(current)
		if err == nil && info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("pathguard: %s passes through a symbolic link at %s: %w",
				p, current, apperr.ErrUntrustedPath)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return nil
		}
		current = parent
	}
}

// absolute expands a leading ~ and converts path to cleaned absolute form.
func absolute(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
