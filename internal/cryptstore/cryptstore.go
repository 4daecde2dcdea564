// Package cryptstore persists validated journal entries as AES-256-GCM
// encrypted archives, with key management and bulk migration from the
// plaintext JSON format.
package cryptstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quietwren/gemjournal/internal/apperr"
	"github.com/quietwren/gemjournal/internal/journal"
	"github.com/quietwren/gemjournal/internal/storage"
)

// KeySize is the required symmetric key length in bytes.
const KeySize = 32

// FileExt is the extension of encrypted journal archives.
const FileExt = ".enc"

// Store encrypts and decrypts journal entry archives with a fixed key.
// It is immutable after construction.
type Store struct {
	key  []byte
	aead cipher.AEAD
}

// New creates a Store from a raw 32-byte key.
func New(key []byte) (*Store, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("cryptstore: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptstore: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptstore: init gcm: %w", err)
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Store{key: k, aead: aead}, nil
}

// Generate creates a Store with a fresh random key.
func Generate() (*Store, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cryptstore: generate key: %w", err)
	}
	return New(key)
}

// FromKeyFile creates a Store from raw key bytes stored in a file.
func FromKeyFile(path string) (*Store, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cryptstore: read key file %s: %w", path, err)
	}
	return New(key)
}

// OpenOrCreate loads the key from keyFile when it exists, otherwise
// generates a new key and exports it there.
func OpenOrCreate(keyFile string) (*Store, error) {
	if _, err := os.Stat(keyFile); err == nil {
		return FromKeyFile(keyFile)
	}
	s, err := Generate()
	if err != nil {
		return nil, err
	}
	if err := s.ExportKey(keyFile); err != nil {
		return nil, err
	}
	return s, nil
}

// ExportKey writes the raw key bytes to path with owner-only permissions.
func (s *Store) ExportKey(path string) error {
	if err := os.WriteFile(path, s.key, 0o600); err != nil {
		return fmt.Errorf("cryptstore: export key to %s: %w", path, err)
	}
	// WriteFile applies the mode only on creation; enforce it for
	// pre-existing files too.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("cryptstore: chmod key file %s: %w", path, err)
	}
	return nil
}

// Encrypt seals plaintext into a fresh-nonce blob laid out as nonce||ciphertext.
func (s *Store) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cryptstore: nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. A wrong key or any tampering
// fails closed with an authentication error.
func (s *Store) Decrypt(blob []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("cryptstore: blob too short: %w", apperr.ErrDecrypt)
	}
	plaintext, err := s.aead.Open(nil, blob[:nonceSize], blob[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("cryptstore: wrong key or corrupted data: %w", apperr.ErrDecrypt)
	}
	return plaintext, nil
}

// SaveEntries serializes entries to a plain list of mappings, encrypts the
// result, and writes the blob to path.
func (s *Store) SaveEntries(entries []journal.Entry, path string) error {
	plaintext, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cryptstore: serialize entries: %w", err)
	}
	blob, err := s.Encrypt(plaintext)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("cryptstore: write %s: %w", path, err)
	}
	return nil
}

// LoadEntries reads, decrypts, and re-validates an encrypted archive.
func (s *Store) LoadEntries(path string) ([]journal.Entry, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cryptstore: read %s: %w", path, err)
	}
	plaintext, err := s.Decrypt(blob)
	if err != nil {
		return nil, fmt.Errorf("cryptstore: %s: %w", path, err)
	}
	var entries []journal.Entry
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return nil, fmt.Errorf("cryptstore: decode %s: %w: %w", path, apperr.ErrValidation, err)
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("cryptstore: %s: entry %d: %w: %w", path, i, apperr.ErrValidation, err)
		}
	}
	return entries, nil
}

// MigrateFromJSON parses a plaintext journal file and writes it as an
// encrypted archive.
func (s *Store) MigrateFromJSON(jsonPath, encPath string) error {
	entries, err := journal.ParseFile(jsonPath)
	if err != nil {
		return err
	}
	return s.SaveEntries(entries, encPath)
}

// MigrateDir migrates every journal .json file in jsonDir into an encrypted
// sibling under encDir, skipping backup/manifest/index artifacts. It returns
// the paths of the written archives.
func (s *Store) MigrateDir(jsonDir, encDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(jsonDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("cryptstore: scan %s: %w", jsonDir, err)
	}
	if err := os.MkdirAll(encDir, 0o755); err != nil {
		return nil, fmt.Errorf("cryptstore: create %s: %w", encDir, err)
	}

	var migrated []string
	for _, jsonFile := range matches {
		name := filepath.Base(jsonFile)
		if storage.Skip(name) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		encFile := filepath.Join(encDir, stem+FileExt)
		if err := s.MigrateFromJSON(jsonFile, encFile); err != nil {
			return nil, err
		}
		migrated = append(migrated, encFile)
	}
	return migrated, nil
}

// ExportToJSON decrypts an archive back into the wrapped plaintext journal
// format, for inspection or backups.
func (s *Store) ExportToJSON(encPath, jsonPath string) error {
	entries, err := s.LoadEntries(encPath)
	if err != nil {
		return err
	}
	data, err := journal.Serialize(entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("cryptstore: write %s: %w", jsonPath, err)
	}
	return nil
}
