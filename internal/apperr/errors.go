// Package apperr defines the sentinel errors shared across the journal
// components. Errors are classified once here so callers can decide whether
// to abort a batch, skip a file, or report to the user; nothing retries.
package apperr

import "errors"

var (
	// ErrNotFound signals a missing journal file or entry id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidFormat signals malformed JSON or an unrecognized envelope shape.
	ErrInvalidFormat = errors.New("invalid journal file format")
	// ErrValidation signals a schema violation in an otherwise well-formed entry.
	ErrValidation = errors.New("validation failed")
	// ErrUntrustedPath signals a path rejected by the safety guard before any I/O.
	ErrUntrustedPath = errors.New("untrusted journal path")
	// ErrDecrypt signals an authentication failure on decryption (wrong key or
	// corrupted blob); no partial output is ever produced.
	ErrDecrypt = errors.New("decryption failed")
)
