package entities

import "errors"

// Extraction error taxonomy. Readers wrap these so callers can classify a
// failure with errors.Is.
var (
	ErrMissingSource     = errors.New("source not found")
	ErrUnreadableFormat  = errors.New("unreadable source format")
	ErrSchemaMismatch    = errors.New("no compatible schema")
	ErrEmptyInput        = errors.New("empty input")
	ErrWriteFailure      = errors.New("failed to persist notes")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidNote       = errors.New("invalid note")
)
