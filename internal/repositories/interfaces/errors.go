package interfaces

import "errors"

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
)
