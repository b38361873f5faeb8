package services

import "errors"

// Errors returned by the rating services. Callers match them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("rating already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	// ErrDependencyWrite means the rating write succeeded but updating the
	// match summary or the tutor profile did not. The rating is not rolled
	// back; retrying the whole operation is safe.
	ErrDependencyWrite = errors.New("dependent write failed")
)
