package guard

import "errors"

// Errors returned by session construction.
var (
	// ErrNilDocument indicates a session was created without a document.
	ErrNilDocument = errors.New("guard: nil document")
)
