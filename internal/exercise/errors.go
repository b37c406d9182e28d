package exercise

import "errors"

// Errors returned when decoding exercises.
var (
	ErrInvalidJSON       = errors.New("exercise: invalid JSON")
	ErrMissingID         = errors.New("exercise: missing id")
	ErrInvalidID         = errors.New("exercise: id must be a positive integer")
	ErrUnsupportedFormat = errors.New("exercise: unsupported file format")
	ErrNotFound          = errors.New("exercise: not found")
)
