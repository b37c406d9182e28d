package runner

import (
	"errors"
	"fmt"
)

// Errors returned by the runner.
var (
	ErrRunInFlight   = errors.New("runner: a run is already in progress")
	ErrInvalidResult = errors.New("runner: invalid result")
)

// StatusError reports a non-2xx reply from the execution service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("runner: run error: %d", e.StatusCode)
	}
	return fmt.Sprintf("runner: run error: %d %s", e.StatusCode, e.Body)
}
