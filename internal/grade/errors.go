package grade

import "errors"

// Errors returned by Checker.Check.
var (
	ErrNoCheckFunction = errors.New("grade: script does not define check(solution)")
	ErrScript          = errors.New("grade: check script failed")
)
