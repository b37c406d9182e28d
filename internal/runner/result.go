package runner

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// TimeLimitExceeded is the output shown for a run that timed out.
const TimeLimitExceeded = "Time limit exceeded"

// Status classifies a run for display.
type Status int

const (
	StatusPassed Status = iota
	StatusWrongAnswer
	StatusCompileError
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusWrongAnswer:
		return "wrong answer"
	case StatusCompileError:
		return "compile error"
	case StatusTimeout:
		return "timeout"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of one run.
type Result struct {
	Compiled bool
	TimedOut bool
	Stdout   string
	Stderr   string
	Passed   bool

	// Judged reports whether Passed is a verdict rather than a default,
	// i.e. the service sent "passed" or the result came from Grade.
	Judged bool

	// Output is the message to show the user.
	Output string
}

// Judge returns r unchanged when it already carries a verdict, and
// otherwise grades its raw process results against expected.
func (r Result) Judge(expected string) Result {
	if r.Judged {
		return r
	}
	return Grade(expected, r.Compiled, r.TimedOut, r.Stdout, r.Stderr)
}

// Status classifies the result. A timeout wins over a compile failure.
func (r Result) Status() Status {
	switch {
	case r.TimedOut:
		return StatusTimeout
	case !r.Compiled:
		return StatusCompileError
	case r.Passed:
		return StatusPassed
	}
	return StatusWrongAnswer
}

// Grade judges raw process results against the expected output. A run
// passes when it compiled, did not time out and its stdout equals expected
// once trailing whitespace is trimmed from both.
func Grade(expected string, compiled, timedOut bool, stdout, stderr string) Result {
	r := Result{
		Compiled: compiled,
		TimedOut: timedOut,
		Stdout:   stdout,
		Stderr:   stderr,
		Judged:   true,
	}
	switch {
	case timedOut:
		r.Output = TimeLimitExceeded
	case !compiled:
		r.Output = stderr
	default:
		r.Passed = trimEnd(stdout) == trimEnd(expected)
		r.Output = stdout + stderr
	}
	return r
}

func trimEnd(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// ParseResult decodes a service reply. Field names may be snake_case or
// camelCase. A missing or empty output falls back to stdout followed by
// stderr. A reply without "passed" is left unjudged; see Result.Judge.
func ParseResult(data []byte) (Result, error) {
	if !gjson.ValidBytes(data) {
		return Result{}, ErrInvalidResult
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Result{}, fmt.Errorf("%w: expected object", ErrInvalidResult)
	}

	r := Result{
		Compiled: root.Get("compiled").Bool(),
		TimedOut: first(root, "timed_out", "timedOut").Bool(),
		Stdout:   root.Get("stdout").String(),
		Stderr:   root.Get("stderr").String(),
		Output:   root.Get("output").String(),
	}
	if v := root.Get("passed"); v.Exists() && v.Type != gjson.Null {
		r.Passed = v.Bool()
		r.Judged = true
	}
	if r.Output == "" {
		r.Output = r.Stdout + r.Stderr
	}
	return r, nil
}

func first(root gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := root.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}
