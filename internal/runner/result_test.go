package runner

import (
	"errors"
	"testing"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		compiled bool
		timedOut bool
		stdout   string
		stderr   string
		passed   bool
		output   string
		status   Status
	}{
		{"exact", "hi\n", true, false, "hi\n", "", true, "hi\n", StatusPassed},
		{"trailing whitespace ignored", "hi", true, false, "hi \n\n", "", true, "hi \n\n", StatusPassed},
		{"leading whitespace matters", "hi", true, false, " hi", "", false, " hi", StatusWrongAnswer},
		{"warnings appended", "hi", true, false, "hi\n", "warning: x\n", true, "hi\nwarning: x\n", StatusPassed},
		{"wrong", "hi", true, false, "bye", "", false, "bye", StatusWrongAnswer},
		{"compile error", "hi", false, false, "", "error[E0382]", false, "error[E0382]", StatusCompileError},
		{"timeout", "hi", true, true, "hi", "", false, TimeLimitExceeded, StatusTimeout},
		{"timeout before compile", "hi", false, true, "", "boom", false, TimeLimitExceeded, StatusTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Grade(tt.expected, tt.compiled, tt.timedOut, tt.stdout, tt.stderr)
			if r.Passed != tt.passed {
				t.Errorf("Passed = %v, want %v", r.Passed, tt.passed)
			}
			if r.Output != tt.output {
				t.Errorf("Output = %q, want %q", r.Output, tt.output)
			}
			if r.Status() != tt.status {
				t.Errorf("Status() = %v, want %v", r.Status(), tt.status)
			}
		})
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Result
	}{
		{
			name: "snake case",
			data: `{"compiled":true,"timed_out":false,"stdout":"a","stderr":"b","passed":true,"output":"ab"}`,
			want: Result{Compiled: true, Stdout: "a", Stderr: "b", Passed: true, Judged: true, Output: "ab"},
		},
		{
			name: "camel case timeout",
			data: `{"compiled":true,"timedOut":true,"output":"Time limit exceeded"}`,
			want: Result{Compiled: true, TimedOut: true, Output: TimeLimitExceeded},
		},
		{
			name: "output fallback",
			data: `{"compiled":false,"stdout":"x","stderr":"err"}`,
			want: Result{Stdout: "x", Stderr: "err", Output: "xerr"},
		},
		{
			name: "null snake falls back to camel",
			data: `{"timed_out":null,"timedOut":true}`,
			want: Result{TimedOut: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult([]byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseResult() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResultJudge(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		status Status
		output string
	}{
		{"service verdict kept", `{"compiled":true,"stdout":"bye","passed":true}`, StatusPassed, "bye"},
		{"explicit false kept", `{"compiled":true,"stdout":"hi","passed":false}`, StatusWrongAnswer, "hi"},
		{"graded when missing", `{"compiled":true,"stdout":"hi\n"}`, StatusPassed, "hi\n"},
		{"graded wrong answer", `{"compiled":true,"stdout":"bye"}`, StatusWrongAnswer, "bye"},
		{"null passed is missing", `{"compiled":true,"stdout":"hi","passed":null}`, StatusPassed, "hi"},
		{"graded timeout", `{"compiled":true,"timed_out":true,"stdout":"hi"}`, StatusTimeout, TimeLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseResult([]byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			got := r.Judge("hi")
			if got.Status() != tt.status || got.Output != tt.output || !got.Judged {
				t.Errorf("Judge() = %+v, want %v with output %q", got, tt.status, tt.output)
			}
		})
	}
}

func TestParseResultInvalid(t *testing.T) {
	for _, data := range []string{``, `{`, `[1]`, `"ok"`} {
		if _, err := ParseResult([]byte(data)); !errors.Is(err, ErrInvalidResult) {
			t.Errorf("ParseResult(%q) error = %v", data, err)
		}
	}
}

func TestStatusString(t *testing.T) {
	if StatusCompileError.String() != "compile error" || Status(9).String() != "Status(9)" {
		t.Error("unexpected status names")
	}
}
