package grade

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/fenceline/internal/exercise"
	"github.com/dshills/fenceline/internal/guard"
)

// DefaultTimeout bounds one check script run.
const DefaultTimeout = 2 * time.Second

// Report is the outcome of the extra checks for one solution.
type Report struct {
	TokenRequired string
	TokenUsed     bool

	CheckRan     bool
	CheckPassed  bool
	CheckMessage string
}

// Passed reports whether every configured check succeeded.
func (r Report) Passed() bool {
	if r.TokenRequired != "" && !r.TokenUsed {
		return false
	}
	return !r.CheckRan || r.CheckPassed
}

// Checker evaluates the token requirement and check script of an exercise.
type Checker struct {
	timeout time.Duration
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithTimeout bounds each script run.
func WithTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewChecker creates a Checker.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check grades windowText, the editable window of a solution to ex. The
// token check always completes; a script error is returned alongside the
// partial report.
func (c *Checker) Check(ctx context.Context, ex *exercise.Exercise, windowText string) (Report, error) {
	r := Report{TokenRequired: strings.TrimSpace(ex.RequiredToken)}
	if r.TokenRequired != "" {
		r.TokenUsed = guard.ContainsToken(windowText, r.TokenRequired)
	}
	if strings.TrimSpace(ex.CheckScript) == "" {
		return r, nil
	}

	passed, msg, err := c.run(ctx, ex.CheckScript, windowText)
	if err != nil {
		return r, err
	}
	r.CheckRan = true
	r.CheckPassed = passed
	r.CheckMessage = msg
	return r, nil
}

// run executes script in a fresh state and calls check(solution).
func (c *Checker) run(ctx context.Context, script, solution string) (bool, string, error) {
	L := newState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	L.SetContext(ctx)

	fail := func(err error) (bool, string, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, "", fmt.Errorf("%w: %w", ErrScript, ctxErr)
		}
		return false, "", fmt.Errorf("%w: %v", ErrScript, err)
	}

	if err := L.DoString(script); err != nil {
		return fail(err)
	}
	fn, ok := L.GetGlobal("check").(*lua.LFunction)
	if !ok {
		return false, "", ErrNoCheckFunction
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 2, Protect: true}, lua.LString(solution)); err != nil {
		return fail(err)
	}

	ret, msg := L.Get(-2), L.Get(-1)
	L.Pop(2)

	var message string
	if msg != lua.LNil {
		message = msg.String()
	}
	return lua.LVAsBool(ret), message, nil
}
