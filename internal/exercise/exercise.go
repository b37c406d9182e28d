package exercise

import (
	"fmt"
	"strings"

	"github.com/dshills/fenceline/internal/guard"
)

// EmptyStarter replaces a missing starter program.
const EmptyStarter = "// starter code is empty\n"

// Exercise is one problem definition.
type Exercise struct {
	ID             int64  `toml:"id"`
	Slug           string `toml:"slug"`
	Title          string `toml:"title"`
	Description    string `toml:"description"`
	StarterCode    string `toml:"starter_code"`
	ExpectedStdout string `toml:"expected_stdout"`

	// FixedTop and FixedBottom are the literal protected blocks. Either may
	// be empty, in which case the guard falls back to its heuristics.
	FixedTop    string `toml:"fixed_top"`
	FixedBottom string `toml:"fixed_bottom"`

	// Per-exercise overrides of the guard defaults; nil means unset.
	TopLockLines   *int    `toml:"top_lock_lines"`
	BottomSentinel *string `toml:"bottom_sentinel"`

	// RequiredToken must appear in the editable window for a solution to
	// count. CheckScript is an optional Lua grading script.
	RequiredToken string `toml:"required_token"`
	CheckScript   string `toml:"check_script"`
}

// DecodeText strips a leading byte order mark and converts CRLF to LF. If
// the result holds no real newline, literal "\r\n" and "\n" escape sequences
// are unescaped, since some stores save the text double-escaped.
func DecodeText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.Contains(s, "\n") {
		s = strings.ReplaceAll(s, `\r\n`, "\n")
		s = strings.ReplaceAll(s, `\n`, "\n")
	}
	return s
}

// decode runs the program text fields through DecodeText. Scripts and
// expected output are kept verbatim, since a literal \n inside them is
// meaningful.
func (e *Exercise) decode() {
	for _, f := range []*string{&e.StarterCode, &e.FixedTop, &e.FixedBottom} {
		*f = DecodeText(*f)
	}
}

// validateID rejects identifiers the catalog cannot key on. Zero is treated
// as missing, since TOML cannot tell an absent id from id = 0.
func validateID(id int64) error {
	switch {
	case id == 0:
		return ErrMissingID
	case id < 0:
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return nil
}

// Starter returns the program loaded into the editor.
func (e *Exercise) Starter() string {
	if e.StarterCode == "" {
		return EmptyStarter
	}
	return e.StarterCode
}

// Options applies the exercise overrides on top of base.
func (e *Exercise) Options(base guard.Options) guard.Options {
	opts := base
	if e.TopLockLines != nil && *e.TopLockLines >= 0 {
		opts.TopLockLines = *e.TopLockLines
	}
	if e.BottomSentinel != nil {
		opts.BottomSentinel = *e.BottomSentinel
	}
	return opts
}

// LiteralBlocks returns only the protected blocks the exercise defines.
// Sessions are built from these so that missing blocks use the window
// fallbacks.
func (e *Exercise) LiteralBlocks() guard.Blocks {
	return guard.NewBlocks(e.FixedTop, e.FixedBottom)
}

// Blocks returns the protected blocks for display. A missing top block is
// synthesized from the first TopLockLines starter lines. A missing bottom
// block is synthesized from the lines after the first sentinel line, which
// itself stays editable. Without a sentinel line the bottom block is empty.
func (e *Exercise) Blocks(base guard.Options) guard.Blocks {
	opts := e.Options(base)
	lines := strings.Split(e.Starter(), "\n")

	top := e.FixedTop
	if top == "" {
		n := min(opts.TopLockLines, len(lines))
		top = strings.Join(lines[:n], "\n")
	}
	bottom := e.FixedBottom
	if bottom == "" && opts.BottomSentinel != "" {
		for i, l := range lines {
			if strings.Contains(l, opts.BottomSentinel) {
				bottom = strings.Join(lines[i+1:], "\n")
				break
			}
		}
	}
	return guard.NewBlocks(top, bottom)
}
