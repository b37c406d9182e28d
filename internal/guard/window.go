package guard

import (
	"fmt"
	"strings"
)

// Window is a 1-indexed inclusive line range. End < Start means empty.
type Window struct {
	Start int
	End   int
}

// String returns a human-readable representation of the window.
func (w Window) String() string {
	return fmt.Sprintf("[%d,%d]", w.Start, w.End)
}

// IsEmpty returns true if the window covers no lines.
func (w Window) IsEmpty() bool {
	return w.End < w.Start
}

// Len returns the number of lines in the window.
func (w Window) Len() int {
	if w.IsEmpty() {
		return 0
	}
	return w.End - w.Start + 1
}

// Contains returns true if the 1-indexed line lies inside the window.
func (w Window) Contains(line int) bool {
	return line >= w.Start && line <= w.End
}

// ContainsRange returns true if every line of [start, end] lies inside the window.
func (w Window) ContainsRange(start, end int) bool {
	return start >= w.Start && end <= w.End
}

// Text returns the lines of text spanned by the window, joined with LF.
func (w Window) Text(text string) string {
	if w.IsEmpty() {
		return ""
	}
	lines := SplitLines(text)
	start, end := w.Start, w.End
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}

// Blocks holds the reference lines of the fixed top and bottom blocks.
// Either may be empty, in which case the fallback heuristics apply.
type Blocks struct {
	Top    []string
	Bottom []string
}

// NewBlocks builds Blocks from literal block text.
func NewBlocks(top, bottom string) Blocks {
	return Blocks{Top: BlockLines(top), Bottom: BlockLines(bottom)}
}

// Computer derives editable windows. It holds no per-buffer state, so
// Compute is a pure function of its arguments and the options.
type Computer struct {
	opts Options
}

// NewComputer creates a Computer with DefaultOptions modified by opts.
func NewComputer(opts ...Option) *Computer {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Computer{opts: o}
}

// Options returns the options in effect.
func (c *Computer) Options() Options {
	return c.opts
}

var defaultComputer = NewComputer()

// Compute derives the editable window with DefaultOptions.
func Compute(text string, top, bottom []string) Window {
	return defaultComputer.Compute(text, top, bottom)
}

// Compute derives the editable window of text given the fixed blocks.
func (c *Computer) Compute(text string, top, bottom []string) Window {
	lines := SplitLines(text)
	total := len(lines)
	norm := normalizeLines(lines, c.opts.TabWidth)

	start := min(c.opts.TopLockLines+1, total)
	end := total

	// A literal top block takes precedence over TopLockLines.
	if len(top) > 0 {
		if t := indexBlock(norm, normalizeLines(top, c.opts.TabWidth)); t != NotFound {
			start = min(t+len(top)+1, total)
		}
	}

	if len(bottom) > 0 {
		if b := lastIndexBlock(norm, normalizeLines(bottom, c.opts.TabWidth)); b != NotFound {
			end = max(1, b)
		}
	} else {
		end = c.sentinelLine(lines, total)
	}

	if start > end {
		start = min(start, total)
		end = start - 1
	}
	return Window{Start: start, End: end}
}

// ComputeBlocks is Compute with the blocks bundled.
func (c *Computer) ComputeBlocks(text string, b Blocks) Window {
	return c.Compute(text, b.Top, b.Bottom)
}

// sentinelLine returns the 1-indexed line of the first sentinel occurrence,
// or total when there is none.
func (c *Computer) sentinelLine(lines []string, total int) int {
	if c.opts.BottomSentinel == "" {
		return total
	}
	for i, l := range lines {
		if strings.Contains(l, c.opts.BottomSentinel) {
			return max(1, i+1)
		}
	}
	return total
}
