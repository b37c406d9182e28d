package guard

import (
	"strings"
	"unicode"
)

// DefaultTabWidth is the number of spaces a tab expands to during comparison.
const DefaultTabWidth = 2

// NormalizeLine returns the comparison form of a line: CRLF becomes LF, tabs
// expand to DefaultTabWidth spaces and trailing whitespace is removed.
// The buffer text itself is never rewritten.
func NormalizeLine(line string) string {
	return normalizeLine(line, DefaultTabWidth)
}

func normalizeLine(line string, tabWidth int) string {
	line = strings.ReplaceAll(line, "\r\n", "\n")
	if strings.IndexByte(line, '\t') >= 0 {
		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
	}
	return strings.TrimRightFunc(line, unicode.IsSpace)
}

func normalizeLines(lines []string, tabWidth int) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = normalizeLine(l, tabWidth)
	}
	return out
}

// SplitLines splits text on LF. The result always has at least one element.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// BlockLines converts a block of text into reference lines.
// Empty text yields a nil (empty) block.
func BlockLines(text string) []string {
	if text == "" {
		return nil
	}
	return SplitLines(strings.ReplaceAll(text, "\r\n", "\n"))
}
