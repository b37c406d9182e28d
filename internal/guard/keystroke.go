package guard

import (
	"unicode"

	"github.com/dshills/fenceline/internal/input/key"
)

// Cursor is a 1-indexed caret position.
type Cursor struct {
	Line   int
	Column int
}

// IsPotentiallyMutating reports whether a keystroke can change buffer content.
//
// Navigation keys never mutate. Paste, cut, undo and redo chords and the
// structural keys (Backspace, Delete, Enter, Tab) do. A printable character
// without Ctrl, Alt or Meta does. Anything else does not.
func IsPotentiallyMutating(ev key.Event) bool {
	if ev.Key.IsNavigationKey() {
		return false
	}
	switch ev.Key {
	case key.KeyBackspace, key.KeyDelete, key.KeyEnter, key.KeyKPEnter, key.KeyTab:
		return true
	case key.KeyInsert:
		// Shift+Insert pastes.
		return ev.Modifiers.HasShift()
	}
	if ev.Modifiers.HasCtrl() || ev.Modifiers.HasMeta() {
		return isEditChord(ev)
	}
	if ev.Modifiers.HasAlt() {
		return false
	}
	if ev.Key == key.KeySpace {
		return true
	}
	return ev.IsChar()
}

// isEditChord matches Ctrl/Meta + V, X, Z, Y.
func isEditChord(ev key.Event) bool {
	if ev.Key != key.KeyRune {
		return false
	}
	switch unicode.ToLower(ev.Rune) {
	case 'v', 'x', 'z', 'y':
		return true
	}
	return false
}

// ShouldSuppress reports whether a keystroke at cur must be dropped before it
// reaches the document. It rejects mutating keys outside the window and
// Backspace at column 1 of the first editable line, which would join that
// line onto the protected prefix. Session enforcement still applies to
// anything that gets through.
func (s *Session) ShouldSuppress(ev key.Event, cur Cursor) bool {
	if !s.window.Contains(cur.Line) && IsPotentiallyMutating(ev) {
		return true
	}
	return ev.Key == key.KeyBackspace && cur.Line == s.window.Start && cur.Column == 1
}
