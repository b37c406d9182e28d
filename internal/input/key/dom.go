package key

import (
	"time"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// domKeys maps KeyboardEvent.key values to keys.
var domKeys = map[string]Key{
	"Escape":      KeyEscape,
	"Enter":       KeyEnter,
	"Tab":         KeyTab,
	"Backspace":   KeyBackspace,
	"Delete":      KeyDelete,
	"Insert":      KeyInsert,
	"Home":        KeyHome,
	"End":         KeyEnd,
	"PageUp":      KeyPageUp,
	"PageDown":    KeyPageDown,
	"ArrowUp":     KeyUp,
	"ArrowDown":   KeyDown,
	"ArrowLeft":   KeyLeft,
	"ArrowRight":  KeyRight,
	"Pause":       KeyPause,
	"PrintScreen": KeyPrintScreen,
	"CapsLock":    KeyCapsLock,
	"F1":          KeyF1,
	"F2":          KeyF2,
	"F3":          KeyF3,
	"F4":          KeyF4,
	"F5":          KeyF5,
	"F6":          KeyF6,
	"F7":          KeyF7,
	"F8":          KeyF8,
	"F9":          KeyF9,
	"F10":         KeyF10,
	"F11":         KeyF11,
	"F12":         KeyF12,
}

// FromDOM converts a browser KeyboardEvent.key value. A value that is a
// single user-perceived character (one grapheme cluster, possibly several
// code points such as "é") becomes a rune event carrying its first
// rune. Unknown named keys ("Shift", "Dead", "Unidentified") map to KeyNone.
func FromDOM(name string, mods Modifier) Event {
	ev := Event{Modifiers: mods, Timestamp: time.Now()}
	if k, ok := domKeys[name]; ok {
		ev.Key = k
		return ev
	}
	if name != "" && uniseg.GraphemeClusterCount(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		ev.Key = KeyRune
		ev.Rune = r
		return ev
	}
	ev.Key = KeyNone
	return ev
}
