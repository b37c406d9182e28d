// Package key provides the key event model consumed by the keystroke filter.
//
// This package defines:
//
//   - Key: identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: modifier keys (Ctrl, Alt, Shift, Meta)
//   - Event: a single key press with modifiers and timestamp
//
// Events come from three sources: key specifications ("Ctrl+V", "<C-v>",
// "Backspace") parsed with Parse, terminal events converted with FromTcell,
// and browser KeyboardEvent.key names converted with FromDOM.
package key
