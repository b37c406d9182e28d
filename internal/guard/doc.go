// Package guard protects the immutable regions of a program template while a
// user edits the solution region between them.
//
// A template is a buffer with a fixed prefix block and a fixed suffix block.
// Everything between the two is the editable window. The package provides:
//
//   - NormalizeLine: canonical form of a line for comparisons only
//   - FindTop / FindBottom: block matching, first and last occurrence
//   - Computer: derivation of the editable Window from buffer text
//   - Session: the edit guard state machine holding the last good snapshot
//   - IsPotentiallyMutating: keystroke classification for pre-emptive rejection
//   - ContainsToken: lexical presence check restricted to the window
//
// # Windows
//
// A Window is a 1-indexed, inclusive line range [Start, End]. An empty window
// is always represented as End == Start-1; Compute never returns an inverted
// range wider than that.
//
// # Fallbacks
//
// When the fixed top block is absent, the first TopLockLines lines are locked.
// When it is present it always wins over TopLockLines, even if the block is
// found at an offset that disagrees with the configured count. When the fixed
// bottom block is absent, the first line containing BottomSentinel bounds the
// window from below: End is that line's number. An unmatched block leaves the
// corresponding default boundary in place.
//
// # Session state machine
//
// A Session is Idle while it waits for change notifications and Restoring while
// it writes the snapshot back into the document. Notifications delivered while
// Restoring are ignored; this is how the document's echo of the guard's own
// corrective write is absorbed. After OnContentChanged returns, the snapshot
// equals the document text and the window is derived from the snapshot.
//
// A Session is not safe for concurrent use. It is driven from the single event
// loop that owns the editor document.
package guard
