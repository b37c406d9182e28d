package guard

import (
	"fmt"

	"github.com/google/uuid"
)

// State is the edit guard state.
type State uint8

const (
	// StateIdle means the session is waiting for user edits.
	StateIdle State = iota
	// StateRestoring means a rollback write is in progress. Change
	// notifications received in this state are ignored.
	StateRestoring
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}

// Verdict reports what OnContentChanged did with a notification.
type Verdict uint8

const (
	// VerdictIgnored means the notification arrived while restoring.
	VerdictIgnored Verdict = iota
	// VerdictAccepted means the edit was committed to the snapshot.
	VerdictAccepted
	// VerdictRejected means the document was rolled back to the snapshot.
	VerdictRejected
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictIgnored:
		return "ignored"
	case VerdictAccepted:
		return "accepted"
	case VerdictRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Change is the pre-edit line span touched by one edit, 1-indexed and inclusive.
type Change struct {
	StartLine int
	EndLine   int
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	return fmt.Sprintf("lines %d-%d", c.StartLine, c.EndLine)
}

// Document is the editor-owned text the guard protects. SetText may
// synchronously re-enter the session with a change notification.
type Document interface {
	Text() string
	SetText(text string)
}

// Stats counts the verdicts of a session.
type Stats struct {
	Accepted int
	Rejected int
	Ignored  int
}

// Session is the guard for one loaded exercise. It aggregates the document,
// the fixed blocks, the editable window, the snapshot and the state flag.
// All of them are set together in NewSession before any edit is accepted.
type Session struct {
	id       string
	doc      Document
	computer *Computer
	blocks   Blocks
	window   Window
	snapshot string
	state    State
	stats    Stats
}

// NewSession creates a session whose snapshot is the current document text.
func NewSession(doc Document, blocks Blocks, opts ...Option) (*Session, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	s := &Session{
		id:       uuid.New().String(),
		doc:      doc,
		computer: NewComputer(opts...),
		blocks:   blocks,
		state:    StateIdle,
	}
	s.commit(doc.Text())
	return s, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Window returns the current editable window.
func (s *Session) Window() Window { return s.window }

// Snapshot returns the last known-good text.
func (s *Session) Snapshot() string { return s.snapshot }

// Blocks returns the fixed blocks the session matches against.
func (s *Session) Blocks() Blocks { return s.blocks }

// Options returns the window computation options.
func (s *Session) Options() Options { return s.computer.Options() }

// Stats returns verdict counters.
func (s *Session) Stats() Stats { return s.stats }

// Load replaces the document content wholesale, e.g. on exercise reset.
// The echo notification of the write is ignored.
func (s *Session) Load(text string) {
	s.write(text)
	s.commit(s.doc.Text())
}

// OnContentChanged validates the changes the document just applied. If any
// change reaches outside the window the whole edit is rolled back.
func (s *Session) OnContentChanged(changes []Change) Verdict {
	if s.state == StateRestoring {
		s.stats.Ignored++
		return VerdictIgnored
	}
	for _, c := range changes {
		if !s.window.ContainsRange(c.StartLine, c.EndLine) {
			s.restore()
			s.stats.Rejected++
			return VerdictRejected
		}
	}
	s.commit(s.doc.Text())
	s.stats.Accepted++
	return VerdictAccepted
}

// OnTextReplaced validates a document whose new full text is known but whose
// individual edits are not. Changes are derived by diffing against the snapshot.
func (s *Session) OnTextReplaced(text string) Verdict {
	if s.state == StateRestoring {
		s.stats.Ignored++
		return VerdictIgnored
	}
	return s.OnContentChanged(ChangesFromDiff(s.snapshot, text, s.window))
}

// WindowText returns the snapshot lines inside the window.
func (s *Session) WindowText() string {
	return s.window.Text(s.snapshot)
}

// UsesToken reports whether token appears in the user-authored region.
func (s *Session) UsesToken(token string) bool {
	return ContainsToken(s.WindowText(), token)
}

func (s *Session) restore() {
	s.write(s.snapshot)
	s.window = s.computer.ComputeBlocks(s.snapshot, s.blocks)
}

func (s *Session) write(text string) {
	s.state = StateRestoring
	defer func() { s.state = StateIdle }()
	s.doc.SetText(text)
}

func (s *Session) commit(text string) {
	s.snapshot = text
	s.window = s.computer.ComputeBlocks(text, s.blocks)
}
