package buffer

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrPointOutOfRange = errors.New("point out of range")
	ErrRangeInvalid    = errors.New("invalid range")
	ErrEditsOverlap    = errors.New("edits overlap or are not in reverse order")
)

// Buffer is a line-indexed text buffer.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []int
	revisionID RevisionID

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	b := &Buffer{
		revisionID: NewRevisionID(),
		listeners:  make(map[int]Listener),
	}
	b.reindex()
	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string) *Buffer {
	b := NewBuffer()
	b.text = normalizeLineEndings(s)
	b.reindex()
	return b
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// reindex rebuilds lineStarts. Caller holds mu for writing.
func (b *Buffer) reindex() {
	b.lineStarts = b.lineStarts[:0]
	b.lineStarts = append(b.lineStarts, 0)
	for i := 0; i < len(b.text); i++ {
		if b.text[i] == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
}

// Read Operations

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lineStarts)
}

// LineText returns the text of a 0-indexed line without its newline, or ""
// if the line does not exist.
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if line < 0 || line >= len(b.lineStarts) {
		return ""
	}
	return b.text[b.lineStarts[line]:b.lineEnd(line)]
}

// lineEnd returns the offset of the end of line, before its newline.
func (b *Buffer) lineEnd(line int) int {
	if line+1 < len(b.lineStarts) {
		return b.lineStarts[line+1] - 1
	}
	return len(b.text)
}

// offset converts a point to a byte offset. Caller holds mu.
func (b *Buffer) offset(p Point) (int, error) {
	if p.Line < 0 || p.Line >= len(b.lineStarts) || p.Column < 0 {
		return 0, ErrPointOutOfRange
	}
	start := b.lineStarts[p.Line]
	if start+p.Column > b.lineEnd(p.Line) {
		return 0, ErrPointOutOfRange
	}
	return start + p.Column, nil
}

// Write Operations

// Insert inserts text at the given point.
func (b *Buffer) Insert(at Point, text string) error {
	return b.ApplyEdit(NewInsert(at, text))
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end Point) error {
	return b.ApplyEdit(NewDelete(start, end))
}

// Replace replaces text in the given range with new text.
func (b *Buffer) Replace(start, end Point, text string) error {
	return b.ApplyEdit(Edit{Range: PointRange{Start: start, End: end}, NewText: text})
}

// ApplyEdit applies a single edit and notifies listeners.
func (b *Buffer) ApplyEdit(edit Edit) error {
	return b.ApplyEdits([]Edit{edit})
}

// ApplyEdits applies multiple edits atomically and reports them as one
// ContentChange. Edits must be in reverse order (highest position first) and
// must not overlap, so each range stays valid in pre-edit coordinates.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	for i := 1; i < len(edits); i++ {
		if edits[i-1].Range.Start.Before(edits[i].Range.End) {
			return ErrEditsOverlap
		}
	}

	b.mu.Lock()
	type span struct{ start, end int }
	spans := make([]span, len(edits))
	for i, e := range edits {
		if !e.Range.IsValid() {
			b.mu.Unlock()
			return ErrRangeInvalid
		}
		start, err := b.offset(e.Range.Start)
		if err != nil {
			b.mu.Unlock()
			return err
		}
		end, err := b.offset(e.Range.End)
		if err != nil {
			b.mu.Unlock()
			return err
		}
		spans[i] = span{start, end}
	}

	old := b.text
	changes := make([]Change, 0, len(edits))
	text := old
	for i, e := range edits {
		s := spans[i]
		newText := normalizeLineEndings(e.NewText)
		changes = append(changes, Change{
			Range:   e.Range,
			Text:    newText,
			OldText: old[s.start:s.end],
		})
		text = text[:s.start] + newText + text[s.end:]
	}
	b.text = text
	b.reindex()
	b.revisionID = NewRevisionID()
	cc := ContentChange{Changes: changes, OldText: old, RevisionID: b.revisionID}
	b.mu.Unlock()

	b.notify(cc)
	return nil
}

// SetText replaces the whole content and reports a full change. Setting the
// current text again is a no-op.
func (b *Buffer) SetText(text string) {
	text = normalizeLineEndings(text)

	b.mu.Lock()
	if text == b.text {
		b.mu.Unlock()
		return
	}
	old := b.text
	b.text = text
	b.reindex()
	b.revisionID = NewRevisionID()
	cc := ContentChange{Full: true, OldText: old, RevisionID: b.revisionID}
	b.mu.Unlock()

	b.notify(cc)
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// Snapshot returns a read-only snapshot of the current buffer state.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{
		text:       b.text,
		lineStarts: append([]int(nil), b.lineStarts...),
		revisionID: b.revisionID,
	}
}

// Listeners

// OnChange registers fn to be called after every mutation. The returned
// function unregisters it.
func (b *Buffer) OnChange(fn Listener) func() {
	b.lmu.Lock()
	defer b.lmu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.lmu.Lock()
		defer b.lmu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *Buffer) notify(cc ContentChange) {
	b.lmu.Lock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.listeners[id])
	}
	b.lmu.Unlock()

	for _, fn := range fns {
		fn(cc)
	}
}
