package buffer

import "fmt"

// Edit replaces Range with NewText.
type Edit struct {
	Range   PointRange
	NewText string
}

// NewInsert creates an Edit that inserts text at a point.
func NewInsert(at Point, text string) Edit {
	return Edit{Range: PointRange{Start: at, End: at}, NewText: text}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end Point) Edit {
	return Edit{Range: PointRange{Start: start, End: end}}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%s, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range)
	}
	return fmt.Sprintf("Replace%s with %q", e.Range, e.NewText)
}

// Change describes one applied edit. Range is in coordinates of the text
// before the edit.
type Change struct {
	Range   PointRange
	Text    string
	OldText string
}

// ContentChange is delivered to listeners after every mutation.
type ContentChange struct {
	Changes    []Change
	Full       bool
	OldText    string
	RevisionID RevisionID
}

// Listener observes buffer mutations.
type Listener func(ContentChange)
