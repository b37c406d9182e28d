package buffer

// Snapshot is a read-only view of a buffer at one revision.
type Snapshot struct {
	text       string
	lineStarts []int
	revisionID RevisionID
}

// Text returns the full snapshot content.
func (s *Snapshot) Text() string {
	return s.text
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return len(s.lineStarts)
}

// LineText returns the text of a 0-indexed line without its newline.
func (s *Snapshot) LineText(line int) string {
	if line < 0 || line >= len(s.lineStarts) {
		return ""
	}
	end := len(s.text)
	if line+1 < len(s.lineStarts) {
		end = s.lineStarts[line+1] - 1
	}
	return s.text[s.lineStarts[line]:end]
}

// RevisionID returns the revision this snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}
