package guard

import "github.com/pmezard/go-difflib/difflib"

// ChangesFromDiff derives the pre-edit line spans that turn oldText into
// newText. Replaced and deleted runs map to their old lines. A pure insertion
// between old lines g and g+1 has no old lines of its own; it is attributed to
// g+1 when that line is inside w, else to g when that line is, else to g+1
// (or the last line when inserting at the end).
//
// An inserted run that repeats its neighbors can be aligned at several gaps.
// The insertion is slid across the adjacent equal runs and placed at the
// first gap whose anchor lies inside w, so the verdict does not depend on
// which alignment the matcher happened to pick.
func ChangesFromDiff(oldText, newText string, w Window) []Change {
	if oldText == newText {
		return nil
	}
	a, b := SplitLines(oldText), SplitLines(newText)
	ops := difflib.NewMatcherWithJunk(a, b, false, nil).GetOpCodes()

	var changes []Change
	for i, op := range ops {
		switch op.Tag {
		case 'r', 'd':
			changes = append(changes, Change{StartLine: op.I1 + 1, EndLine: op.I2})
		case 'i':
			line := insertionAnchor(insertionGap(a, b, ops, i, w), len(a), w)
			changes = append(changes, Change{StartLine: line, EndLine: line})
		}
	}
	return changes
}

// insertionGap returns the gap in a at which the insertion ops[i] is
// attributed. It tries the matcher's gap, then slides up through a preceding
// equal run and down through a following one while the shifted insertion
// yields the same text.
func insertionGap(a, b []string, ops []difflib.OpCode, i int, w Window) int {
	op := ops[i]
	total := len(a)
	if w.Contains(insertionAnchor(op.I1, total, w)) {
		return op.I1
	}

	if i > 0 && ops[i-1].Tag == 'e' {
		n := ops[i-1].I2 - ops[i-1].I1
		for k := 1; k <= n && a[op.I1-k] == b[op.J2-k]; k++ {
			if w.Contains(insertionAnchor(op.I1-k, total, w)) {
				return op.I1 - k
			}
		}
	}
	if i+1 < len(ops) && ops[i+1].Tag == 'e' {
		n := ops[i+1].I2 - ops[i+1].I1
		for k := 1; k <= n && a[op.I1+k-1] == b[op.J1+k-1]; k++ {
			if w.Contains(insertionAnchor(op.I1+k, total, w)) {
				return op.I1 + k
			}
		}
	}
	return op.I1
}

func insertionAnchor(gap, total int, w Window) int {
	after, before := gap+1, gap
	if after <= total && w.Contains(after) {
		return after
	}
	if before >= 1 && w.Contains(before) {
		return before
	}
	if after > total {
		return total
	}
	return after
}
