package guard

// NotFound is returned by the block matchers when no run matches.
const NotFound = -1

// FindTop returns the 0-indexed start of the first run of lines equal to block
// under NormalizeLine, or NotFound. An empty block is never found.
func FindTop(lines, block []string) int {
	return indexBlock(normalizeLines(lines, DefaultTabWidth), normalizeLines(block, DefaultTabWidth))
}

// FindBottom is like FindTop but returns the last (highest index) match.
func FindBottom(lines, block []string) int {
	return lastIndexBlock(normalizeLines(lines, DefaultTabWidth), normalizeLines(block, DefaultTabWidth))
}

// indexBlock and lastIndexBlock expect already normalized input.
func indexBlock(lines, block []string) int {
	n, m := len(lines), len(block)
	if m == 0 {
		return NotFound
	}
	for i := 0; i+m <= n; i++ {
		if matchAt(lines, block, i) {
			return i
		}
	}
	return NotFound
}

func lastIndexBlock(lines, block []string) int {
	n, m := len(lines), len(block)
	if m == 0 {
		return NotFound
	}
	for i := n - m; i >= 0; i-- {
		if matchAt(lines, block, i) {
			return i
		}
	}
	return NotFound
}

func matchAt(lines, block []string, at int) bool {
	for j := range block {
		if lines[at+j] != block[j] {
			return false
		}
	}
	return true
}
