// internal/agent/match/similarity.go
package match

// Ratio computes a similarity score in [0,1] for two strings: twice the
// number of matched characters divided by the total length. Matches are
// found by recursively taking the longest common contiguous block, then
// matching the pieces to its left and right. Equal strings score 1, fully
// disjoint strings score 0.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	total := len(a) + len(b)
	if total == 0 {
		return 0.0
	}
	matched := matchingBlocks([]byte(a), []byte(b))
	return 2.0 * float64(matched) / float64(total)
}

// matchingBlocks returns the total size of matched blocks between a and b.
func matchingBlocks(a, b []byte) int {
	size, ai, bi := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	left := matchingBlocks(a[:ai], b[:bi])
	right := matchingBlocks(a[ai+size:], b[bi+size:])
	return left + size + right
}

// longestCommonBlock finds the longest common contiguous substring,
// preferring the earliest occurrence in a, then in b.
func longestCommonBlock(a, b []byte) (size, ai, bi int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// lengths[j] holds the length of the common suffix ending at a[i], b[j]
	// for the current row i.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				cur[j+1] = prev[j] + 1
				if cur[j+1] > size {
					size = cur[j+1]
					ai = i - size + 1
					bi = j - size + 1
				}
			} else {
				cur[j+1] = 0
			}
		}
		prev, cur = cur, prev
	}
	return size, ai, bi
}

// ClosestMatch returns the candidate most similar to term with a ratio of
// at least cutoff, or "" if none qualifies. Ties keep the earliest
// candidate.
func ClosestMatch(term string, candidates []string, cutoff float64) string {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		r := Ratio(term, c)
		if r >= cutoff && r > bestScore {
			best = c
			bestScore = r
		}
	}
	return best
}
