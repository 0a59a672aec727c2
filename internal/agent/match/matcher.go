// internal/agent/match/matcher.go

// Package match resolves free-text product and customer names against
// candidate lists. Scoring is lexical: exact equality, substring
// containment, then word overlap, with an edit-similarity fallback for
// misspellings. Candidate order decides ties, so callers must pass
// candidates in a stable order.
package match

import "strings"

// Score thresholds for BestMatch.
const (
	scoreExact   = 100
	scoreContain = 80
	scorePerWord = 10
	brandBonus   = 5

	// fuzzyFloor is the score below which the edit-similarity fallback
	// kicks in.
	fuzzyFloor = 20

	// fallbackCutoff is the minimum similarity for the fallback to accept
	// a candidate.
	fallbackCutoff = 0.6
)

// BestMatch returns the index into names of the best match for term, or -1
// when nothing matches. Names are compared lowercased and trimmed. The
// first candidate to reach the top score wins ties.
func BestMatch(term string, names []string) int {
	term = strings.ToLower(strings.TrimSpace(term))

	bestIdx := -1
	bestScore := 0

	for i, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		score := 0

		switch {
		case n == term:
			score = scoreExact

		case strings.Contains(n, term):
			// Deduct for extra length so "Keyboard" beats
			// "Logitech Keyboard" when the search is just "keyboard".
			score = scoreContain - (len(n) - len(term))

		default:
			common := commonWords(n, term)
			if common > 0 {
				score = common * scorePerWord
				// Bonus if the leading word matches (likely the brand).
				if firstWord(n) == firstWord(term) {
					score += brandBonus
				}
			}
		}

		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestScore < fuzzyFloor {
		lowered := make([]string, len(names))
		for i, name := range names {
			lowered[i] = strings.ToLower(name)
		}
		if hit := ClosestMatch(term, lowered, fallbackCutoff); hit != "" {
			for i, name := range lowered {
				if name == hit {
					return i
				}
			}
		}
	}

	return bestIdx
}

func commonWords(a, b string) int {
	aw := map[string]bool{}
	for _, w := range strings.Fields(a) {
		aw[w] = true
	}
	count := 0
	seen := map[string]bool{}
	for _, w := range strings.Fields(b) {
		if aw[w] && !seen[w] {
			count++
			seen[w] = true
		}
	}
	return count
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
