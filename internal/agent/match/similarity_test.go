// internal/agent/match/similarity_test.go
package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "laptop", "laptop", 1.0},
		{"empty both", "", "", 1.0},
		{"empty one", "laptop", "", 0.0},
		{"no overlap", "abc", "xyz", 0.0},
		{"single char typo", "laptap", "laptop", 10.0 / 12.0},
		{"substring with noise", "laptops rahul", "laptop", 12.0 / 19.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatioSymmetricEnough(t *testing.T) {
	// The common-block count does not depend on argument order, so the
	// ratio is symmetric even though junk-free SequenceMatcher is not in
	// general.
	assert.InDelta(t, Ratio("milk", "mik"), Ratio("mik", "milk"), 1e-9)
}

func TestClosestMatch(t *testing.T) {
	candidates := []string{"laptop", "mouse", "keyboard"}

	assert.Equal(t, "laptop", ClosestMatch("laptap", candidates, 0.6))
	assert.Empty(t, ClosestMatch("zzzz", candidates, 0.6))

	// First candidate wins a tie.
	assert.Equal(t, "ab", ClosestMatch("ab", []string{"ab", "ab"}, 0.6))
}

func TestClosestMatchEmptyCandidates(t *testing.T) {
	assert.Empty(t, ClosestMatch("laptop", nil, 0.6))
}
