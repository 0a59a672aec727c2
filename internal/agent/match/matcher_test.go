// internal/agent/match/matcher_test.go
package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestMatchExact(t *testing.T) {
	names := []string{"Laptop", "Mouse", "Keyboard"}
	assert.Equal(t, 1, BestMatch("mouse", names))
	assert.Equal(t, 0, BestMatch("  Laptop ", names))
}

func TestBestMatchContains(t *testing.T) {
	names := []string{"Logitech Wireless Keyboard", "Keyboard"}
	// The shorter containing name scores higher (less extra length).
	assert.Equal(t, 1, BestMatch("keyboard", names))
}

func TestBestMatchWordOverlap(t *testing.T) {
	names := []string{"Amul Butter 500g", "Britannia Bread"}
	// "amul fresh butter" shares two words with the first name plus the
	// leading-word bonus.
	assert.Equal(t, 0, BestMatch("amul fresh butter", names))
}

func TestBestMatchFuzzyFallback(t *testing.T) {
	names := []string{"Laptop", "Mouse"}
	// Misspelling scores zero lexically, so the edit-similarity fallback
	// resolves it.
	assert.Equal(t, 0, BestMatch("laptap", names))
}

func TestBestMatchFuzzyFallbackWithNoise(t *testing.T) {
	names := []string{"Mouse", "Laptop", "Keyboard"}
	// Trailing noise in the search term still clears the 0.6 cutoff.
	assert.Equal(t, 1, BestMatch("laptops rahul", names))
}

func TestBestMatchNoMatch(t *testing.T) {
	names := []string{"Laptop", "Mouse"}
	assert.Equal(t, -1, BestMatch("zzzz", names))
}

func TestBestMatchEmptyNames(t *testing.T) {
	assert.Equal(t, -1, BestMatch("laptop", nil))
}

func TestBestMatchTieKeepsEarliest(t *testing.T) {
	names := []string{"Milk", "Milk"}
	assert.Equal(t, 0, BestMatch("milk", names))
}
