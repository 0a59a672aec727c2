// internal/agent/intent/classifier.go
package intent

import (
	"strings"

	"bazaar-workers/internal/agent/match"
)

// Intent is a classified user message: the detected intent name, a
// confidence in [0,1], and whatever entities were extracted from the text.
type Intent struct {
	Name       string                 `json:"name"`
	Confidence float64                `json:"confidence"`
	Entities   map[string]interface{} `json:"entities"`
}

// Score weights. A multi-word phrase appearing verbatim is worth far more
// than a lone keyword; a fuzzy token hit is worth the least.
const (
	phraseScore  = 5
	keywordScore = 2
	fuzzyScore   = 1
	overrideBump = 10

	fuzzyTokenCutoff = 0.8
)

// Classifier scores a message against the intent catalog.
type Classifier struct {
	catalog []Patterns
}

func NewClassifier() *Classifier {
	return &Classifier{catalog: Catalog}
}

// Normalize lowercases and trims a raw message. All scoring and extraction
// operate on normalized text.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Classify scores the normalized text against every catalog entry and
// returns the winning intent name with its confidence. Ties keep the
// earliest catalog entry. A total score of zero means Unknown at
// confidence 0.
func (c *Classifier) Classify(text string) (string, float64) {
	norm := Normalize(text)
	if norm == "" {
		return Unknown, 0
	}
	tokens := strings.Fields(norm)

	bestName := Unknown
	bestScore := 0
	for _, p := range c.catalog {
		score := scorePatterns(norm, tokens, p.Keywords)
		if p.Name == AddProduct && addProductOverride(norm) {
			score += overrideBump
		}
		if score > bestScore {
			bestScore = score
			bestName = p.Name
		}
	}
	if bestScore == 0 {
		return Unknown, 0
	}
	confidence := float64(bestScore) / float64(phraseScore)
	if confidence > 1 {
		confidence = 1
	}
	return bestName, confidence
}

func scorePatterns(norm string, tokens []string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(norm, kw) {
			if strings.Contains(kw, " ") {
				score += phraseScore
			} else {
				score += keywordScore
			}
			continue
		}
		// No literal hit: a single token may still be close enough to the
		// keyword, spaces and all ("lenahai" vs "lena hai").
		for _, tok := range tokens {
			if match.Ratio(tok, kw) >= fuzzyTokenCutoff {
				score += fuzzyScore
				break
			}
		}
	}
	return score
}

// addProductOverride reports whether the message reads like product
// registration: a creation verb plus a price/stock word and none of the
// customer/order/billing words that would point elsewhere.
func addProductOverride(norm string) bool {
	if !containsAny(norm, createWords) || !containsAny(norm, pricingWords) {
		return false
	}
	return !containsAny(norm, excludeWords)
}

func containsAny(norm string, words []string) bool {
	for _, w := range words {
		if strings.Contains(norm, w) {
			return true
		}
	}
	return false
}
