// internal/agent/extract/extractor.go

// Package extract pulls structured entities (customer name, product name,
// quantity, price, phone, order id) out of normalized message text. All
// patterns expect lowercased input; the extractor title-cases names on the
// way out.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"bazaar-workers/internal/agent/intent"
)

// Entity keys placed in the extracted map.
const (
	KeyCustomerName = "customer_name"
	KeyProductName  = "product_name"
	KeyQuantity     = "quantity"
	KeyPrice        = "price"
	KeyPhone        = "phone"
	KeyOrderID      = "order_id"
)

var (
	// Customer name introducers, tried in order. Each captures one or two
	// capitalizable words.
	customerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`for\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`),
		regexp.MustCompile(`to\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`),
		regexp.MustCompile(`customer\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`),
		regexp.MustCompile(`naam\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`),
		regexp.MustCompile(`name\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)`),
	}

	// Product-registration shapes like "product <name> price" that allow
	// multi-word names.
	addProductPatterns = []*regexp.Regexp{
		regexp.MustCompile(`product\s+(.*?)\s+(?:price|stock|cost|rate)`),
		regexp.MustCompile(`add\s+(?:new\s+)?(.*?)\s+(?:price|stock|cost|rate)`),
		regexp.MustCompile(`create\s+(?:new\s+)?(.*?)\s+(?:price|stock|cost|rate)`),
	}

	// Hyphenated part numbers or product codes, e.g. USB-HUB, LAP-001.
	partCodePattern = regexp.MustCompile(`\b([A-Za-z]+-[A-Za-z0-9]+)\b`)

	hasDigit          = regexp.MustCompile(`\d`)
	pricedNumber      = regexp.MustCompile(`\b(price|stock|cost|rate|qty|quantity)\s*:?\s*\d+(?:\.\d+)?`)
	bareNumber        = regexp.MustCompile(`\b\d+\b`)
	quantityUnitWords = regexp.MustCompile(`\b(pieces|piece|units|unit|qty|quantity|nos|karo)\b`)
	stopwords         = regexp.MustCompile(`\b(for|to|of|in|at|with)\b`)
	punctuation       = regexp.MustCompile(`[^\w\s-]`)

	explicitQuantityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:stock|qty|quantity|units|pieces|pcs|count)\s*:?\s*(\d+)`),
		regexp.MustCompile(`(\d+)\s*(?:pieces|units|pcs|qty|quantity|stock)`),
	}
	numberCapture = regexp.MustCompile(`\b(\d+)\b`)

	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`price[:\s]+(\d+(?:\.\d{2})?)`),
		regexp.MustCompile(`(?:rs\.?|₹)\s*(\d+(?:\.\d{2})?)`),
		regexp.MustCompile(`(\d+(?:\.\d{2})?)\s*(?:rupees|rs|inr)`),
	}

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+91[\s-]?\d{10}`),
		regexp.MustCompile(`\d{10}`),
		regexp.MustCompile(`\d{5}[\s-]\d{5}`),
	}
	phoneSeparators = regexp.MustCompile(`[\s-]`)

	orderIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`order\s*#?\s*(\d+)`),
		regexp.MustCompile(`order\s+id\s+(\d+)`),
	}

	// priceContextMarkers flag a number as a price when one appears in the
	// 15 characters before it.
	priceContextMarkers = []string{"price", "rs", "cost", "rate", "₹"}
)

// keywordStrippers removes every intent-catalog keyword from fallback
// product text, in catalog order. Built once at package init.
var keywordStrippers = buildKeywordStrippers()

func buildKeywordStrippers() []*regexp.Regexp {
	var res []*regexp.Regexp
	for _, p := range intent.Catalog {
		for _, kw := range p.Keywords {
			res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}
	}
	return res
}

// Extract returns every entity found in the normalized text. Absent
// entities are simply missing from the map, never present with a zero
// value.
func Extract(text string) map[string]interface{} {
	entities := make(map[string]interface{})

	if name := CustomerName(text); name != "" {
		entities[KeyCustomerName] = name
	}
	if name := ProductName(text); name != "" {
		entities[KeyProductName] = name
	}
	if qty, ok := Quantity(text); ok {
		entities[KeyQuantity] = qty
	}
	if price, ok := Price(text); ok {
		entities[KeyPrice] = price
	}
	if phone := Phone(text); phone != "" {
		entities[KeyPhone] = phone
	}
	if id, ok := OrderID(text); ok {
		entities[KeyOrderID] = id
	}

	return entities
}

// CustomerName finds a name introduced by for/to/customer/naam/name and
// returns it title-cased, or "".
func CustomerName(text string) string {
	for _, p := range customerPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return titleCase(m[1])
		}
	}
	return ""
}

// ProductName resolves the product mentioned in the text. Three tiers:
// registration shapes ("product X price ..."), hyphenated part codes, and
// a fallback that strips keywords, numbers, units and stopwords from the
// whole message and title-cases whatever words survive.
func ProductName(text string) string {
	lower := strings.ToLower(text)

	for _, p := range addProductPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			candidate := strings.TrimSpace(m[1])
			if len(candidate) > 2 && !hasDigit.MatchString(candidate) {
				return titleCase(candidate)
			}
		}
	}

	if m := partCodePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	// Strip "price 2000" style pairs first so the bare-number pass below
	// does not eat half of them.
	cleaned := pricedNumber.ReplaceAllString(lower, "")
	for _, strip := range keywordStrippers {
		cleaned = strip.ReplaceAllString(cleaned, "")
	}
	cleaned = bareNumber.ReplaceAllString(cleaned, "")
	cleaned = quantityUnitWords.ReplaceAllString(cleaned, "")
	cleaned = stopwords.ReplaceAllString(cleaned, "")
	cleaned = punctuation.ReplaceAllString(cleaned, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if len(cleaned) > 2 {
		return titleCase(cleaned)
	}
	return ""
}

// Quantity extracts a count from the text. Explicit unit shapes win, then
// the first bare number not preceded by a price marker, then Hindi/English
// number words.
func Quantity(text string) (int, bool) {
	for _, p := range explicitQuantityPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
	}

	for _, loc := range numberCapture.FindAllStringSubmatchIndex(text, -1) {
		start := loc[2]
		windowStart := start - 15
		if windowStart < 0 {
			windowStart = 0
		}
		preceding := strings.ToLower(text[windowStart:start])
		if containsAnyMarker(preceding) {
			continue
		}
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err == nil {
			return n, true
		}
	}

	lower := strings.ToLower(text)
	for _, nw := range intent.NumberWords {
		if strings.Contains(lower, nw.Word) {
			return nw.Value, true
		}
	}

	return 0, false
}

func containsAnyMarker(preceding string) bool {
	for _, marker := range priceContextMarkers {
		if strings.Contains(preceding, marker) {
			return true
		}
	}
	return false
}

// Price extracts an amount labelled with price/rs/₹/rupees/inr.
func Price(text string) (float64, bool) {
	for _, p := range pricePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

// Phone extracts an Indian phone number normalized to +91XXXXXXXXXX.
func Phone(text string) string {
	for _, p := range phonePatterns {
		m := p.FindString(text)
		if m == "" {
			continue
		}
		phone := phoneSeparators.ReplaceAllString(m, "")
		if !strings.HasPrefix(phone, "+") {
			if len(phone) == 10 {
				phone = "+91" + phone
			} else {
				phone = "+" + phone
			}
		}
		return phone
	}
	return ""
}

// OrderID extracts a numeric order reference ("order #5", "order id 12").
func OrderID(text string) (int, bool) {
	for _, p := range orderIDPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// titleCase uppercases the first letter of every word, where a word starts
// at the beginning or after any non-letter, and lowercases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(r &^ 0x20)
		case isLetter:
			b.WriteRune(r | 0x20)
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
