// Package pricing extracts price mentions from free text and computes
// totals and tax breakdowns over them.
package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/textnorm"
)

// Currency is the symbol every amount is rendered with.
const Currency = "Q"

// Mention is one "label: amount" pair found in a message.
type Mention struct {
	Label       string  `json:"label"`
	Amount      float64 `json:"amount"`
	IncludesTax bool    `json:"includes_tax"`
}

// Key is the label identity used for deduplication.
func (m Mention) Key() string {
	return LabelKey(m.Label)
}

// LabelKey normalizes a label so "Pediatría" and "pediatria " compare equal.
func LabelKey(label string) string {
	return strings.Join(strings.Fields(textnorm.Normalize(label)), " ")
}

var (
	pricePattern    = regexp.MustCompile(`(?i)([\p{L}\p{N}][\p{L}\p{N} ]*?)\s*(?::|\s+cuesta\b)\s*(?:GTQ|Q\.?|\$)\s?(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:[.,]\d+)?|[\p{L}\p{N}]+)(\s*\(?\s*(?:con\s+)?(?:iva\s+incluido|incluye\s+iva)\s*\)?)?`)
	thousandsAmount = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)

	labelLeadWords = map[string]struct{}{
		"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {},
		"y": {}, "e": {}, "de": {}, "del": {}, "que": {}, "su": {},
	}
	// Labels the engine itself emits when summarizing. They are never
	// treated as mentions so replaying a transcript does not double count.
	reservedLabelWords    = []string{"total", "subtotal"}
	reservedLabelPrefixes = []string{"iva", "isr", "impuesto"}
)

const maxLabelWords = 4

// ExtractPrices returns every price mention in text, in order of appearance.
// Amounts that do not parse as numbers are dropped.
func ExtractPrices(text string) []Mention {
	matches := pricePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Mention, 0, len(matches))
	for _, m := range matches {
		if isReservedLabel(m[1]) {
			continue
		}
		label := cleanLabel(m[1])
		if label == "" {
			continue
		}
		amount, ok := parseAmount(m[2])
		if !ok {
			continue
		}
		out = append(out, Mention{
			Label:       label,
			Amount:      amount,
			IncludesTax: strings.TrimSpace(m[3]) != "",
		})
	}
	return out
}

func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if thousandsAmount.MatchString(raw) {
		raw = strings.ReplaceAll(raw, ",", "")
	} else {
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func cleanLabel(raw string) string {
	words := strings.Fields(raw)
	if len(words) > maxLabelWords {
		words = words[len(words)-maxLabelWords:]
	}
	for len(words) > 1 {
		if _, lead := labelLeadWords[strings.ToLower(words[0])]; !lead {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

func isReservedLabel(label string) bool {
	key := LabelKey(label)
	for _, w := range strings.Fields(key) {
		for _, r := range reservedLabelWords {
			if w == r {
				return true
			}
		}
	}
	for _, p := range reservedLabelPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
