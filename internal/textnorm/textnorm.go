// Package textnorm folds user text into the canonical form every classifier
// and lookup matches against: lowercase, no combining marks, trimmed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords are dropped by Keywords. Short function words never carry topic.
var stopwords = map[string]struct{}{
	"para": {}, "como": {}, "cual": {}, "cuales": {}, "cuando": {}, "donde": {},
	"este": {}, "esta": {}, "esto": {}, "estos": {}, "estas": {}, "tiene": {},
	"tengo": {}, "sobre": {}, "quiero": {}, "saber": {}, "puede": {}, "pueden": {},
	"porque": {}, "desde": {}, "hasta": {}, "entre": {}, "cuanto": {}, "cuanta": {},
	"informacion": {}, "favor": {}, "gracias": {}, "hola": {}, "buenos": {}, "buenas": {},
	"que": {}, "los": {}, "las": {}, "del": {}, "una": {}, "uno": {}, "con": {}, "por": {},
}

// Normalize lowercases s, strips diacritics and trims surrounding space.
// "MÉDICO " and "medico" normalize to the same string.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Fields splits normalized text into letter/digit tokens.
func Fields(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Keywords returns the distinct tokens of s with at least minLen runes,
// excluding common Spanish stopwords, in order of first appearance.
func Keywords(s string, minLen int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range Fields(s) {
		if len([]rune(f)) < minLen {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ContainsAny reports whether normalized text contains any of the phrases.
// Phrases are expected to already be normalized.
func ContainsAny(normalized string, phrases ...string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether normalized text contains every phrase.
func ContainsAll(normalized string, phrases ...string) bool {
	for _, p := range phrases {
		if !strings.Contains(normalized, p) {
			return false
		}
	}
	return true
}
