package lookup

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/wolfman30/clinic-chat-assistant/internal/textnorm"
)

const (
	medicalCandidates = 100
	excerptSentences  = 2
	excerptMaxRunes   = 320
	minKeywordLen     = 4
)

// medical scores every recent article by keyword overlap: a title hit is
// worth two points, a body hit one, and a topic hit in the title three.
func (a *Adapter) medical(ctx context.Context, query, topic string) (Result, error) {
	keywords := textnorm.Keywords(query+" "+topic, minKeywordLen)
	if len(keywords) == 0 {
		return notFound("no search terms"), nil
	}
	articles, err := a.store.MedicalInfo(ctx, medicalCandidates)
	if err != nil {
		return Result{}, err
	}
	topic = textnorm.Normalize(topic)

	best, bestScore := -1, 0
	for i, art := range articles {
		title, body := textnorm.Normalize(art.Title), textnorm.Normalize(art.Body)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				score += 2
			}
			if strings.Contains(body, kw) {
				score++
			}
		}
		if topic != "" && strings.Contains(title, topic) {
			score += 3
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return notFound(""), nil
	}
	art := articles[best]
	return found(MedicalArticle{Article: art, Excerpt: Excerpt(art.Body), Score: bestScore}), nil
}

// Excerpt returns the first two sentences of body, cut at 320 runes.
func Excerpt(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	end, sentences := len(body), 0
	for i, r := range body {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(body) && body[i+1] != ' ' {
			continue
		}
		sentences++
		if sentences == excerptSentences {
			end = i + 1
			break
		}
	}
	out := body[:end]
	if utf8.RuneCountInString(out) > excerptMaxRunes {
		runes := []rune(out)
		out = strings.TrimSpace(string(runes[:excerptMaxRunes-1])) + "…"
	}
	return out
}
