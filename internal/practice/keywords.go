package practice

import (
	"sort"
	"strings"

	"drawlab/internal/content"
)

const (
	minKeywordLen = 4
	maxKeywords   = 20
	maxVideos     = 3
)

// stopWords are common filler words excluded from keyword extraction.
// Words shorter than minKeywordLen never survive anyway.
var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "your": true,
	"have": true, "been": true, "from": true, "they": true,
	"will": true, "would": true, "could": true, "should": true,
	"there": true, "their": true, "which": true, "about": true,
	"when": true, "what": true, "also": true, "than": true,
	"then": true, "them": true, "were": true, "more": true,
	"most": true, "such": true, "into": true, "over": true,
	"only": true, "very": true, "some": true, "needs": true,
	"need": true, "make": true, "made": true, "like": true,
	"well": true, "good": true, "better": true, "please": true,
	"drawing": true, "image": true, "overall": true,
}

// ExtractKeywords pulls search terms out of evaluation errors and
// feedback: lowercase alphanumeric tokens of at least four characters,
// minus stop words, deduped in order of first appearance, capped at
// twenty. A heuristic, not a guarantee of relevance.
func ExtractKeywords(errs []string, feedback string) []string {
	text := strings.ToLower(strings.Join(errs, " ") + " " + feedback)

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})

	seen := make(map[string]bool)
	keywords := make([]string, 0, maxKeywords)
	for _, tok := range tokens {
		if len(tok) < minKeywordLen || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// RankVideos orders candidate videos by how many keywords appear as
// substrings of the lowercase title, descending. Ties keep the
// original fetch order; the top three are returned.
func RankVideos(videos []content.Item, keywords []string) []content.Item {
	type scored struct {
		item  content.Item
		hits  int
		index int
	}

	ranked := make([]scored, 0, len(videos))
	for i, v := range videos {
		title := strings.ToLower(v.Title)
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				hits++
			}
		}
		ranked = append(ranked, scored{item: v, hits: hits, index: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].hits > ranked[j].hits
	})

	n := len(ranked)
	if n > maxVideos {
		n = maxVideos
	}
	out := make([]content.Item, 0, n)
	for _, r := range ranked[:n] {
		out = append(out, r.item)
	}
	return out
}
