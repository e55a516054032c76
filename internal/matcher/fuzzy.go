// file: internal/matcher/fuzzy.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package matcher

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so "Brontë" and "Bronte" compare
// equal after lowercasing.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Similarity returns a normalized string similarity in [0,1]. Exact
// case-insensitive matches score 1.0; strings sharing no tokens score 0.0.
// In between, the better of token-set overlap and Levenshtein ratio wins,
// which keeps the measure symmetric and tolerant of word reordering.
func Similarity(a, b string) float64 {
	na := normalize(a)
	nb := normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ta := strings.Fields(na)
	tb := strings.Fields(nb)
	overlap := tokenOverlap(ta, tb)
	if overlap == 0 {
		return 0
	}

	union := len(ta) + len(tb) - overlap
	jaccard := float64(overlap) / float64(union)

	dist := fuzzy.LevenshteinDistance(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	lev := 1.0 - float64(dist)/float64(maxLen)
	if lev < 0 {
		lev = 0
	}

	if jaccard > lev {
		return jaccard
	}
	return lev
}

// tokenOverlap counts distinct tokens present in both slices.
func tokenOverlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	seen := make(map[string]bool, len(b))
	n := 0
	for _, t := range b {
		if set[t] && !seen[t] {
			n++
			seen[t] = true
		}
	}
	return n
}

// normalize lowercases, folds diacritics and strips everything but letters,
// digits and spaces.
func normalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
