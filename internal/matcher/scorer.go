// file: internal/matcher/scorer.go
// version: 1.1.0
// guid: 1f2a3b4c-5d6e-7f8a-9b0c-1d2e3f4a5b6c

package matcher

import (
	"github.com/jdfalk/audiobook-curator/internal/models"
)

// Component weights of the candidate score. Title dominates because source
// filenames nearly always carry at least a mangled title; author and series
// refine the ranking.
const (
	titleWeight  = 0.6
	authorWeight = 0.3
	seriesWeight = 0.1
)

// DefaultAcceptThreshold is deliberately permissive: titles and authors are
// frequently abbreviated in source filenames, so a strict cutoff rejects
// too many correct candidates. Tuned empirically against ripped-library
// filename samples; override via configuration if your sources are cleaner.
const DefaultAcceptThreshold = 0.15

// Scorer scores catalog candidates against a search query.
type Scorer struct {
	Threshold float64
}

// NewScorer returns a Scorer with the default acceptance threshold.
func NewScorer() *Scorer {
	return &Scorer{Threshold: DefaultAcceptThreshold}
}

// Score computes the weighted similarity of a candidate record to the query
// string. Deterministic: identical inputs always produce identical output.
func (s *Scorer) Score(query string, c models.Record) float64 {
	title := Similarity(query, c.Title)
	if c.Subtitle != "" {
		if alt := Similarity(query, c.DisplayTitle()); alt > title {
			title = alt
		}
	}

	var author float64
	for _, a := range c.Authors {
		if v := Similarity(query, a); v > author {
			author = v
		}
	}

	series := Similarity(query, c.Series)

	return titleWeight*title + authorWeight*author + seriesWeight*series
}

// Accept reports whether a score clears the acceptance threshold.
func (s *Scorer) Accept(score float64) bool {
	return score >= s.Threshold
}

// Best returns the index and score of the best-scoring candidate, or -1
// when candidates is empty. On an exact score tie the candidate whose
// provider reported a series wins: series presence is the strongest signal
// that the catalog entry is the audiobook edition we want.
func (s *Scorer) Best(query string, candidates []models.Record) (int, float64) {
	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		score := s.Score(query, c)
		if best == -1 || score > bestScore {
			best, bestScore = i, score
			continue
		}
		if score == bestScore && candidates[best].Series == "" && c.Series != "" {
			best = i
		}
	}
	return best, bestScore
}
