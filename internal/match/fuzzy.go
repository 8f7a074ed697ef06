package match

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"animehub/pkg/models"
)

// Config tunes the fuzzy resolver.
type Config struct {
	// Threshold is the minimum adjusted score for a match to count.
	Threshold float64
	// TopN is how many candidates survive the similarity ranking.
	TopN int
	// PreferOfficial boosts official/primary titles over synonyms.
	PreferOfficial bool
}

func DefaultConfig() Config {
	return Config{
		Threshold:      0.75,
		TopN:           5,
		PreferOfficial: true,
	}
}

// Result is the outcome of one resolution attempt.
type Result struct {
	AnimeID      int              `json:"anime_id"`
	MatchedTitle string           `json:"matched_title"`
	Score        float64          `json:"score"`
	Kind         models.TitleKind `json:"kind"`
	Language     string           `json:"language"`
}

// kindBoost is the fixed priority table applied on top of the raw
// similarity score.
func kindBoost(k models.TitleKind) float64 {
	switch k {
	case models.TitleOfficial:
		return 0.05
	case models.TitlePrimary:
		return 0.03
	case models.TitleSynonym:
		return 0.01
	default:
		return 0.0
	}
}

// Similarity scores two strings in [0, 1] (1 = identical) using Levenshtein
// distance over the case-folded pair.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	n := la
	if lb > n {
		n = lb
	}
	if n == 0 {
		return 1.0
	}

	d := fuzzy.LevenshteinDistance(a, b)
	return 1.0 - float64(d)/float64(n)
}

type scored struct {
	entry models.TitleEntry
	score float64
}

// Match scores query against the corpus and returns the best candidate at or
// above the threshold, or nil. Pure in-memory; performs no I/O.
//
// Ties on the adjusted score keep the earlier candidate in ranking order.
func Match(query string, corpus []models.TitleEntry, cfg Config) *Result {
	if len(corpus) == 0 {
		return nil
	}

	normalized := Normalize(query)

	candidates := make([]scored, 0, len(corpus))
	for _, entry := range corpus {
		candidates = append(candidates, scored{
			entry: entry,
			score: Similarity(normalized, entry.Title),
		})
	}

	// Stable keeps first-seen corpus order for equal raw scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if cfg.TopN > 0 && len(candidates) > cfg.TopN {
		candidates = candidates[:cfg.TopN]
	}

	var best *Result
	bestAdjusted := -1.0

	for _, c := range candidates {
		boost := 0.0
		if cfg.PreferOfficial {
			boost = kindBoost(c.entry.Kind)
		}

		adjusted := c.score + boost
		if adjusted > 1.0 {
			adjusted = 1.0
		}

		if adjusted >= cfg.Threshold && adjusted > bestAdjusted {
			bestAdjusted = adjusted
			best = &Result{
				AnimeID:      c.entry.AnimeID,
				MatchedTitle: c.entry.Title,
				Score:        adjusted,
				Kind:         c.entry.Kind,
				Language:     c.entry.Language,
			}
		}
	}

	return best
}
