package match

import (
	"context"
	"log"

	"animehub/pkg/models"
)

// TitleSource is the corpus collaborator the cascade reads from. Implemented
// by the anidb_titles repo; faked in tests.
type TitleSource interface {
	// FindExact looks up a title case-insensitively against the full corpus.
	FindExact(ctx context.Context, title string) (animeID int, ok bool, err error)
	// EnglishTitles returns the English + romanized-Japanese subset.
	EnglishTitles(ctx context.Context) ([]models.TitleEntry, error)
	// AllTitles returns the entire corpus.
	AllTitles(ctx context.Context) ([]models.TitleEntry, error)
}

// Resolver runs the cascading search strategy:
//
//  1. exact case-insensitive lookup (indexed, cheap)
//  2. fuzzy match against English/romanized titles (~a third of the corpus)
//  3. fuzzy match against everything
//
// Most real queries resolve in pass 1 or 2; pass 3 keeps correctness when
// the only matching title is in another language. All passes share one
// config.
type Resolver struct {
	Source TitleSource
	Config Config
}

func NewResolver(source TitleSource, cfg Config) *Resolver {
	return &Resolver{Source: source, Config: cfg}
}

// Resolve returns the best match for query, or nil when nothing clears the
// threshold. Source errors skip to the next pass rather than failing the
// resolution.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Result, error) {
	// Pass 1: exact. An exact hit is definitionally authoritative.
	animeID, ok, err := r.Source.FindExact(ctx, query)
	if err != nil {
		log.Printf("[match] exact lookup failed: %v", err)
	} else if ok {
		return &Result{
			AnimeID:      animeID,
			MatchedTitle: query,
			Score:        1.0,
			Kind:         models.TitlePrimary,
			Language:     "en",
		}, nil
	}

	// Pass 2: English/romanized subset.
	narrow, err := r.Source.EnglishTitles(ctx)
	if err != nil {
		log.Printf("[match] loading english titles failed: %v", err)
	} else if res := Match(query, narrow, r.Config); res != nil {
		return res, nil
	}

	// Pass 3: full corpus.
	all, err := r.Source.AllTitles(ctx)
	if err != nil {
		log.Printf("[match] loading full corpus failed: %v", err)
		return nil, err
	}
	return Match(query, all, r.Config), nil
}
