package models

import "time"

// TitleKind is the title classification from the AniDB title dump.
// The numeric values are the dump's own type codes.
type TitleKind int

const (
	TitlePrimary  TitleKind = 1 // one per anime
	TitleSynonym  TitleKind = 2
	TitleShort    TitleKind = 3
	TitleOfficial TitleKind = 4 // one per language
)

// Valid reports whether k is one of the four dump type codes.
func (k TitleKind) Valid() bool {
	return k >= TitlePrimary && k <= TitleOfficial
}

func (k TitleKind) String() string {
	switch k {
	case TitlePrimary:
		return "primary"
	case TitleSynonym:
		return "synonym"
	case TitleShort:
		return "short"
	case TitleOfficial:
		return "official"
	default:
		return "unknown"
	}
}

// TitleEntry is one row of the AniDB title corpus. Many entries share one
// AnimeID. Immutable reference data: the corpus is replaced wholesale, never
// edited row by row.
type TitleEntry struct {
	AnimeID  int       `json:"anime_id"`
	Title    string    `json:"title"`
	Kind     TitleKind `json:"kind"`
	Language string    `json:"language"`
}

// AniDBSeries is the structured form of an AniDB HTTP API anime response.
type AniDBSeries struct {
	AnimeID      int            `json:"anime_id"`
	Restricted   bool           `json:"restricted"`
	AnimeType    string         `json:"anime_type"`
	EpisodeCount *int           `json:"episode_count,omitempty"`
	StartDate    *time.Time     `json:"start_date,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	TitleMain    string         `json:"title_main"`
	TitleJA      *string        `json:"title_ja,omitempty"`
	TitleEN      *string        `json:"title_en,omitempty"`
	Description  *string        `json:"description,omitempty"`
	OfficialURL  *string        `json:"official_url,omitempty"`
	Episodes     []AniDBEpisode `json:"episodes"`
}

// AniDBEpisode is one regular episode (epno type 1) from an AniDB response.
// UpdateDate is mandatory upstream; an episode without it is dropped during
// extraction.
type AniDBEpisode struct {
	EpisodeID     int        `json:"episode_id"`
	UpdateDate    time.Time  `json:"update_date"`
	Number        int        `json:"number"`
	NumberType    int        `json:"number_type"`
	Length        *int       `json:"length,omitempty"`
	AirDate       *time.Time `json:"airdate,omitempty"`
	TitleJA       *string    `json:"title_ja,omitempty"`
	TitleEN       *string    `json:"title_en,omitempty"`
	Summary       *string    `json:"summary,omitempty"`
	CrunchyrollID *string    `json:"crunchyroll_id,omitempty"`
}
