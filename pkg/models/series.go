package models

import "time"

// Series is the persisted snapshot of a scraped series.
type Series struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	LastFetched *time.Time `json:"last_fetched,omitempty"`
	// AniDB enrichment fields
	AniDBID      *int       `json:"anidb_id,omitempty"`
	AnimeType    *string    `json:"anime_type,omitempty"`
	EpisodeCount *int       `json:"episode_count,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	TitleJA      *string    `json:"title_ja,omitempty"`
	Description  *string    `json:"description,omitempty"`
	OfficialURL  *string    `json:"official_url,omitempty"`
}

// SeriesAniDBUpdate carries the AniDB-sourced series fields applied during
// enrichment.
type SeriesAniDBUpdate struct {
	AnimeType    string
	EpisodeCount *int
	StartDate    *time.Time
	EndDate      *time.Time
	TitleJA      *string
	Description  *string
	OfficialURL  *string
}

// SeriesSummary is the orchestrator's response shape: the scraped series
// plus its extracted episode list in document order, and enrichment counts
// when enrichment ran.
type SeriesSummary struct {
	ID       string       `json:"id"`
	Slug     string       `json:"slug"`
	Title    string       `json:"title"`
	AniDBID  *int         `json:"anidb_id,omitempty"`
	Episodes []RawEpisode `json:"episodes"`
	Created  int64        `json:"created"`
	Skipped  int64        `json:"skipped"`
	Enriched *EnrichStats `json:"enriched,omitempty"`
	Warning  string       `json:"warning,omitempty"`
}

// EnrichStats reports the enrichment merge outcome.
type EnrichStats struct {
	Updated   int64 `json:"updated"`
	Unmatched int64 `json:"unmatched"`
}
