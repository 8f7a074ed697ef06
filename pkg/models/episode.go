package models

import (
	"fmt"
	"time"
)

// EpisodeKind classifies an episode's relation to the manga source material,
// as published by the filler-list site.
type EpisodeKind int

const (
	KindCanon EpisodeKind = iota
	KindFiller
	KindMixed
	KindAnimeCanon
)

// ParseEpisodeKind maps the filler-list type cell to an EpisodeKind.
// Unknown labels default to Canon.
func ParseEpisodeKind(s string) EpisodeKind {
	switch s {
	case "Canon":
		return KindCanon
	case "Filler":
		return KindFiller
	case "Mixed":
		return KindMixed
	case "Anime Canon":
		return KindAnimeCanon
	default:
		return KindCanon
	}
}

// StorageCode returns the text code stored in the episodes table.
func (k EpisodeKind) StorageCode() string {
	switch k {
	case KindCanon:
		return "canon"
	case KindFiller:
		return "filler"
	case KindMixed:
		return "mixed"
	case KindAnimeCanon:
		return "anime_canon"
	default:
		return "canon"
	}
}

// KindFromStorageCode is the inverse of StorageCode.
func KindFromStorageCode(code string) (EpisodeKind, error) {
	switch code {
	case "canon":
		return KindCanon, nil
	case "filler":
		return KindFiller, nil
	case "mixed":
		return KindMixed, nil
	case "anime_canon":
		return KindAnimeCanon, nil
	default:
		return KindCanon, fmt.Errorf("unknown episode kind code %q", code)
	}
}

func (k EpisodeKind) String() string {
	switch k {
	case KindCanon:
		return "Canon"
	case KindFiller:
		return "Filler"
	case KindMixed:
		return "Mixed"
	case KindAnimeCanon:
		return "Anime Canon"
	default:
		return "Canon"
	}
}

// RawEpisode is one row extracted from the filler-list episode table.
// AbsoluteNumber counts rows in document order starting at 1 and keeps
// incrementing even when the number cell fails to parse (Number then 0).
type RawEpisode struct {
	Number         int         `json:"number"`
	AbsoluteNumber int         `json:"absolute_number"`
	Title          string      `json:"title"`
	AirDate        time.Time   `json:"air_date"`
	Kind           EpisodeKind `json:"kind"`
}

// Episode is the persisted snapshot of an episode row. The scrape pipeline
// never mutates it in place; AniDB enrichment goes through EpisodeAniDBUpdate.
type Episode struct {
	ID            string      `json:"id"`
	SeriesID      string      `json:"series_id"`
	EpisodeNum    int         `json:"episode_num"`
	Kind          EpisodeKind `json:"kind"`
	Title         string      `json:"title,omitempty"`
	AniDBID       *int        `json:"anidb_id,omitempty"`
	TitleJA       *string     `json:"title_ja,omitempty"`
	AirDate       *time.Time  `json:"airdate,omitempty"`
	Length        *int        `json:"length,omitempty"`
	Summary       *string     `json:"summary,omitempty"`
	CrunchyrollID *string     `json:"crunchyroll_id,omitempty"`
}

// EpisodeAniDBUpdate carries the AniDB-sourced fields written onto a
// persisted episode during enrichment. Nil pointers clear nothing; they are
// written as-is so an absent upstream value stays absent locally.
type EpisodeAniDBUpdate struct {
	AniDBID       int
	TitleJA       *string
	AirDate       *time.Time
	Length        *int
	Summary       *string
	CrunchyrollID *string
}
