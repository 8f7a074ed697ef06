package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"animehub/internal/episodes"
	"animehub/internal/match"
	"animehub/pkg/fault"
	"animehub/pkg/models"
)

// Stage names published over the event feed while a scrape runs.
const (
	StageParsingURL         = "parsing_url"
	StageFetchingPage       = "fetching_page"
	StageExtractingEpisodes = "extracting_episodes"
	StageMatchingTitle      = "matching_title"
	StagePersistingSeries   = "persisting_series"
	StagePersistingEpisodes = "persisting_episodes"
	StageEnriching          = "enriching"
	StageDone               = "done"
)

// PageFetcher retrieves an episode-list page body.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// AnimeFetcher retrieves an AniDB anime record.
type AnimeFetcher interface {
	FetchAnime(ctx context.Context, animeID int) (string, error)
}

// SeriesStore is the slice of the series repo the pipeline writes through.
type SeriesStore interface {
	FindOrCreate(ctx context.Context, slug, title string) (*models.Series, bool, error)
	FindByID(ctx context.Context, id string) (*models.Series, error)
	SetAniDBID(ctx context.Context, seriesID string, animeID int) error
	ApplyAniDB(ctx context.Context, seriesID string, animeID int, upd models.SeriesAniDBUpdate) error
	TouchLastFetched(ctx context.Context, seriesID string, at time.Time) error
}

// EpisodeStore is the slice of the episodes repo the pipeline writes through.
type EpisodeStore interface {
	CreateMany(ctx context.Context, candidates []episodes.NewEpisode) (created, skipped int64, err error)
	EnrichFromAniDB(ctx context.Context, seriesID string, eps []models.AniDBEpisode) (models.EnrichStats, error)
}

// TitleResolver maps a series title to an AniDB anime id.
type TitleResolver interface {
	Resolve(ctx context.Context, query string) (*match.Result, error)
}

// Publisher fans scrape progress out to connected clients. May be nil.
type Publisher interface {
	Publish(event string, payload any)
}

// Orchestrator runs the scrape pipeline end to end: fetch the filler-list
// page, extract its episodes, match the title against the AniDB corpus,
// persist series and episodes, then best-effort enrich from the AniDB API.
type Orchestrator struct {
	Pages    PageFetcher
	AniDB    AnimeFetcher
	Series   SeriesStore
	Episodes EpisodeStore
	Resolver TitleResolver
	Events   Publisher
}

// ParseSlug extracts the series slug from an episode-list URL: the last path
// segment, e.g. ".../shows/naruto-shippuden" -> "naruto-shippuden".
func ParseSlug(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fault.Wrap(fault.InvalidInput, "scrape", "invalid url", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	slug := segments[len(segments)-1]
	if slug == "" {
		return "", fault.New(fault.InvalidInput, "scrape", "url has no path to derive a slug from")
	}
	return slug, nil
}

// TitleFromSlug derives the display title stored for a new series.
func TitleFromSlug(slug string) string {
	return strings.ToUpper(strings.ReplaceAll(slug, "-", " "))
}

// Scrape runs the full pipeline for one episode-list URL. Enrichment
// failures do not fail the scrape; they surface as a warning on the summary
// since the basic data is already saved at that point. The terminal event is
// scrape.done on success, scrape.failed otherwise.
func (o *Orchestrator) Scrape(ctx context.Context, rawURL string) (*models.SeriesSummary, error) {
	summary, err := o.run(ctx, rawURL)
	if err != nil {
		payload := map[string]string{"error": err.Error()}
		var fe *fault.Error
		if errors.As(err, &fe) {
			payload["stage"] = fe.Stage
		}
		o.publishEvent("scrape.failed", payload)
		return nil, err
	}
	o.publishEvent("scrape.done", map[string]string{"slug": summary.Slug})
	return summary, nil
}

func (o *Orchestrator) run(ctx context.Context, rawURL string) (*models.SeriesSummary, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fault.New(fault.InvalidInput, "scrape", "url cannot be empty")
	}

	o.publish(StageParsingURL, "")
	slug, err := ParseSlug(rawURL)
	if err != nil {
		return nil, err
	}
	title := TitleFromSlug(slug)
	log.Printf("[scrape] starting scrape for %q (%s)", slug, rawURL)

	o.publish(StageFetchingPage, slug)
	body, err := o.Pages.FetchPage(ctx, rawURL)
	if err != nil {
		return nil, fault.WithStage(err, "fetching_page", fault.TransportFailure)
	}

	o.publish(StageExtractingEpisodes, slug)
	eps, err := ExtractEpisodes(body)
	if err != nil {
		return nil, err
	}
	log.Printf("[scrape] extracted %d episodes for %q", len(eps), slug)

	o.publish(StageMatchingTitle, slug)
	var animeID *int
	if res, err := o.Resolver.Resolve(ctx, title); err != nil {
		log.Printf("[scrape] title matching failed for %q: %v", title, err)
	} else if res != nil {
		log.Printf("[scrape] matched %q -> %q (anime_id=%d score=%.3f)",
			title, res.MatchedTitle, res.AnimeID, res.Score)
		animeID = &res.AnimeID
	} else {
		log.Printf("[scrape] no match for %q, proceeding without anidb id", title)
	}

	o.publish(StagePersistingSeries, slug)
	series, created, err := o.Series.FindOrCreate(ctx, slug, title)
	if err != nil {
		return nil, fault.WithStage(err, "persisting_series", fault.TransportFailure)
	}
	if created {
		log.Printf("[scrape] created series %q (id=%s)", slug, series.ID)
	}
	if animeID != nil && (series.AniDBID == nil || *series.AniDBID != *animeID) {
		if err := o.Series.SetAniDBID(ctx, series.ID, *animeID); err != nil {
			return nil, fault.WithStage(err, "persisting_series", fault.TransportFailure)
		}
	}
	if series.AniDBID != nil && animeID == nil {
		// A previous scrape already matched this series.
		animeID = series.AniDBID
	}

	o.publish(StagePersistingEpisodes, slug)
	candidates := make([]episodes.NewEpisode, 0, len(eps))
	for _, ep := range eps {
		num := ep.Number
		if num == 0 {
			// The number cell failed to parse; fall back to row position.
			num = ep.AbsoluteNumber
		}
		candidates = append(candidates, episodes.NewEpisode{
			SeriesID: series.ID,
			Number:   num,
			Kind:     ep.Kind,
			Title:    ep.Title,
			AirDate:  ep.AirDate,
		})
	}
	createdEps, skipped, err := o.Episodes.CreateMany(ctx, candidates)
	if err != nil {
		return nil, fault.WithStage(err, "persisting_episodes", fault.TransportFailure)
	}
	log.Printf("[scrape] episodes for %q: %d created, %d skipped", slug, createdEps, skipped)

	if err := o.Series.TouchLastFetched(ctx, series.ID, time.Now()); err != nil {
		return nil, fault.WithStage(err, "persisting_series", fault.TransportFailure)
	}

	summary := &models.SeriesSummary{
		ID:       series.ID,
		Slug:     series.Slug,
		Title:    series.Title,
		AniDBID:  animeID,
		Episodes: eps,
		Created:  createdEps,
		Skipped:  skipped,
	}

	if animeID != nil {
		o.publish(StageEnriching, slug)
		stats, err := o.Enrich(ctx, series.ID)
		if err != nil {
			// Basic data is saved; enrichment can be retried later.
			log.Printf("[scrape] enrichment failed for %q: %v", slug, err)
			summary.Warning = fmt.Sprintf("enrichment failed: %v", err)
		} else {
			summary.Enriched = stats
		}
	}

	o.publish(StageDone, slug)
	return summary, nil
}

func (o *Orchestrator) publishEvent(event string, payload map[string]string) {
	if o.Events == nil {
		return
	}
	o.Events.Publish(event, payload)
}

// Enrich fetches the series' AniDB record and merges it onto the stored
// series and episode rows. The series must exist and carry an anidb_id.
func (o *Orchestrator) Enrich(ctx context.Context, seriesID string) (*models.EnrichStats, error) {
	series, err := o.Series.FindByID(ctx, seriesID)
	if err != nil {
		return nil, fault.WithStage(err, "enriching", fault.TransportFailure)
	}
	if series == nil {
		return nil, fault.New(fault.NotFound, "enriching", "series not found")
	}
	if series.AniDBID == nil {
		return nil, fault.New(fault.InvalidInput, "enriching",
			fmt.Sprintf("series %q has no anidb id", series.Slug))
	}

	body, err := o.AniDB.FetchAnime(ctx, *series.AniDBID)
	if err != nil {
		return nil, fault.WithStage(err, "enriching", fault.EnrichmentFailure)
	}
	data, err := ParseAniDBResponse(body)
	if err != nil {
		return nil, fault.WithStage(err, "enriching", fault.EnrichmentFailure)
	}

	upd := models.SeriesAniDBUpdate{
		AnimeType:    data.AnimeType,
		EpisodeCount: data.EpisodeCount,
		StartDate:    data.StartDate,
		EndDate:      data.EndDate,
		TitleJA:      data.TitleJA,
		Description:  data.Description,
		OfficialURL:  data.OfficialURL,
	}
	if err := o.Series.ApplyAniDB(ctx, series.ID, *series.AniDBID, upd); err != nil {
		return nil, fault.WithStage(err, "enriching", fault.EnrichmentFailure)
	}

	stats, err := o.Episodes.EnrichFromAniDB(ctx, series.ID, data.Episodes)
	if err != nil {
		return nil, fault.WithStage(err, "enriching", fault.EnrichmentFailure)
	}
	log.Printf("[scrape] enrichment for %q: %d updated, %d unmatched",
		series.Slug, stats.Updated, stats.Unmatched)
	return &stats, nil
}

func (o *Orchestrator) publish(stage, slug string) {
	if o.Events == nil {
		return
	}
	o.Events.Publish("scrape.stage", map[string]string{"stage": stage, "slug": slug})
}
