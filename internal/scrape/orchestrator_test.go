package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"animehub/internal/episodes"
	"animehub/internal/match"
	"animehub/pkg/fault"
	"animehub/pkg/models"
)

type fakePages struct {
	body string
	err  error
}

func (f *fakePages) FetchPage(ctx context.Context, url string) (string, error) {
	return f.body, f.err
}

type fakeAniDB struct {
	body  string
	err   error
	calls int
}

func (f *fakeAniDB) FetchAnime(ctx context.Context, animeID int) (string, error) {
	f.calls++
	return f.body, f.err
}

type fakeSeriesStore struct {
	series  *models.Series
	applied *models.SeriesAniDBUpdate
	touched bool
}

func (f *fakeSeriesStore) FindOrCreate(ctx context.Context, slug, title string) (*models.Series, bool, error) {
	if f.series == nil {
		f.series = &models.Series{ID: "series-1", Slug: slug, Title: title}
		return f.series, true, nil
	}
	return f.series, false, nil
}

func (f *fakeSeriesStore) FindByID(ctx context.Context, id string) (*models.Series, error) {
	if f.series == nil || f.series.ID != id {
		return nil, nil
	}
	return f.series, nil
}

func (f *fakeSeriesStore) SetAniDBID(ctx context.Context, seriesID string, animeID int) error {
	f.series.AniDBID = &animeID
	return nil
}

func (f *fakeSeriesStore) ApplyAniDB(ctx context.Context, seriesID string, animeID int, upd models.SeriesAniDBUpdate) error {
	f.applied = &upd
	return nil
}

func (f *fakeSeriesStore) TouchLastFetched(ctx context.Context, seriesID string, at time.Time) error {
	f.touched = true
	return nil
}

type fakeEpisodeStore struct {
	got   []episodes.NewEpisode
	stats models.EnrichStats
	err   error
}

func (f *fakeEpisodeStore) CreateMany(ctx context.Context, candidates []episodes.NewEpisode) (int64, int64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.got = candidates
	return int64(len(candidates)), 0, nil
}

func (f *fakeEpisodeStore) EnrichFromAniDB(ctx context.Context, seriesID string, eps []models.AniDBEpisode) (models.EnrichStats, error) {
	return f.stats, nil
}

type fakeResolver struct {
	result *match.Result
	err    error
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) (*match.Result, error) {
	return f.result, f.err
}

type recordingPublisher struct {
	events []string
	stages []string
}

func (p *recordingPublisher) Publish(event string, payload any) {
	p.events = append(p.events, event)
	if m, ok := payload.(map[string]string); ok && event == "scrape.stage" {
		p.stages = append(p.stages, m["stage"])
	}
}

func newTestOrchestrator(pages *fakePages, anidb *fakeAniDB, res *fakeResolver) (*Orchestrator, *fakeSeriesStore, *fakeEpisodeStore, *recordingPublisher) {
	seriesStore := &fakeSeriesStore{}
	episodeStore := &fakeEpisodeStore{stats: models.EnrichStats{Updated: 2, Unmatched: 1}}
	pub := &recordingPublisher{}
	return &Orchestrator{
		Pages:    pages,
		AniDB:    anidb,
		Series:   seriesStore,
		Episodes: episodeStore,
		Resolver: res,
		Events:   pub,
	}, seriesStore, episodeStore, pub
}

func TestScrapeHappyPath(t *testing.T) {
	page := episodePage(
		row("1", "The Day I Became a Shinigami", "Canon", "2004-10-05"),
		row("2", "A Shinigami's Work", "Canon", "2004-10-12"),
	)
	orch, seriesStore, episodeStore, pub := newTestOrchestrator(
		&fakePages{body: page},
		&fakeAniDB{body: bleachXML},
		&fakeResolver{result: &match.Result{AnimeID: 4516, MatchedTitle: "Bleach", Score: 1.0}},
	)

	summary, err := orch.Scrape(context.Background(), "https://www.animefillerlist.com/shows/bleach")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	if summary.Slug != "bleach" {
		t.Errorf("Slug = %q, want bleach", summary.Slug)
	}
	if summary.Title != "BLEACH" {
		t.Errorf("Title = %q, want BLEACH", summary.Title)
	}
	if summary.AniDBID == nil || *summary.AniDBID != 4516 {
		t.Errorf("AniDBID = %v, want 4516", summary.AniDBID)
	}
	if summary.Created != 2 || summary.Skipped != 0 {
		t.Errorf("counts = (%d, %d), want (2, 0)", summary.Created, summary.Skipped)
	}
	if summary.Enriched == nil || summary.Enriched.Updated != 2 || summary.Enriched.Unmatched != 1 {
		t.Errorf("Enriched = %+v, want {2 1}", summary.Enriched)
	}
	if summary.Warning != "" {
		t.Errorf("Warning = %q, want empty", summary.Warning)
	}

	if seriesStore.series.AniDBID == nil || *seriesStore.series.AniDBID != 4516 {
		t.Error("anidb id was not recorded on the series")
	}
	if seriesStore.applied == nil {
		t.Error("series enrichment fields were not applied")
	}
	if !seriesStore.touched {
		t.Error("last_fetched was not stamped")
	}
	if len(episodeStore.got) != 2 {
		t.Errorf("persisted %d episodes, want 2", len(episodeStore.got))
	}

	if last := pub.events[len(pub.events)-1]; last != "scrape.done" {
		t.Errorf("last published event = %q, want scrape.done", last)
	}
	if lastStage := pub.stages[len(pub.stages)-1]; lastStage != StageDone {
		t.Errorf("last published stage = %q, want %q", lastStage, StageDone)
	}
}

func TestScrapeWithoutMatchSkipsEnrichment(t *testing.T) {
	anidb := &fakeAniDB{body: bleachXML}
	orch, _, _, _ := newTestOrchestrator(
		&fakePages{body: episodePage(row("1", "Pilot", "Canon", "2020-01-01"))},
		anidb,
		&fakeResolver{result: nil},
	)

	summary, err := orch.Scrape(context.Background(), "https://www.animefillerlist.com/shows/obscure-show")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if summary.AniDBID != nil {
		t.Errorf("AniDBID = %v, want nil", summary.AniDBID)
	}
	if summary.Enriched != nil {
		t.Errorf("Enriched = %+v, want nil", summary.Enriched)
	}
	if anidb.calls != 0 {
		t.Errorf("anidb fetched %d times without a match, want 0", anidb.calls)
	}
}

func TestScrapeEnrichmentFailureIsWarning(t *testing.T) {
	orch, _, _, _ := newTestOrchestrator(
		&fakePages{body: episodePage(row("1", "Pilot", "Canon", "2020-01-01"))},
		&fakeAniDB{err: fault.New(fault.TransportFailure, "anidb", "anidb is down")},
		&fakeResolver{result: &match.Result{AnimeID: 1, Score: 1.0}},
	)

	summary, err := orch.Scrape(context.Background(), "https://www.animefillerlist.com/shows/bleach")
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if summary.Created != 1 {
		t.Errorf("Created = %d, basic data should still be saved", summary.Created)
	}
	if summary.Enriched != nil {
		t.Errorf("Enriched = %+v, want nil", summary.Enriched)
	}
	if !strings.Contains(summary.Warning, "enrichment failed") {
		t.Errorf("Warning = %q, want enrichment failure note", summary.Warning)
	}
}

func TestScrapeEmptyURL(t *testing.T) {
	orch, _, _, _ := newTestOrchestrator(&fakePages{}, &fakeAniDB{}, &fakeResolver{})

	_, err := orch.Scrape(context.Background(), "   ")
	if err == nil {
		t.Fatal("Scrape accepted an empty url")
	}
	if !fault.IsKind(err, fault.InvalidInput) {
		t.Errorf("error = %v, want InvalidInput", err)
	}
}

func TestScrapeNumberFallsBackToRowPosition(t *testing.T) {
	page := episodePage(
		row("1", "Pilot", "Canon", "2020-01-01"),
		row("junk", "Recap", "Filler", "2020-01-08"),
	)
	orch, _, episodeStore, _ := newTestOrchestrator(
		&fakePages{body: page}, &fakeAniDB{}, &fakeResolver{},
	)

	if _, err := orch.Scrape(context.Background(), "https://www.animefillerlist.com/shows/some-show"); err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(episodeStore.got) != 2 {
		t.Fatalf("persisted %d episodes, want 2", len(episodeStore.got))
	}
	if episodeStore.got[1].Number != 2 {
		t.Errorf("fallback number = %d, want row position 2", episodeStore.got[1].Number)
	}
}

func TestScrapeFetchFailureCarriesStage(t *testing.T) {
	orch, _, _, pub := newTestOrchestrator(
		&fakePages{err: fault.New(fault.TransportFailure, "fetch", "boom")},
		&fakeAniDB{}, &fakeResolver{},
	)

	_, err := orch.Scrape(context.Background(), "https://www.animefillerlist.com/shows/bleach")
	if err == nil {
		t.Fatal("Scrape swallowed the fetch failure")
	}
	var fe *fault.Error
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T, want *fault.Error", err)
	}
	if fe.Stage != "fetching_page" || fe.Kind != fault.TransportFailure {
		t.Errorf("fault = stage %q kind %v", fe.Stage, fe.Kind)
	}
	if last := pub.events[len(pub.events)-1]; last != "scrape.failed" {
		t.Errorf("last published event = %q, want scrape.failed", last)
	}
}

func TestEnrichMissingSeries(t *testing.T) {
	orch, _, _, _ := newTestOrchestrator(&fakePages{}, &fakeAniDB{}, &fakeResolver{})

	_, err := orch.Enrich(context.Background(), "no-such-series")
	if !fault.IsKind(err, fault.NotFound) {
		t.Errorf("error = %v, want NotFound", err)
	}
}

func TestEnrichWithoutAniDBID(t *testing.T) {
	orch, seriesStore, _, _ := newTestOrchestrator(&fakePages{}, &fakeAniDB{}, &fakeResolver{})
	seriesStore.series = &models.Series{ID: "series-1", Slug: "bleach", Title: "BLEACH"}

	_, err := orch.Enrich(context.Background(), "series-1")
	if !fault.IsKind(err, fault.InvalidInput) {
		t.Errorf("error = %v, want InvalidInput", err)
	}
}

func TestParseSlug(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.animefillerlist.com/shows/naruto-shippuden", "naruto-shippuden", false},
		{"https://www.animefillerlist.com/shows/bleach/", "bleach", false},
		{"https://example.com", "", true},
		{"://bad", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSlug(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSlug(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSlug(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
