package series

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"animehub/pkg/models"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const seriesColumns = `id, slug, title, last_fetched, anidb_id, anime_type,
	episode_count, start_date, end_date, title_ja, description, official_url`

func scanSeries(row interface{ Scan(...any) error }) (*models.Series, error) {
	var s models.Series
	err := row.Scan(
		&s.ID, &s.Slug, &s.Title, &s.LastFetched, &s.AniDBID, &s.AnimeType,
		&s.EpisodeCount, &s.StartDate, &s.EndDate, &s.TitleJA, &s.Description, &s.OfficialURL,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindBySlug returns the series with the given slug, or nil when absent.
func (r *Repo) FindBySlug(ctx context.Context, slug string) (*models.Series, error) {
	s, err := scanSeries(r.db.QueryRowContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE slug = ?`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding series by slug: %w", err)
	}
	return s, nil
}

// FindByID returns the series with the given id, or nil when absent.
func (r *Repo) FindByID(ctx context.Context, id string) (*models.Series, error) {
	s, err := scanSeries(r.db.QueryRowContext(ctx,
		`SELECT `+seriesColumns+` FROM series WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding series by id: %w", err)
	}
	return s, nil
}

// List returns all series ordered by title.
func (r *Repo) List(ctx context.Context) ([]models.Series, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seriesColumns+` FROM series ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("listing series: %w", err)
	}
	defer rows.Close()

	var out []models.Series
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning series row: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// FindOrCreate returns the series with the given slug, creating it with the
// given title when it does not exist yet. The bool reports whether a row was
// created.
func (r *Repo) FindOrCreate(ctx context.Context, slug, title string) (*models.Series, bool, error) {
	existing, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	s := &models.Series{
		ID:    uuid.NewString(),
		Slug:  slug,
		Title: title,
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO series (id, slug, title) VALUES (?, ?, ?)
		 ON CONFLICT (slug) DO NOTHING`, s.ID, s.Slug, s.Title)
	if err != nil {
		return nil, false, fmt.Errorf("creating series: %w", err)
	}

	// A concurrent scrape may have won the insert race; re-read either way.
	stored, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("series %q vanished after insert", slug)
	}
	return stored, stored.ID == s.ID, nil
}

// ApplyAniDB writes the enrichment fields onto a series.
func (r *Repo) ApplyAniDB(ctx context.Context, seriesID string, animeID int, upd models.SeriesAniDBUpdate) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE series SET
			anidb_id = ?, anime_type = ?, episode_count = ?, start_date = ?,
			end_date = ?, title_ja = ?, description = ?, official_url = ?
		WHERE id = ?`,
		animeID, upd.AnimeType, upd.EpisodeCount, upd.StartDate,
		upd.EndDate, upd.TitleJA, upd.Description, upd.OfficialURL, seriesID)
	if err != nil {
		return fmt.Errorf("applying anidb fields: %w", err)
	}
	return nil
}

// SetAniDBID records the matched anime id without touching the other
// enrichment fields.
func (r *Repo) SetAniDBID(ctx context.Context, seriesID string, animeID int) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE series SET anidb_id = ? WHERE id = ?`, animeID, seriesID); err != nil {
		return fmt.Errorf("setting anidb id: %w", err)
	}
	return nil
}

// TouchLastFetched stamps the series with the time of its latest scrape.
func (r *Repo) TouchLastFetched(ctx context.Context, seriesID string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE series SET last_fetched = ? WHERE id = ?`, at.UTC(), seriesID); err != nil {
		return fmt.Errorf("touching last_fetched: %w", err)
	}
	return nil
}
