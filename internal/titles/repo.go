package titles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"animehub/pkg/models"
)

// dumpName keys the single bookkeeping row in anidb_dump_meta.
const dumpName = "anime-titles"

// Repo stores the AniDB title corpus and its refresh bookkeeping.
// It satisfies match.TitleSource.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// FindExact does a case-insensitive lookup against the whole corpus. Uses the
// LOWER(title) index, so this is the cheap first pass of the cascade.
func (r *Repo) FindExact(ctx context.Context, title string) (int, bool, error) {
	var animeID int
	err := r.db.QueryRowContext(ctx,
		`SELECT anime_id FROM anidb_titles WHERE LOWER(title) = LOWER(?) LIMIT 1`,
		title,
	).Scan(&animeID)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("exact title lookup: %w", err)
	}
	return animeID, true, nil
}

// EnglishTitles returns the English and romanized-Japanese subset.
func (r *Repo) EnglishTitles(ctx context.Context) ([]models.TitleEntry, error) {
	return r.queryTitles(ctx,
		`SELECT anime_id, title_kind, language, title FROM anidb_titles WHERE language IN ('en', 'x-jat')`)
}

// AllTitles returns the entire corpus.
func (r *Repo) AllTitles(ctx context.Context) ([]models.TitleEntry, error) {
	return r.queryTitles(ctx,
		`SELECT anime_id, title_kind, language, title FROM anidb_titles`)
}

func (r *Repo) queryTitles(ctx context.Context, query string) ([]models.TitleEntry, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying titles: %w", err)
	}
	defer rows.Close()

	var entries []models.TitleEntry
	for rows.Next() {
		var e models.TitleEntry
		if err := rows.Scan(&e.AnimeID, &e.Kind, &e.Language, &e.Title); err != nil {
			return nil, fmt.Errorf("scanning title row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceAll swaps the whole corpus for the given dump inside one transaction
// and records the refresh in anidb_dump_meta. A failed import leaves the
// previous corpus untouched.
func (r *Repo) ReplaceAll(ctx context.Context, dump *Dump) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning titles import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM anidb_titles`); err != nil {
		return fmt.Errorf("clearing titles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO anidb_titles (id, anime_id, title_kind, language, title) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing title insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range dump.Entries {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), e.AnimeID, int(e.Kind), e.Language, e.Title); err != nil {
			return fmt.Errorf("inserting title for anime %d: %w", e.AnimeID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO anidb_dump_meta (id, dump_name, last_fetched, dump_created, entry_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (dump_name) DO UPDATE SET
			last_fetched = excluded.last_fetched,
			dump_created = excluded.dump_created,
			entry_count  = excluded.entry_count`,
		uuid.NewString(), dumpName, time.Now().UTC(), dump.Created, len(dump.Entries))
	if err != nil {
		return fmt.Errorf("recording dump metadata: %w", err)
	}

	return tx.Commit()
}

// LastFetched reports when the corpus was last imported. ok is false when no
// import has ever run.
func (r *Repo) LastFetched(ctx context.Context) (time.Time, bool, error) {
	var fetched sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT last_fetched FROM anidb_dump_meta WHERE dump_name = ?`, dumpName,
	).Scan(&fetched)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading dump metadata: %w", err)
	}
	return fetched.Time, fetched.Valid, nil
}

// Count returns the number of titles currently stored.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM anidb_titles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting titles: %w", err)
	}
	return n, nil
}
