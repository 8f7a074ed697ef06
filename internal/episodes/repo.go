package episodes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"animehub/pkg/fault"
	"animehub/pkg/models"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// NewEpisode is one candidate row for CreateMany.
type NewEpisode struct {
	SeriesID string
	Number   int
	Kind     models.EpisodeKind
	Title    string
	AirDate  time.Time
}

// CreateMany inserts the candidates that do not already exist, keyed by
// (series_id, episode_num), and reports how many were created and how many
// were skipped as duplicates. The whole batch is validated up front: any
// candidate with an empty series id or a non-positive number rejects the
// batch with no writes. Inserts run in one transaction, so re-running the
// same batch is idempotent.
func (r *Repo) CreateMany(ctx context.Context, candidates []NewEpisode) (created, skipped int64, err error) {
	if len(candidates) == 0 {
		return 0, 0, nil
	}

	for i, c := range candidates {
		if c.SeriesID == "" {
			return 0, 0, fault.New(fault.InvalidInput, "episodes",
				fmt.Sprintf("candidate %d has no series id", i))
		}
		if c.Number <= 0 {
			return 0, 0, fault.New(fault.InvalidInput, "episodes",
				fmt.Sprintf("candidate %d has non-positive episode number %d", i, c.Number))
		}
	}

	existing, err := r.existingKeys(ctx, candidates)
	if err != nil {
		return 0, 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning episode insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO episodes (id, series_id, episode_num, episode_kind, title, airdate)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, fmt.Errorf("preparing episode insert: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		key := episodeKey(c.SeriesID, c.Number)
		if existing[key] || seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		_, err := stmt.ExecContext(ctx, uuid.NewString(), c.SeriesID, c.Number,
			c.Kind.StorageCode(), c.Title, c.AirDate.UTC())
		if err != nil {
			return 0, 0, fmt.Errorf("inserting episode %d: %w", c.Number, err)
		}
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing episode insert: %w", err)
	}
	return created, skipped, nil
}

func episodeKey(seriesID string, num int) string {
	return fmt.Sprintf("%s/%d", seriesID, num)
}

// existingKeys loads the (series_id, episode_num) pairs already stored for
// every series touched by the batch.
func (r *Repo) existingKeys(ctx context.Context, candidates []NewEpisode) (map[string]bool, error) {
	seriesIDs := make(map[string]bool)
	for _, c := range candidates {
		seriesIDs[c.SeriesID] = true
	}

	keys := make(map[string]bool)
	for seriesID := range seriesIDs {
		rows, err := r.db.QueryContext(ctx,
			`SELECT episode_num FROM episodes WHERE series_id = ?`, seriesID)
		if err != nil {
			return nil, fmt.Errorf("loading existing episodes: %w", err)
		}
		for rows.Next() {
			var num int
			if err := rows.Scan(&num); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning episode number: %w", err)
			}
			keys[episodeKey(seriesID, num)] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return keys, nil
}

// ListBySeries returns a series' episodes in episode-number order.
func (r *Repo) ListBySeries(ctx context.Context, seriesID string) ([]models.Episode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, series_id, episode_num, episode_kind, title, anidb_id,
		       title_ja, airdate, length, summary, crunchyroll_id
		FROM episodes WHERE series_id = ? ORDER BY episode_num`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("listing episodes: %w", err)
	}
	defer rows.Close()

	var out []models.Episode
	for rows.Next() {
		var (
			e     models.Episode
			code  string
			title sql.NullString
		)
		err := rows.Scan(&e.ID, &e.SeriesID, &e.EpisodeNum, &code, &title,
			&e.AniDBID, &e.TitleJA, &e.AirDate, &e.Length, &e.Summary, &e.CrunchyrollID)
		if err != nil {
			return nil, fmt.Errorf("scanning episode row: %w", err)
		}
		kind, err := models.KindFromStorageCode(code)
		if err != nil {
			return nil, fmt.Errorf("episode %s: %w", e.ID, err)
		}
		e.Kind = kind
		e.Title = title.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// numbersBySeries maps episode_num -> row id for one series.
func (r *Repo) numbersBySeries(ctx context.Context, seriesID string) (map[int]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, episode_num FROM episodes WHERE series_id = ?`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("loading episode numbers: %w", err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var (
			id  string
			num int
		)
		if err := rows.Scan(&id, &num); err != nil {
			return nil, fmt.Errorf("scanning episode number: %w", err)
		}
		out[num] = id
	}
	return out, rows.Err()
}
