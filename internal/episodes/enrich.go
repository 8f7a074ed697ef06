package episodes

import (
	"context"
	"fmt"

	"animehub/pkg/models"
)

// EnrichFromAniDB merges AniDB episode data onto a series' stored episodes
// by episode number. Episodes present on both sides get the AniDB fields
// written; AniDB episodes with no stored counterpart count as unmatched.
// Stored episodes AniDB does not know about are left untouched.
func (r *Repo) EnrichFromAniDB(ctx context.Context, seriesID string, eps []models.AniDBEpisode) (models.EnrichStats, error) {
	var stats models.EnrichStats

	byNumber, err := r.numbersBySeries(ctx, seriesID)
	if err != nil {
		return stats, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("beginning enrichment: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE episodes SET
			anidb_id = ?, title_ja = ?, airdate = ?, length = ?,
			summary = ?, crunchyroll_id = ?
		WHERE id = ?`)
	if err != nil {
		return stats, fmt.Errorf("preparing enrichment update: %w", err)
	}
	defer stmt.Close()

	for _, ep := range eps {
		rowID, ok := byNumber[ep.Number]
		if !ok {
			stats.Unmatched++
			continue
		}
		_, err := stmt.ExecContext(ctx, ep.EpisodeID, ep.TitleJA, ep.AirDate,
			ep.Length, ep.Summary, ep.CrunchyrollID, rowID)
		if err != nil {
			return models.EnrichStats{}, fmt.Errorf("enriching episode %d: %w", ep.Number, err)
		}
		stats.Updated++
	}

	if err := tx.Commit(); err != nil {
		return models.EnrichStats{}, fmt.Errorf("committing enrichment: %w", err)
	}
	return stats, nil
}
