package episodes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"animehub/pkg/database"
	"animehub/pkg/fault"
	"animehub/pkg/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

func seedSeries(t *testing.T, db *sql.DB, slug string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO series (id, slug, title) VALUES (?, ?, ?)`, id, slug, slug)
	if err != nil {
		t.Fatalf("seeding series: %v", err)
	}
	return id
}

func candidates(seriesID string, nums ...int) []NewEpisode {
	out := make([]NewEpisode, 0, len(nums))
	for _, n := range nums {
		out = append(out, NewEpisode{
			SeriesID: seriesID,
			Number:   n,
			Kind:     models.KindCanon,
			Title:    "Untitled",
			AirDate:  time.Date(2020, 1, n, 0, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func TestCreateManyIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	seriesID := seedSeries(t, db, "bleach")
	ctx := context.Background()

	created, skipped, err := repo.CreateMany(ctx, candidates(seriesID, 1, 2, 3))
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if created != 3 || skipped != 0 {
		t.Errorf("first run = (%d, %d), want (3, 0)", created, skipped)
	}

	created, skipped, err = repo.CreateMany(ctx, candidates(seriesID, 1, 2, 3))
	if err != nil {
		t.Fatalf("CreateMany rerun: %v", err)
	}
	if created != 0 || skipped != 3 {
		t.Errorf("rerun = (%d, %d), want (0, 3)", created, skipped)
	}
}

func TestCreateManyPartialOverlap(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	seriesID := seedSeries(t, db, "naruto")
	ctx := context.Background()

	if _, _, err := repo.CreateMany(ctx, candidates(seriesID, 1, 2)); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	created, skipped, err := repo.CreateMany(ctx, candidates(seriesID, 2, 3, 4))
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if created != 2 || skipped != 1 {
		t.Errorf("overlap run = (%d, %d), want (2, 1)", created, skipped)
	}

	eps, err := repo.ListBySeries(ctx, seriesID)
	if err != nil {
		t.Fatalf("ListBySeries: %v", err)
	}
	if len(eps) != 4 {
		t.Errorf("len(episodes) = %d, want 4", len(eps))
	}
}

func TestCreateManyDuplicateWithinBatch(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	seriesID := seedSeries(t, db, "dororo")

	created, skipped, err := repo.CreateMany(context.Background(), candidates(seriesID, 5, 5))
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if created != 1 || skipped != 1 {
		t.Errorf("dup batch = (%d, %d), want (1, 1)", created, skipped)
	}
}

func TestCreateManyRejectsBadBatch(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	seriesID := seedSeries(t, db, "gintama")
	ctx := context.Background()

	bad := candidates(seriesID, 1, 2)
	bad = append(bad, NewEpisode{SeriesID: seriesID, Number: 0})

	_, _, err := repo.CreateMany(ctx, bad)
	if err == nil {
		t.Fatal("CreateMany accepted a non-positive episode number")
	}
	var f *fault.Error
	if !errors.As(err, &f) || f.Kind != fault.InvalidInput {
		t.Errorf("error = %v, want InvalidInput fault", err)
	}

	// The valid front of the batch must not have been written.
	eps, err := repo.ListBySeries(ctx, seriesID)
	if err != nil {
		t.Fatalf("ListBySeries: %v", err)
	}
	if len(eps) != 0 {
		t.Errorf("len(episodes) = %d after rejected batch, want 0", len(eps))
	}
}

func TestEnrichFromAniDB(t *testing.T) {
	db := testDB(t)
	repo := NewRepo(db)
	seriesID := seedSeries(t, db, "bleach")
	ctx := context.Background()

	if _, _, err := repo.CreateMany(ctx, candidates(seriesID, 1, 2, 3)); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	length := 24
	titleJA := "死神代行"
	incoming := []models.AniDBEpisode{
		{EpisodeID: 201, Number: 2, Length: &length, TitleJA: &titleJA},
		{EpisodeID: 301, Number: 3},
		{EpisodeID: 401, Number: 4},
	}

	stats, err := repo.EnrichFromAniDB(ctx, seriesID, incoming)
	if err != nil {
		t.Fatalf("EnrichFromAniDB: %v", err)
	}
	if stats.Updated != 2 {
		t.Errorf("Updated = %d, want 2", stats.Updated)
	}
	if stats.Unmatched != 1 {
		t.Errorf("Unmatched = %d, want 1", stats.Unmatched)
	}

	eps, err := repo.ListBySeries(ctx, seriesID)
	if err != nil {
		t.Fatalf("ListBySeries: %v", err)
	}

	// Episode 1 had no AniDB counterpart and stays untouched.
	if eps[0].AniDBID != nil {
		t.Errorf("episode 1 anidb_id = %v, want nil", *eps[0].AniDBID)
	}
	if eps[1].AniDBID == nil || *eps[1].AniDBID != 201 {
		t.Errorf("episode 2 anidb_id = %v, want 201", eps[1].AniDBID)
	}
	if eps[1].TitleJA == nil || *eps[1].TitleJA != titleJA {
		t.Errorf("episode 2 title_ja = %v, want %q", eps[1].TitleJA, titleJA)
	}
	if eps[2].AniDBID == nil || *eps[2].AniDBID != 301 {
		t.Errorf("episode 3 anidb_id = %v, want 301", eps[2].AniDBID)
	}
}
