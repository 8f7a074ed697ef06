package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"animehub/internal/titles"
	"animehub/pkg/database"
	"animehub/pkg/utils"
)

// Imports the AniDB title dump into the local corpus, either from a file
// (possibly gzipped) or by downloading the published dump. The download path
// honors the once-per-day refresh gate; -file always replaces the corpus.
func main() {
	var (
		file    = flag.String("file", "", "local dump file (.dat or .dat.gz); downloads when empty")
		timeout = flag.Duration("timeout", 5*time.Minute, "import timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := titles.NewRepo(db)

	if *file != "" {
		n, err := importFile(ctx, repo, *file)
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}
		log.Printf("✅ imported %d titles from %s", n, *file)
		return
	}

	cfg := utils.LoadAniDBConfig()
	refresher := titles.NewRefresher(repo, &titles.HTTPFetcher{}, cfg.TitleDumpURL)
	n, err := refresher.Refresh(ctx)
	if err != nil {
		log.Fatalf("refresh failed: %v", err)
	}
	log.Printf("✅ corpus holds %d titles", n)
}

func importFile(ctx context.Context, repo *titles.Repo, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dump, err := titles.ParseDumpFile(f)
	if err != nil {
		return 0, err
	}
	if err := repo.ReplaceAll(ctx, dump); err != nil {
		return 0, err
	}
	return len(dump.Entries), nil
}
