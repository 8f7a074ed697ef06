package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"animehub/internal/episodes"
	"animehub/internal/match"
	"animehub/internal/scrape"
	"animehub/internal/series"
	"animehub/internal/titles"
	"animehub/pkg/database"
	"animehub/pkg/utils"
)

func main() {
	var (
		url     = flag.String("url", "", "episode list URL to scrape (required)")
		timeout = flag.Duration("timeout", 120*time.Second, "overall scrape timeout")
	)
	flag.Parse()

	if *url == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	matchCfg := utils.LoadMatchConfig()
	orch := &scrape.Orchestrator{
		Pages: scrape.NewClient(),
		AniDB: scrape.NewAniDBClient(utils.LoadAniDBConfig()),
		Resolver: match.NewResolver(titles.NewRepo(db), match.Config{
			Threshold:      matchCfg.Threshold,
			TopN:           matchCfg.TopN,
			PreferOfficial: matchCfg.PreferOfficial,
		}),
		Series:   series.NewRepo(db),
		Episodes: episodes.NewRepo(db),
	}

	summary, err := orch.Scrape(ctx, *url)
	if err != nil {
		log.Fatalf("scrape failed: %v", err)
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	os.Stdout.Write(append(out, '\n'))

	log.Printf("✅ scraped %q: %d created, %d skipped", summary.Slug, summary.Created, summary.Skipped)
	if summary.Warning != "" {
		log.Printf("warning: %s", summary.Warning)
	}
}
