package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"animehub/internal/auth"
	"animehub/internal/episodes"
	"animehub/internal/events"
	"animehub/internal/match"
	"animehub/internal/scrape"
	"animehub/internal/series"
	"animehub/internal/titles"
	"animehub/pkg/database"
	"animehub/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := events.NewHub()
	router.GET("/ws", events.WSHandler(hub))
	tcpSrv := events.NewServer(":7070", hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Repos
	seriesRepo := series.NewRepo(db)
	episodeRepo := episodes.NewRepo(db)
	titleRepo := titles.NewRepo(db)
	authRepo := auth.NewRepo(db)

	// Series (public read API)
	seriesHandler := series.NewHandler(seriesRepo, episodeRepo)
	seriesHandler.RegisterRoutes(router.Group("/series"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokens := auth.Tokens{
		Secret: []byte(authCfg.JWTSecret),
		Issuer: authCfg.JWTIssuer,
		TTL:    authCfg.JWTDuration,
	}
	authHandler := auth.NewHandler(authRepo, tokens)
	authHandler.RegisterRoutes(router.Group("/auth"))

	protected := router.Group("/")
	protected.Use(auth.RequireAuth(tokens, authRepo))

	protected.GET("/users/me", func(c *gin.Context) {
		claims := auth.ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
		})
	})

	// Scrape pipeline (protected; it writes and hits third-party sites)
	anidbCfg := utils.LoadAniDBConfig()
	matchCfg := utils.LoadMatchConfig()
	orch := &scrape.Orchestrator{
		Pages: scrape.NewClient(),
		AniDB: scrape.NewAniDBClient(anidbCfg),
		Resolver: match.NewResolver(titleRepo, match.Config{
			Threshold:      matchCfg.Threshold,
			TopN:           matchCfg.TopN,
			PreferOfficial: matchCfg.PreferOfficial,
		}),
		Series:   seriesRepo,
		Episodes: episodeRepo,
		Events:   hub,
	}
	scrape.NewHandler(orch).RegisterRoutes(protected)

	// Title corpus
	refresher := titles.NewRefresher(titleRepo, &titles.HTTPFetcher{}, anidbCfg.TitleDumpURL)
	titles.NewHandler(titleRepo, refresher).RegisterRoutes(router.Group("/"), protected)

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
