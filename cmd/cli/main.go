package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"animehub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

type seriesListResponse struct {
	Total int             `json:"total"`
	Items []models.Series `json:"items"`
}

func main() {
	global := flag.NewFlagSet("animehub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 5 * time.Minute}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "series":
		handleSeries(ctx, client, *baseURL, sub, args[2:])
	case "scrape":
		handleScrape(ctx, client, *baseURL, *tokenPath, args[1:])
	case "enrich":
		handleEnrich(ctx, client, *baseURL, *tokenPath, args[1:])
	case "titles":
		handleTitles(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "events":
		handleEvents(*baseURL, sub)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		payload := map[string]string{"username": *username, "email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("✅ registered and logged in")
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("✅ logged in")
	case "logout":
		token := mustToken(tokenPath)
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/logout", token, nil, nil); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("clear token: %v", err)
		}
		fmt.Println("✅ logged out")
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleSeries(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "list":
		var resp seriesListResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/series", "", nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "show":
		if len(args) == 0 {
			log.Fatal("usage: series show <slug>")
		}
		var s models.Series
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/series/"+args[0], "", nil, &s); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(s)
	case "episodes":
		if len(args) == 0 {
			log.Fatal("usage: series episodes <slug>")
		}
		var out json.RawMessage
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/series/"+args[0]+"/episodes", "", nil, &out); err != nil {
			log.Fatalf("episodes failed: %v", err)
		}
		printJSON(out)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleScrape(ctx context.Context, client *http.Client, baseURL, tokenPath string, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: scrape <episode-list-url>")
	}
	token := mustToken(tokenPath)

	var summary models.SeriesSummary
	payload := map[string]string{"url": args[0]}
	if err := doJSON(ctx, client, http.MethodPost, baseURL+"/scrape", token, payload, &summary); err != nil {
		log.Fatalf("scrape failed: %v", err)
	}

	fmt.Printf("✅ scraped %q: %d created, %d skipped\n", summary.Slug, summary.Created, summary.Skipped)
	if summary.Enriched != nil {
		fmt.Printf("   enriched: %d updated, %d unmatched\n", summary.Enriched.Updated, summary.Enriched.Unmatched)
	}
	if summary.Warning != "" {
		fmt.Printf("   warning: %s\n", summary.Warning)
	}
}

func handleEnrich(ctx context.Context, client *http.Client, baseURL, tokenPath string, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: enrich <series-id>")
	}
	token := mustToken(tokenPath)

	var stats models.EnrichStats
	endpoint := baseURL + "/series/" + args[0] + "/enrich"
	if err := doJSON(ctx, client, http.MethodPost, endpoint, token, nil, &stats); err != nil {
		log.Fatalf("enrich failed: %v", err)
	}
	fmt.Printf("✅ enriched: %d updated, %d unmatched\n", stats.Updated, stats.Unmatched)
}

func handleTitles(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "status":
		var out json.RawMessage
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/titles/status", "", nil, &out); err != nil {
			log.Fatalf("status failed: %v", err)
		}
		printJSON(out)
	case "refresh":
		token := mustToken(tokenPath)
		var out json.RawMessage
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/titles/refresh", token, nil, &out); err != nil {
			log.Fatalf("refresh failed: %v", err)
		}
		printJSON(out)
	default:
		printUsage()
		os.Exit(1)
	}
}

// handleEvents tails the scrape event feed over WebSocket until interrupted.
func handleEvents(baseURL, sub string) {
	if sub != "tail" {
		printUsage()
		os.Exit(1)
	}

	wsURL, err := websocketURL(baseURL, "/ws")
	if err != nil {
		log.Fatalf("bad api url: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()
	log.Printf("connected to %s, waiting for events (ctrl-c to stop)", wsURL)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			fmt.Print(string(msg))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-done:
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.animehub-token.json"
	}
	return filepath.Join(home, ".animehub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: path}).String(), nil
}

func printUsage() {
	fmt.Println("animehub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth register|login|logout")
	fmt.Println("  series list|show|episodes")
	fmt.Println("  scrape <episode-list-url>")
	fmt.Println("  enrich <series-id>")
	fmt.Println("  titles status|refresh")
	fmt.Println("  events tail")
}
