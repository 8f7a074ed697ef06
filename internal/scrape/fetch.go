package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"animehub/pkg/fault"
	"animehub/pkg/utils"
)

// Client fetches episode-list pages over HTTP.
type Client struct {
	HTTP *http.Client
}

func NewClient() *Client {
	return &Client{HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// FetchPage retrieves url and returns the response body. Non-2xx statuses
// are errors.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fault.New(fault.InvalidInput, "fetch", "url cannot be empty")
	}
	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fault.Wrap(fault.TransportFailure, "fetch", "building request", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fault.Wrap(fault.TransportFailure, "fetch", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fault.New(fault.TransportFailure, "fetch",
			fmt.Sprintf("request returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fault.Wrap(fault.TransportFailure, "fetch", "reading response body", err)
	}
	return string(body), nil
}

// AniDBClient fetches anime records from the AniDB HTTP API.
type AniDBClient struct {
	client *Client
	cfg    utils.AniDBConfig
}

func NewAniDBClient(cfg utils.AniDBConfig) *AniDBClient {
	return &AniDBClient{client: NewClient(), cfg: cfg}
}

// FetchAnime retrieves the XML record for one anime id. The client id and
// version are required; AniDB rejects unidentified clients.
func (c *AniDBClient) FetchAnime(ctx context.Context, animeID int) (string, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientVersion == "" {
		return "", fault.New(fault.InvalidInput, "anidb",
			"ANIDB_CLIENT_ID and ANIDB_CLIENT_VERSION must be set")
	}
	url := fmt.Sprintf("%s?client=%s&clientver=%s&protover=1&request=anime&aid=%d",
		c.cfg.BaseURL, c.cfg.ClientID, c.cfg.ClientVersion, animeID)
	return c.client.get(ctx, url)
}
