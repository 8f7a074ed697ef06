package titles

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"animehub/pkg/fault"
)

// refreshInterval is the minimum spacing between dump downloads. AniDB bans
// clients that pull the dump more than once a day.
const refreshInterval = 24 * time.Hour

// Fetcher retrieves the raw title dump. Faked in tests.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher downloads the dump over HTTP.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fault.Wrap(fault.TransportFailure, "titles", "building dump request", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fault.Wrap(fault.TransportFailure, "titles", "downloading title dump", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fault.New(fault.TransportFailure, "titles",
			fmt.Sprintf("title dump returned status %d", resp.StatusCode))
	}
	return resp.Body, nil
}

// Refresher keeps the stored corpus in sync with the published dump while
// honoring the once-per-day limit.
type Refresher struct {
	Repo    *Repo
	Fetcher Fetcher
	DumpURL string
}

func NewRefresher(repo *Repo, fetcher Fetcher, dumpURL string) *Refresher {
	return &Refresher{Repo: repo, Fetcher: fetcher, DumpURL: dumpURL}
}

// IsFresh reports whether the last import is recent enough to skip a refresh.
func (r *Refresher) IsFresh(ctx context.Context) (bool, error) {
	fetched, ok, err := r.Repo.LastFetched(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return time.Since(fetched) < refreshInterval, nil
}

// Refresh downloads and imports the dump unless the stored corpus is still
// fresh. Returns the number of titles now stored.
func (r *Refresher) Refresh(ctx context.Context) (int64, error) {
	fresh, err := r.IsFresh(ctx)
	if err != nil {
		return 0, err
	}
	if fresh {
		log.Printf("[titles] corpus is fresh, skipping download")
		return r.Repo.Count(ctx)
	}

	body, err := r.Fetcher.Fetch(ctx, r.DumpURL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	reader, err := maybeGunzip(body)
	if err != nil {
		return 0, fault.Wrap(fault.ParseFailure, "titles", "decompressing title dump", err)
	}

	dump, err := ParseDump(reader)
	if err != nil {
		return 0, err
	}
	if len(dump.Entries) == 0 {
		return 0, fault.New(fault.ParseFailure, "titles", "title dump contained no entries")
	}

	if err := r.Repo.ReplaceAll(ctx, dump); err != nil {
		return 0, err
	}
	log.Printf("[titles] imported %d titles (dump created %s)", len(dump.Entries), dump.Created)
	return int64(len(dump.Entries)), nil
}

// ParseDumpFile parses a dump that may or may not be gzipped.
func ParseDumpFile(r io.Reader) (*Dump, error) {
	reader, err := maybeGunzip(r)
	if err != nil {
		return nil, fault.Wrap(fault.ParseFailure, "titles", "decompressing title dump", err)
	}
	return ParseDump(reader)
}

// maybeGunzip sniffs the gzip magic bytes so plain-text dumps (tests, local
// files) pass through unchanged.
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}
