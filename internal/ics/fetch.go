package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/deweywellingtoncat/remarkable-dashboard-repo/internal/log"
)

// Source is one calendar feed subscription.
type Source struct {
	ID  string
	URL string
}

// FetchResult is the outcome of fetching one feed.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

// cacheEntry holds HTTP cache metadata for one feed URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher downloads calendar feeds with a per-feed retry budget and an
// ETag / Last-Modified disk cache so an unreachable feed can still serve
// its last known body.
type Fetcher struct {
	client     *http.Client
	cacheDir   string
	retries    int
	retryDelay time.Duration
}

// NewFetcher creates a Fetcher. cacheDir holds per-URL cached bodies and
// metadata; an empty value falls back to a relative development path.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/feed-cache"
	}
	return &Fetcher{
		client:     &http.Client{Timeout: 15 * time.Second},
		cacheDir:   cacheDir,
		retries:    3,
		retryDelay: 5 * time.Second,
	}
}

// FetchMerged fetches every source and merges all their VEVENTs into a
// single calendar payload. Per-feed failures are logged and skipped; the
// merge of zero feeds is an empty (but well-formed) calendar so the
// resolver downstream degrades to an empty event list.
func (f *Fetcher) FetchMerged(ctx context.Context, sources []Source) []byte {
	results := f.FetchAll(ctx, sources)
	return MergePayloads(results)
}

// FetchAll fetches all sources, returning a result per source that
// produced a body, from the network or from cache.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) []FetchResult {
	results := make([]FetchResult, 0, len(sources))
	for _, src := range sources {
		if strings.Contains(src.URL, "PASTE_YOUR") {
			appLog.Warn("fetch: skipping placeholder feed url", "id", src.ID)
			continue
		}
		res, err := f.fetchOne(ctx, src)
		if err != nil {
			appLog.Error("fetch: feed failed", err, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		results = append(results, res)
	}
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, src Source) (FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < f.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return FetchResult{}, ctx.Err()
			case <-time.After(f.retryDelay):
			}
		}
		res, err := f.request(ctx, src)
		if err == nil {
			return res, nil
		}
		lastErr = err
		appLog.Warn("fetch: attempt failed", "id", src.ID, "attempt", attempt+1, "err", err)
	}
	return FetchResult{}, lastErr
}

func (f *Fetcher) request(ctx context.Context, src Source) (FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}

	meta := f.loadMeta(src.URL)
	if meta != nil {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		body, cerr := os.ReadFile(f.bodyPath(src.URL))
		if cerr != nil {
			return FetchResult{}, fmt.Errorf("304 but no cached body: %w", cerr)
		}
		return FetchResult{Source: src, Body: body, FromCache: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return FetchResult{}, err
	}
	if len(body) == 0 {
		return FetchResult{}, errors.New("empty feed body")
	}

	f.storeCache(src.URL, body, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"))
	return FetchResult{Source: src, Body: body}, nil
}

// MergePayloads parses each fetched body and appends every VEVENT into
// one fresh calendar, serialized back to text. Feeds that do not parse
// are logged and skipped.
func MergePayloads(results []FetchResult) []byte {
	merged := ical.NewCalendar()
	merged.SetProductId("-//remarkable-dashboard//feed merge//EN")
	merged.SetVersion("2.0")

	total := 0
	for _, res := range results {
		cal, err := ical.ParseCalendar(strings.NewReader(string(res.Body)))
		if err != nil {
			appLog.Error("merge: feed unparsable, skipped", err, "id", res.Source.ID)
			continue
		}
		for _, ve := range cal.Events() {
			merged.Components = append(merged.Components, ve)
			total++
		}
	}

	appLog.Info("merge: feeds combined", "feeds", len(results), "events", total)
	return []byte(merged.Serialize())
}

func (f *Fetcher) cacheKey(feedURL string) string {
	sum := sha256.Sum256([]byte(feedURL))
	return hex.EncodeToString(sum[:8])
}

func (f *Fetcher) bodyPath(feedURL string) string {
	return filepath.Join(f.cacheDir, f.cacheKey(feedURL)+".ics")
}

func (f *Fetcher) metaPath(feedURL string) string {
	return filepath.Join(f.cacheDir, f.cacheKey(feedURL)+".json")
}

func (f *Fetcher) loadMeta(feedURL string) *cacheEntry {
	data, err := os.ReadFile(f.metaPath(feedURL))
	if err != nil {
		return nil
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	return &entry
}

func (f *Fetcher) storeCache(feedURL string, body []byte, etag, lastModified string) {
	if err := os.MkdirAll(f.cacheDir, 0o700); err != nil {
		appLog.Warn("fetch: cache dir unavailable", "dir", f.cacheDir, "err", err)
		return
	}
	if err := os.WriteFile(f.bodyPath(feedURL), body, 0o600); err != nil {
		appLog.Warn("fetch: cache body write failed", "err", err)
		return
	}
	entry := cacheEntry{URL: feedURL, ETag: etag, LastModified: lastModified, UpdatedAt: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.WriteFile(f.metaPath(feedURL), data, 0o600); err != nil {
		appLog.Warn("fetch: cache meta write failed", "err", err)
	}
}

// redactURL strips query and userinfo so feed secrets never reach logs.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparsable url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
