// Package charts reads national most-played charts from the Apple Music RSS
// feed.
package charts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ademuri/taste-engine/internal/cache"
	"github.com/ademuri/taste-engine/internal/domain"
)

const (
	DefaultBaseURL = "https://rss.applemarketingtools.com/api/v2"
	DefaultTTL     = 5 * time.Minute
	chartSize      = 50
)

type feedResponse struct {
	Feed struct {
		Results []struct {
			Name       string `json:"name"`
			ArtistName string `json:"artistName"`
			URL        string `json:"url"`
		} `json:"results"`
	} `json:"feed"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      cache.Cache
	ttl        time.Duration
}

// NewClient returns a chart client. c may be nil to disable caching.
func NewClient(httpClient *http.Client, baseURL string, c cache.Cache) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cache:      c,
		ttl:        DefaultTTL,
	}
}

// TopSongs returns the storefront's most-played songs, best first.
func (c *Client) TopSongs(ctx context.Context, storefront string) ([]domain.ChartEntry, error) {
	key := "chart:" + storefront
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return decodeFeed(body)
		}
	}

	u := fmt.Sprintf("%s/%s/music/most-played/%d/songs.json", c.baseURL, url.PathEscape(storefront), chartSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("charts: building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("charts: %s: %w", storefront, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("charts: %s: status %d", storefront, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("charts: decoding %s: %w", storefront, err)
	}
	entries, err := decodeFeed(raw)
	if err != nil {
		return nil, err
	}
	if c.cache != nil && len(entries) > 0 {
		c.cache.Set(key, raw, c.ttl)
	}
	return entries, nil
}

func decodeFeed(body []byte) ([]domain.ChartEntry, error) {
	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("charts: decoding feed: %w", err)
	}
	entries := make([]domain.ChartEntry, 0, len(feed.Feed.Results))
	for _, r := range feed.Feed.Results {
		entries = append(entries, domain.ChartEntry{Title: r.Name, Artist: r.ArtistName, URL: r.URL})
	}
	return entries, nil
}
