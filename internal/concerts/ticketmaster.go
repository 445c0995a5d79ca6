// Package concerts finds upcoming shows for a listener's artists on the
// Ticketmaster Discovery API and merges them into one chronological,
// duplicate-free timeline.
package concerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ademuri/taste-engine/internal/domain"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://app.ticketmaster.com/discovery/v2"
	// PageSize is the number of events requested per artist.
	PageSize = 50

	// The Discovery API rejects fractional seconds and offsets.
	queryTimeFormat = "2006-01-02T15:04:05Z"
)

// ErrNoAPIKey is returned when no Ticketmaster key is configured.
var ErrNoAPIKey = errors.New("concerts: no ticketing API key configured")

type eventsResponse struct {
	Embedded struct {
		Events []wireEvent `json:"events"`
	} `json:"_embedded"`
}

type wireEvent struct {
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			DateTime  string `json:"dateTime"`
			LocalDate string `json:"localDate"`
		} `json:"start"`
	} `json:"dates"`
	Embedded struct {
		Attractions []struct {
			Name string `json:"name"`
		} `json:"attractions"`
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			State struct {
				StateCode string `json:"stateCode"`
			} `json:"state"`
			Country struct {
				Name string `json:"name"`
			} `json:"country"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// Client queries the Discovery API. Requests are paced by a shared limiter
// so a fan-out over many artists stays under the per-second quota.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

// Events returns the music events matching artist between start and end, in
// the order the API returned them. city, if set, narrows the query upstream.
func (c *Client) Events(ctx context.Context, artist, city string, start, end time.Time) ([]domain.ConcertEvent, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	artist = strings.TrimSpace(artist)

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("keyword", artist)
	params.Set("classificationName", "music")
	params.Set("startDateTime", start.UTC().Format(queryTimeFormat))
	params.Set("endDateTime", end.UTC().Format(queryTimeFormat))
	params.Set("size", fmt.Sprint(PageSize))
	params.Set("sort", "date,asc")
	if city = strings.TrimSpace(city); city != "" {
		params.Set("city", city)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("concerts: waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("concerts: building request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("concerts: %q: %w", artist, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("concerts: %q: status %d: %s", artist, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("concerts: decoding events for %q: %w", artist, err)
	}

	events := make([]domain.ConcertEvent, 0, len(parsed.Embedded.Events))
	for _, e := range parsed.Embedded.Events {
		events = append(events, mapEvent(e, artist))
	}
	return events, nil
}

func mapEvent(e wireEvent, queried string) domain.ConcertEvent {
	event := domain.ConcertEvent{
		Artist: queried,
		Date:   e.Dates.Start.DateTime,
		URL:    e.URL,
	}
	if event.Date == "" {
		event.Date = e.Dates.Start.LocalDate
	}
	if len(e.Embedded.Attractions) > 0 && e.Embedded.Attractions[0].Name != "" {
		event.Artist = e.Embedded.Attractions[0].Name
	}
	if len(e.Embedded.Venues) > 0 {
		v := e.Embedded.Venues[0]
		event.Venue = v.Name
		event.City = v.City.Name
		event.Region = v.State.StateCode
		event.Country = v.Country.Name
	}
	return event
}
