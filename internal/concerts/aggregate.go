package concerts

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/ademuri/taste-engine/internal/fanout"
)

// MaxArtists bounds how many artists one aggregation queries.
const MaxArtists = 10

// EventSource is the ticketing API. *Client implements it.
type EventSource interface {
	Events(ctx context.Context, artist, city string, start, end time.Time) ([]domain.ConcertEvent, error)
}

// Result is an aggregated timeline. Events is Baseline narrowed to the
// requested city; with no city they are the same list.
type Result struct {
	Events   []domain.ConcertEvent `json:"events"`
	Baseline []domain.ConcertEvent `json:"-"`
	Total    int                   `json:"total"`
	TotalAll int                   `json:"totalAll"`
}

type Aggregator struct {
	source EventSource
	now    func() time.Time
}

func NewAggregator(source EventSource) *Aggregator {
	return &Aggregator{source: source, now: time.Now}
}

// FetchEvents queries the first MaxArtists artists concurrently for shows in
// the coming year. A failed artist query contributes nothing.
func (a *Aggregator) FetchEvents(ctx context.Context, artists []string, city string) Result {
	var names []string
	for _, artist := range artists {
		if artist = strings.TrimSpace(artist); artist != "" {
			names = append(names, artist)
		}
	}
	if len(names) > MaxArtists {
		names = names[:MaxArtists]
	}

	start := a.now()
	end := start.AddDate(1, 0, 0)

	outcomes := fanout.Gather(ctx, names, func(ctx context.Context, artist string) ([]domain.ConcertEvent, error) {
		return a.source.Events(ctx, artist, "", start, end)
	})

	var all []domain.ConcertEvent
	for i, o := range outcomes {
		if o.Err != nil {
			log.Printf("WARN concerts: events for %q: %v", names[i], o.Err)
			continue
		}
		all = append(all, o.Value...)
	}

	baseline := Timeline(all, start, end)
	events := FilterByCity(baseline, city)
	return Result{
		Events:   events,
		Baseline: baseline,
		Total:    len(events),
		TotalAll: len(baseline),
	}
}

// FetchArtist is FetchEvents for a single artist, except that a failed query
// is returned to the caller.
func (a *Aggregator) FetchArtist(ctx context.Context, artist string) ([]domain.ConcertEvent, error) {
	start := a.now()
	end := start.AddDate(1, 0, 0)
	events, err := a.source.Events(ctx, strings.TrimSpace(artist), "", start, end)
	if err != nil {
		return nil, err
	}
	return Timeline(events, start, end), nil
}

// Timeline drops events without a venue or a usable date, or outside
// [start, end], removes duplicates keeping the first, and orders the rest by
// start time.
func Timeline(events []domain.ConcertEvent, start, end time.Time) []domain.ConcertEvent {
	seen := make(map[string]struct{})
	timeline := make([]domain.ConcertEvent, 0, len(events))
	for _, e := range events {
		if strings.TrimSpace(e.Venue) == "" || strings.TrimSpace(e.Date) == "" {
			continue
		}
		at, dateOnly, ok := parseDate(e.Date)
		if !ok {
			continue
		}
		lower := start
		if dateOnly {
			// A show dated today is still upcoming.
			lower = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		}
		if at.Before(lower) || at.After(end) {
			continue
		}
		key := Key(e)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		e.Start = at
		timeline = append(timeline, e)
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Start.Before(timeline[j].Start)
	})
	return timeline
}

// Key is an event's identity: no two events in a timeline share it.
func Key(e domain.ConcertEvent) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(e.Artist) + "||" + norm(e.Date) + "||" + norm(e.Venue)
}

// FilterByCity keeps events whose city, region or country contains city,
// ignoring case. An empty city keeps everything.
func FilterByCity(events []domain.ConcertEvent, city string) []domain.ConcertEvent {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return events
	}
	filtered := make([]domain.ConcertEvent, 0, len(events))
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.City), city) ||
			strings.Contains(strings.ToLower(e.Region), city) ||
			strings.Contains(strings.ToLower(e.Country), city) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func parseDate(s string) (t time.Time, dateOnly bool, ok bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}
