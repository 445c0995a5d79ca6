package concerts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ademuri/taste-engine/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu      sync.Mutex
	events  map[string][]domain.ConcertEvent
	fail    map[string]bool
	queried []string
}

func (f *fakeSource) Events(ctx context.Context, artist, city string, start, end time.Time) ([]domain.ConcertEvent, error) {
	f.mu.Lock()
	f.queried = append(f.queried, artist)
	f.mu.Unlock()
	if f.fail[artist] {
		return nil, errors.New("upstream 500")
	}
	return f.events[artist], nil
}

func newTestAggregator(source EventSource) *Aggregator {
	a := NewAggregator(source)
	a.now = func() time.Time { return testNow }
	return a
}

func show(artist string, at time.Time, venue, city string) domain.ConcertEvent {
	return domain.ConcertEvent{
		Artist:  artist,
		Venue:   venue,
		City:    city,
		Country: "United States Of America",
		Date:    at.Format(time.RFC3339),
	}
}

func TestFetchEventsWindowAndOrder(t *testing.T) {
	source := &fakeSource{events: map[string][]domain.ConcertEvent{}}
	for i, artist := range []string{"Alpha", "Bravo", "Charlie"} {
		for j, months := range []int{1, 4, 7, 10, 13} {
			at := testNow.AddDate(0, months, i)
			source.events[artist] = append(source.events[artist], show(artist, at, fmt.Sprintf("Venue %d", j), "Austin"))
		}
	}

	res := newTestAggregator(source).FetchEvents(context.Background(), []string{"Alpha", "Bravo", "Charlie"}, "")

	if len(res.Events) != 12 {
		t.Fatalf("got %d events, want 12", len(res.Events))
	}
	if res.Total != 12 || res.TotalAll != 12 {
		t.Errorf("Total = %d, TotalAll = %d", res.Total, res.TotalAll)
	}
	limit := testNow.AddDate(1, 0, 0)
	for i, e := range res.Events {
		if e.Start.After(limit) || e.Start.Before(testNow) {
			t.Errorf("event %d at %v is outside the window", i, e.Start)
		}
		if i > 0 && e.Start.Before(res.Events[i-1].Start) {
			t.Errorf("events out of order at %d", i)
		}
	}
}

func TestFetchEventsDedup(t *testing.T) {
	at := testNow.AddDate(0, 2, 0)
	first := show("Alpha", at, "The Fillmore", "San Francisco")
	first.URL = "first"
	dup := show("ALPHA ", at, "the fillmore", "San Francisco")
	dup.URL = "second"
	other := show("Alpha", at, "Warfield", "San Francisco")

	source := &fakeSource{events: map[string][]domain.ConcertEvent{
		"Alpha": {first, other},
		"Bravo": {dup},
	}}
	res := newTestAggregator(source).FetchEvents(context.Background(), []string{"Alpha", "Bravo"}, "")

	if len(res.Events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(res.Events), res.Events)
	}
	seen := make(map[string]bool)
	for _, e := range res.Events {
		if seen[Key(e)] {
			t.Errorf("duplicate key %q", Key(e))
		}
		seen[Key(e)] = true
		if e.Venue == "The Fillmore" && e.URL != "first" {
			t.Errorf("dedup kept %q, want the first occurrence", e.URL)
		}
	}
}

func TestFetchEventsDropsIncomplete(t *testing.T) {
	at := testNow.AddDate(0, 1, 0)
	source := &fakeSource{events: map[string][]domain.ConcertEvent{
		"Alpha": {
			{Artist: "Alpha", Venue: "", Date: at.Format(time.RFC3339)},
			{Artist: "Alpha", Venue: "Somewhere"},
			{Artist: "Alpha", Venue: "Somewhere", Date: "next tuesday"},
			{Artist: "Alpha", Venue: "Today Hall", Date: testNow.Format("2006-01-02")},
			{Artist: "Alpha", Venue: "Earlier Today", Date: testNow.Add(-time.Hour).Format(time.RFC3339)},
			show("Alpha", at, "Kept", "Austin"),
		},
	}}
	res := newTestAggregator(source).FetchEvents(context.Background(), []string{"Alpha"}, "")

	if len(res.Events) != 2 {
		t.Fatalf("got %+v, want the date-only show today and the complete show", res.Events)
	}
	if res.Events[0].Venue != "Today Hall" || res.Events[1].Venue != "Kept" {
		t.Errorf("events = %+v", res.Events)
	}
}

func TestFetchEventsIsolatesFailures(t *testing.T) {
	at := testNow.AddDate(0, 1, 0)
	source := &fakeSource{
		events: map[string][]domain.ConcertEvent{
			"Alpha":   {show("Alpha", at, "A", "Austin")},
			"Charlie": {show("Charlie", at.Add(time.Hour), "C", "Austin")},
		},
		fail: map[string]bool{"Bravo": true},
	}
	res := newTestAggregator(source).FetchEvents(context.Background(), []string{"Alpha", "Bravo", "Charlie"}, "")
	if len(res.Events) != 2 {
		t.Errorf("got %d events, want 2", len(res.Events))
	}
}

func TestFetchEventsQueriesAtMostTenArtists(t *testing.T) {
	source := &fakeSource{}
	var artists []string
	for i := 0; i < 15; i++ {
		artists = append(artists, fmt.Sprintf("Artist %d", i))
	}
	artists = append([]string{"  "}, artists...)

	res := newTestAggregator(source).FetchEvents(context.Background(), artists, "")
	if len(source.queried) != MaxArtists {
		t.Errorf("queried %d artists, want %d", len(source.queried), MaxArtists)
	}
	if res.Events == nil || len(res.Events) != 0 {
		t.Errorf("Events = %#v, want empty", res.Events)
	}
}

func TestFetchEventsCityFilter(t *testing.T) {
	at := testNow.AddDate(0, 1, 0)
	berlin := show("Alpha", at, "Columbiahalle", "Berlin")
	berlin.Country = "Germany"
	austin := show("Alpha", at.Add(24*time.Hour), "Stubb's", "Austin")
	austin.Region = "TX"

	source := &fakeSource{events: map[string][]domain.ConcertEvent{"Alpha": {berlin, austin}}}
	res := newTestAggregator(source).FetchEvents(context.Background(), []string{"Alpha"}, "berl")

	if res.Total != 1 || res.TotalAll != 2 || len(res.Baseline) != 2 {
		t.Fatalf("Total = %d, TotalAll = %d", res.Total, res.TotalAll)
	}
	if res.Events[0].City != "Berlin" {
		t.Errorf("Events = %+v", res.Events)
	}

	tests := []struct {
		city string
		want int
	}{
		{"", 2},
		{"tx", 1},
		{"GERMANY", 1},
		{"paris", 0},
	}
	for _, tt := range tests {
		if got := FilterByCity(res.Baseline, tt.city); len(got) != tt.want {
			t.Errorf("FilterByCity(%q) = %d events, want %d", tt.city, len(got), tt.want)
		}
	}
}
