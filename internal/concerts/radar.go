package concerts

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ademuri/taste-engine/internal/domain"
)

// Radar keeps a listener's top-artist timeline alongside shows for artists
// they looked up by hand. Searches never touch the top-artist timeline.
type Radar struct {
	agg *Aggregator

	mu       sync.Mutex
	baseline []domain.ConcertEvent
	searched []string
	byArtist map[string][]domain.ConcertEvent
}

func NewRadar(agg *Aggregator) *Radar {
	return &Radar{agg: agg, byArtist: make(map[string][]domain.ConcertEvent)}
}

// Load replaces the top-artist timeline.
func (r *Radar) Load(ctx context.Context, artists []string) Result {
	res := r.agg.FetchEvents(ctx, artists, "")
	r.mu.Lock()
	r.baseline = res.Baseline
	r.mu.Unlock()
	return res
}

// View narrows the top-artist timeline to city without querying again.
func (r *Radar) View(city string) Result {
	r.mu.Lock()
	baseline := r.baseline
	r.mu.Unlock()

	events := FilterByCity(baseline, city)
	return Result{
		Events:   events,
		Baseline: baseline,
		Total:    len(events),
		TotalAll: len(baseline),
	}
}

// Search looks up one artist and files the shows under the searched bucket.
// Searching for an artist already in the bucket returns the stored shows
// without a query.
func (r *Radar) Search(ctx context.Context, artist string) ([]domain.ConcertEvent, error) {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return nil, fmt.Errorf("concerts: empty artist name")
	}
	key := strings.ToLower(artist)

	r.mu.Lock()
	if events, ok := r.byArtist[key]; ok {
		r.mu.Unlock()
		return events, nil
	}
	r.mu.Unlock()

	events, err := r.agg.FetchArtist(ctx, artist)
	if err != nil {
		return nil, fmt.Errorf("concerts: searching %q: %w", artist, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byArtist[key]; ok {
		return existing, nil
	}
	r.byArtist[key] = events
	r.searched = append(r.searched, key)
	return events, nil
}

// Searched returns the searched bucket, grouped by artist in search order.
func (r *Radar) Searched() []domain.ConcertEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var events []domain.ConcertEvent
	for _, key := range r.searched {
		events = append(events, r.byArtist[key]...)
	}
	return events
}

// Forget drops an artist from the searched bucket.
func (r *Radar) Forget(artist string) {
	key := strings.ToLower(strings.TrimSpace(artist))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byArtist[key]; !ok {
		return
	}
	delete(r.byArtist, key)
	for i, k := range r.searched {
		if k == key {
			r.searched = append(r.searched[:i:i], r.searched[i+1:]...)
			break
		}
	}
}

// CountsByArtist counts top-artist shows per artist name.
func (r *Radar) CountsByArtist() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range r.baseline {
		counts[e.Artist]++
	}
	return counts
}
