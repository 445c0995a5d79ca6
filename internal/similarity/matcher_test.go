package similarity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ademuri/taste-engine/internal/cache"
	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/ademuri/taste-engine/internal/domain"
)

type fakeCharts struct {
	calls   int32
	entries []domain.ChartEntry
	err     error
}

func (f *fakeCharts) TopSongs(ctx context.Context, storefront string) ([]domain.ChartEntry, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.entries, f.err
}

type fakeListener struct {
	mapLookup
	token    string
	taste    catalog.Taste
	tasteErr error
	fetches  int32
}

func (f *fakeListener) ShortTermTaste(ctx context.Context) (catalog.Taste, error) {
	atomic.AddInt32(&f.fetches, 1)
	return f.taste, f.tasteErr
}

func (f *fakeListener) HasCredential() bool { return f.token != "" }
func (f *fakeListener) Token() string       { return f.token }

func TestMatchNoStorefrontMapping(t *testing.T) {
	charts := &fakeCharts{entries: chartOf(10)}
	m := NewMatcher(charts, nil, nil, nil)

	got := m.Match(context.Background(), "", "Atlantis", &fakeListener{token: "t"})
	if got.Reason != domain.ReasonNoStorefrontMapping || got.HasData || got.Score != 0 {
		t.Errorf("Match = %+v", got)
	}
	if got.TopSongs == nil || len(got.TopSongs) != 0 {
		t.Errorf("TopSongs = %#v, want empty", got.TopSongs)
	}
	if charts.calls != 0 {
		t.Errorf("chart fetched %d times for an unmapped country", charts.calls)
	}
}

func TestMatchEmptyChart(t *testing.T) {
	m := NewMatcher(&fakeCharts{entries: []domain.ChartEntry{}}, nil, nil, nil)
	got := m.Match(context.Background(), "FR", "France", &fakeListener{token: "t"})
	if got.HasData || got.Score != 0 || got.Reason != domain.ReasonEmptyChart || len(got.TopSongs) != 0 {
		t.Errorf("Match = %+v", got)
	}
	if got.Code != "FR" {
		t.Errorf("Code = %q", got.Code)
	}
}

func TestMatchChartFetchFailed(t *testing.T) {
	m := NewMatcher(&fakeCharts{err: errors.New("down")}, nil, nil, nil)
	got := m.Match(context.Background(), "DE", "", &fakeListener{token: "t"})
	if got.HasData || got.Score != 0 || got.Reason != domain.ReasonChartFetchFailed {
		t.Errorf("Match = %+v", got)
	}
}

func TestMatchNoCredentialKeepsSongs(t *testing.T) {
	m := NewMatcher(&fakeCharts{entries: chartOf(10)}, nil, nil, nil)
	got := m.Match(context.Background(), "US", "", &fakeListener{})
	if !got.HasData || got.Score != FallbackScore || got.Reason != domain.ReasonNoCredential {
		t.Errorf("Match = %+v", got)
	}
	if len(got.TopSongs) != TopSongCount {
		t.Errorf("got %d top songs, want %d", len(got.TopSongs), TopSongCount)
	}
}

func TestMatchScoringFailedKeepsSongs(t *testing.T) {
	listener := &fakeListener{token: "t", tasteErr: catalog.ErrRateLimited}
	m := NewMatcher(&fakeCharts{entries: chartOf(3)}, nil, nil, nil)
	got := m.Match(context.Background(), "US", "", listener)
	if !got.HasData || got.Score != FallbackScore || got.Reason != domain.ReasonScoringFailed {
		t.Errorf("Match = %+v", got)
	}
	if len(got.TopSongs) != 3 || got.TopSongs[0].Title != "Song 1" {
		t.Errorf("TopSongs = %+v", got.TopSongs)
	}
}

func TestMatchScoresAndCaches(t *testing.T) {
	chart := chartOf(20)
	listener := &fakeListener{
		token: "listener-token",
		taste: catalog.Taste{
			Artists: []domain.Artist{{Name: "Chart Artist 2", Genres: []string{"art pop"}}},
			Tracks:  []domain.Track{{Name: "Song 1", Artist: "Chart Artist 1"}},
		},
	}
	charts := &fakeCharts{entries: chart}
	m := NewMatcher(charts, nil, cache.NewMemory(), mapLookup{})

	got := m.Match(context.Background(), "gb", "United Kingdom", listener)
	if got.Reason != domain.ReasonNone || !got.HasData || got.Breakdown == nil {
		t.Fatalf("Match = %+v", got)
	}
	want := 0.50*(1.0/20) + 0.35*(1.0/10)
	if got.Score < want-1e-9 || got.Score > want+1e-9 {
		t.Errorf("Score = %v, want %v", got.Score, want)
	}

	again := m.Match(context.Background(), "gb", "United Kingdom", listener)
	if again.Score != got.Score || again.Breakdown == nil {
		t.Errorf("cached Match = %+v", again)
	}
	if charts.calls != 1 || listener.fetches != 1 {
		t.Errorf("second Match was not served from cache: %d chart calls, %d taste fetches", charts.calls, listener.fetches)
	}

	other := &fakeListener{token: "another-token-value", taste: catalog.Taste{}}
	m.Match(context.Background(), "gb", "", other)
	if other.fetches != 1 {
		t.Errorf("a different listener reused another listener's match")
	}
}
