package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ademuri/taste-engine/internal/analysis"
	"github.com/ademuri/taste-engine/internal/cache"
	"github.com/ademuri/taste-engine/internal/catalog"
)

type fakeCatalog struct {
	failFeatures bool
	failLong     bool
}

func (f fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.URL.Path {
	case "/me":
		w.Write([]byte(`{"id":"u1","display_name":"Ada"}`))
	case "/me/top/artists":
		switch r.URL.Query().Get("time_range") {
		case "short_term":
			w.Write([]byte(`{"items":[
				{"id":"a1","name":"Daft Punk","genres":["french house","electro"],"popularity":80},
				{"id":"a2","name":"Phoenix","genres":["french indie pop"],"popularity":70}
			]}`))
		case "medium_term":
			w.Write([]byte(`{"items":[
				{"id":"a3","name":"Bon Iver","genres":["indie folk","chamber pop"]},
				{"id":"a4","name":"Fleet Foxes","genres":["indie folk"]}
			]}`))
		default:
			if f.failLong {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{"items":[{"id":"a3","name":"Bon Iver","genres":["indie folk"]}]}`))
		}
	case "/me/top/tracks":
		w.Write([]byte(`{"items":[
			{"id":"t1","name":"One More Time","artists":[{"name":"Daft Punk"}],"popularity":80,"available_markets":["US","FR"]},
			{"id":"t2","name":"1901","artists":[{"name":"Phoenix"}],"popularity":60,"available_markets":["FR"]}
		]}`))
	case "/me/player/recently-played":
		w.Write([]byte(`{"items":[
			{"track":{"id":"t1","name":"One More Time","artists":[{"name":"Daft Punk"}]},"played_at":"2026-10-01T10:00:00Z"},
			{"track":{"id":"t1","name":"One More Time","artists":[{"name":"Daft Punk"}]},"played_at":"2026-10-01T09:00:00Z"},
			{"track":{"id":"t2","name":"1901","artists":[{"name":"Phoenix"}]},"played_at":"2026-10-01T08:00:00Z"}
		]}`))
	case "/audio-features":
		if f.failFeatures {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"audio_features":[{"id":"t1","tempo":124},null,{"id":"t2","tempo":0}]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newSession(t *testing.T, f fakeCatalog) *catalog.Session {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	client := catalog.NewClient(ts.Client(), cache.NewMemory(), catalog.Config{
		BaseURL:     ts.URL,
		MaxRetries:  -1,
		BaseBackoff: time.Millisecond,
	})
	return catalog.NewSession(client, nil, "token", "")
}

func TestLoad(t *testing.T) {
	d, err := NewService().Load(context.Background(), newSession(t, fakeCatalog{}))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if d.Profile.DisplayName != "Ada" {
		t.Errorf("Profile = %+v", d.Profile)
	}
	if len(d.Genres) == 0 || d.Genres[0].Name != "indie folk" {
		t.Errorf("Genres = %+v, want the medium-term mix led by indie folk", d.Genres)
	}
	if len(d.Artists) != 2 || d.Artists[0].Name != "Daft Punk" || d.Artists[0].Rank != 1 || d.Artists[0].Plays != 2 {
		t.Errorf("Artists = %+v", d.Artists)
	}
	if d.Artists[0].Intensity <= d.Artists[1].Intensity {
		t.Errorf("rank 1 with more plays should be more intense: %+v", d.Artists)
	}
	// One track has a tempo of 124, the other none (120 assumed).
	if d.Mood.Tempo != 122 {
		t.Errorf("Mood.Tempo = %v, want 122", d.Mood.Tempo)
	}
	if d.DNA.Averages != d.Mood {
		t.Errorf("DNA averages differ from the short-term mood")
	}
	if d.Drift.TempoDrift != d.Mood.Tempo-d.LongMood.Tempo {
		t.Errorf("Drift = %+v", d.Drift)
	}
	if d.CountryMap["FR"] != 2 || d.CountryMap["US"] != 1 {
		t.Errorf("CountryMap = %v", d.CountryMap)
	}
	if len(d.Recent) != 3 || len(d.TopTracks) != 2 {
		t.Errorf("got %d recent plays and %d top tracks", len(d.Recent), len(d.TopTracks))
	}
	if len(d.Predictions) == 0 {
		t.Errorf("no predictions")
	}

	p := d.ForecastPayload()
	if p.ProfileName == nil || *p.ProfileName != "Ada" || len(p.TopArtists) != 2 || len(p.TopTracks) != 2 {
		t.Errorf("ForecastPayload = %+v", p)
	}
}

func TestLoadWithoutAudioFeatures(t *testing.T) {
	d, err := NewService().Load(context.Background(), newSession(t, fakeCatalog{failFeatures: true}))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if d.Mood.Tempo != 120 {
		t.Errorf("Mood.Tempo = %v, want the 120 BPM fallback", d.Mood.Tempo)
	}
}

func TestLoadFailsOnAnyFetch(t *testing.T) {
	_, err := NewService().Load(context.Background(), newSession(t, fakeCatalog{failLong: true}))
	var uerr *catalog.UpstreamError
	if !errors.As(err, &uerr) || uerr.StatusCode != http.StatusBadGateway {
		t.Errorf("err = %v, want the upstream error", err)
	}
}

func TestLoadUnauthorized(t *testing.T) {
	ts := httptest.NewServer(fakeCatalog{})
	defer ts.Close()
	client := catalog.NewClient(ts.Client(), nil, catalog.Config{BaseURL: ts.URL})
	_, err := NewService().Load(context.Background(), catalog.NewSession(client, nil, "expired", ""))
	if !errors.Is(err, catalog.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	d := NewService().Build(analysis.Snapshot{})
	if d.Artists == nil || d.TopTracks == nil || d.Recent == nil || d.Genres == nil {
		t.Errorf("empty lists should not be nil: %+v", d)
	}
	if d.Mood.Valence != 0.5 || d.Mood.Tempo != 120 {
		t.Errorf("Mood = %+v, want neutral defaults", d.Mood)
	}
}
