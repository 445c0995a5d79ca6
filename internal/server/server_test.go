package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/ademuri/taste-engine/internal/cache"
	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/ademuri/taste-engine/internal/concerts"
	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/ademuri/taste-engine/internal/forecast"
	"github.com/ademuri/taste-engine/internal/similarity"
)

type staticRefresher struct{ token string }

func (s staticRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: s.token, RefreshToken: refreshToken}, nil
}

// fakeCatalog accepts "good" and "fresh", rate limits "busy" and fails
// searches for "broken".
func fakeCatalog(t *testing.T) *catalog.Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good", "Bearer fresh":
		case "Bearer busy":
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		default:
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/me":
			io.WriteString(w, `{"id":"u1","display_name":"Ada"}`)
		case "/me/top/artists":
			io.WriteString(w, `{"items":[{"id":"a1","name":"Robyn","genres":["swedish pop","dance pop"]}]}`)
		case "/me/top/tracks":
			io.WriteString(w, `{"items":[{"id":"t1","name":"Dancing On My Own","artists":[{"name":"Robyn"}]}]}`)
		case "/me/player/recently-played":
			io.WriteString(w, `{"items":[]}`)
		case "/audio-features":
			io.WriteString(w, `{"audio_features":[]}`)
		case "/search":
			if r.URL.Query().Get("q") == "broken" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			io.WriteString(w, `{"artists":{"items":[{"id":"a1","name":"Robyn","genres":["swedish pop"]}]},"tracks":{"items":[]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return catalog.NewClient(ts.Client(), cache.NewMemory(), catalog.Config{
		BaseURL:     ts.URL,
		MaxRetries:  -1,
		BaseBackoff: time.Millisecond,
	})
}

type fakeEvents struct{}

func (fakeEvents) Events(ctx context.Context, artist, city string, start, end time.Time) ([]domain.ConcertEvent, error) {
	at := start.Add(48 * time.Hour).Format(time.RFC3339)
	return []domain.ConcertEvent{
		{Artist: artist, Venue: "Berghain", City: "Berlin", Country: "Germany", Date: at},
		{Artist: artist, Venue: "Paradiso", City: "Amsterdam", Country: "Netherlands", Date: at},
	}, nil
}

func newTestHandler(t *testing.T, deps Deps) *Handler {
	t.Helper()
	if deps.Catalog == nil {
		deps.Catalog = fakeCatalog(t)
	}
	return NewHandler(deps)
}

func do(h http.Handler, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	h := newTestHandler(t, Deps{})

	rec := do(h, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Errorf("no request ID assigned")
	}

	rec = do(h, http.MethodGet, "/health", nil, map[string]string{RequestIDHeader: "abc"})
	if got := rec.Header().Get(RequestIDHeader); got != "abc" {
		t.Errorf("request ID = %q, want the caller's", got)
	}
}

func TestDataRequiresCredential(t *testing.T) {
	rec := do(newTestHandler(t, Deps{}), http.MethodGet, "/api/data", nil, nil)
	var resp errorResponse
	decode(t, rec, &resp)
	if rec.Code != http.StatusUnauthorized || resp.Error != "not_authenticated" {
		t.Errorf("got %d %+v", rec.Code, resp)
	}
}

func TestData(t *testing.T) {
	rec := do(newTestHandler(t, Deps{}), http.MethodGet, "/api/data", nil, map[string]string{"Authorization": "Bearer good"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Profile domain.Profile      `json:"profile"`
		Genres  []domain.GenreShare `json:"genres"`
	}
	decode(t, rec, &resp)
	if resp.Profile.DisplayName != "Ada" || len(resp.Genres) != 2 {
		t.Errorf("response = %+v", resp)
	}
	if rec.Header().Get(AccessTokenHeader) != "" {
		t.Errorf("handed back a token without refreshing")
	}
}

func TestDataRefreshesExpiredToken(t *testing.T) {
	h := newTestHandler(t, Deps{Refresher: staticRefresher{token: "fresh"}})
	rec := do(h, http.MethodGet, "/api/data", nil, map[string]string{
		"Authorization":    "Bearer expired",
		RefreshTokenHeader: "r1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(AccessTokenHeader); got != "fresh" {
		t.Errorf("%s = %q, want fresh", AccessTokenHeader, got)
	}
}

func TestSearch(t *testing.T) {
	h := newTestHandler(t, Deps{})
	tests := []struct {
		name   string
		target string
		token  string
		status int
		code   string
	}{
		{"no query", "/api/search", "good", http.StatusBadRequest, "no query"},
		{"no credential", "/api/search?q=robyn", "", http.StatusUnauthorized, "not_authenticated"},
		{"rate limited", "/api/search?q=robyn", "busy", http.StatusTooManyRequests, "rate_limited"},
		{"upstream failure", "/api/search?q=broken", "good", http.StatusBadGateway, "upstream_error"},
		{"ok", "/api/search?q=robyn", "good", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers["Authorization"] = "Bearer " + tt.token
			}
			rec := do(h, http.MethodGet, tt.target, nil, headers)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.code == "" {
				var result catalog.SearchResult
				decode(t, rec, &result)
				if len(result.Artists) != 1 || result.Artists[0].Name != "Robyn" {
					t.Errorf("result = %+v", result)
				}
				return
			}
			var resp errorResponse
			decode(t, rec, &resp)
			if resp.Error != tt.code {
				t.Errorf("error = %q, want %q", resp.Error, tt.code)
			}
		})
	}
}

type chartStub []domain.ChartEntry

func (c chartStub) TopSongs(ctx context.Context, storefront string) ([]domain.ChartEntry, error) {
	return c, nil
}

func TestCountry(t *testing.T) {
	chart := chartStub{{Title: "Dancing On My Own", Artist: "Robyn"}, {Title: "Other", Artist: "Someone"}}
	h := newTestHandler(t, Deps{Matcher: similarity.NewMatcher(chart, nil, cache.NewMemory(), nil)})

	rec := do(h, http.MethodGet, "/api/world/country?name=Atlantis", nil, nil)
	var match domain.CountryMatch
	decode(t, rec, &match)
	if rec.Code != http.StatusOK || match.Reason != domain.ReasonNoStorefrontMapping {
		t.Errorf("got %d %+v", rec.Code, match)
	}

	rec = do(h, http.MethodGet, "/api/world/country?code=SE&name=Sweden", nil, nil)
	match = domain.CountryMatch{}
	decode(t, rec, &match)
	if match.Reason != domain.ReasonNoCredential || match.Score != similarity.FallbackScore || len(match.TopSongs) != 2 {
		t.Errorf("anonymous match = %+v", match)
	}

	rec = do(h, http.MethodGet, "/api/world/country?code=SE&name=Sweden", nil, map[string]string{"Authorization": "Bearer good"})
	match = domain.CountryMatch{}
	decode(t, rec, &match)
	if match.Reason != domain.ReasonNone || match.Code != "SE" || match.Breakdown == nil || match.Breakdown.SongHits != 1 {
		t.Errorf("match = %+v", match)
	}
}

func TestConcerts(t *testing.T) {
	h := newTestHandler(t, Deps{Concerts: concerts.NewAggregator(fakeEvents{})})

	rec := do(h, http.MethodGet, "/api/concerts", nil, nil)
	var resp concertsResponse
	decode(t, rec, &resp)
	if resp.Events == nil || len(resp.Events) != 0 {
		t.Errorf("no artists: %+v", resp)
	}

	rec = do(h, http.MethodGet, "/api/concerts?artists=Robyn,,Lykke%20Li&location=berlin", nil, nil)
	resp = concertsResponse{}
	decode(t, rec, &resp)
	if resp.Total != 2 || resp.TotalAll != 4 {
		t.Errorf("Total = %d, TotalAll = %d", resp.Total, resp.TotalAll)
	}
	for _, e := range resp.Events {
		if e.City != "Berlin" {
			t.Errorf("event outside the location: %+v", e)
		}
	}

	rec = do(newTestHandler(t, Deps{}), http.MethodGet, "/api/concerts?artists=Robyn", nil, nil)
	resp = concertsResponse{}
	decode(t, rec, &resp)
	if resp.Error == "" || len(resp.Events) != 0 {
		t.Errorf("without a ticketing key: %+v", resp)
	}
}

func TestFuture(t *testing.T) {
	rec := do(newTestHandler(t, Deps{}), http.MethodPost, "/api/future", strings.NewReader(`{}`), nil)
	if strings.TrimSpace(rec.Body.String()) != `{"enabled":false}` {
		t.Errorf("disabled forecast = %s", rec.Body.String())
	}

	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "bad" {
			http.Error(w, "API key not valid", http.StatusBadRequest)
			return
		}
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{\"summary\":\"s\",\"predictions\":[{\"text\":\"t\"}]}"}]}}]}`)
	}))
	defer model.Close()

	h := newTestHandler(t, Deps{Forecast: forecast.NewClient(model.Client(), model.URL, "k", "")})
	rec = do(h, http.MethodPost, "/api/future", strings.NewReader(`not json`), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid payload status = %d", rec.Code)
	}

	rec = do(h, http.MethodPost, "/api/future", strings.NewReader(`{"genres":["pop"],"topArtists":["Robyn"]}`), nil)
	var f forecast.Forecast
	decode(t, rec, &f)
	if rec.Code != http.StatusOK || !f.Enabled || f.Summary != "s" || len(f.Predictions) != 1 || f.Predictions[0].Icon != forecast.DefaultIcon {
		t.Errorf("got %d %+v", rec.Code, f)
	}

	h = newTestHandler(t, Deps{Forecast: forecast.NewClient(model.Client(), model.URL, "bad", "")})
	rec = do(h, http.MethodPost, "/api/future", strings.NewReader(`{}`), nil)
	var resp errorResponse
	decode(t, rec, &resp)
	if rec.Code != http.StatusBadGateway || resp.Error != "gemini_failed" {
		t.Errorf("got %d %+v", rec.Code, resp)
	}
}
