package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/ademuri/taste-engine/internal/cache"
)

type fakeRefresher struct {
	calls int32
	token string
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: f.token, RefreshToken: refreshToken}, nil
}

// catalogServer accepts only the bearer token "fresh".
func catalogServer(t *testing.T) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/me":
			w.Write([]byte(`{"id":"u1","display_name":"Listener","images":[{"url":"http://img/1"}]}`))
		case "/search":
			w.Write([]byte(`{"artists":{"items":[{"id":"a1","name":"Phoenix","genres":["french indie pop"]}]}}`))
		case "/me/top/artists":
			w.Write([]byte(`{"items":[{"id":"a1","name":"Phoenix","popularity":70}]}`))
		case "/me/top/tracks":
			w.Write([]byte(`{"items":[{"id":"t1","name":"1901","artists":[{"name":"Phoenix"}]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return NewClient(ts.Client(), cache.NewMemory(), Config{BaseURL: ts.URL, BaseBackoff: time.Millisecond})
}

func TestSessionRefreshesOnceOnUnauthorized(t *testing.T) {
	refresher := &fakeRefresher{token: "fresh"}
	s := NewSession(catalogServer(t), refresher, "stale", "refresh-token")

	runs := 0
	err := s.Run(context.Background(), func(ctx context.Context, token string) error {
		runs++
		_, err := s.Client().Me(ctx, token)
		return err
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if runs != 2 {
		t.Errorf("operation ran %d times, want 2", runs)
	}
	if refresher.calls != 1 {
		t.Errorf("refreshed %d times, want 1", refresher.calls)
	}
	if tok, ok := s.Refreshed(); !ok || tok != "fresh" {
		t.Errorf("Refreshed() = %q, %v", tok, ok)
	}
}

func TestSessionRefreshesUpFrontWithoutAccessToken(t *testing.T) {
	refresher := &fakeRefresher{token: "fresh"}
	s := NewSession(catalogServer(t), refresher, "", "refresh-token")

	runs := 0
	err := s.Run(context.Background(), func(ctx context.Context, token string) error {
		runs++
		_, err := s.Client().Me(ctx, token)
		return err
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if runs != 1 {
		t.Errorf("operation ran %d times, want 1", runs)
	}
}

func TestSessionGivesUpAfterOneRefresh(t *testing.T) {
	refresher := &fakeRefresher{token: "still-wrong"}
	s := NewSession(catalogServer(t), refresher, "stale", "refresh-token")

	runs := 0
	err := s.Run(context.Background(), func(ctx context.Context, token string) error {
		runs++
		_, err := s.Client().Me(ctx, token)
		return err
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Run error = %v, want ErrUnauthorized", err)
	}
	if runs != 2 {
		t.Errorf("operation ran %d times, want 2", runs)
	}
}

func TestSessionRefreshesOncePerSession(t *testing.T) {
	refresher := &fakeRefresher{token: "still-wrong"}
	s := NewSession(catalogServer(t), refresher, "stale", "refresh-token")

	me := func(ctx context.Context, token string) error {
		_, err := s.Client().Me(ctx, token)
		return err
	}
	for i := 0; i < 2; i++ {
		if err := s.Run(context.Background(), me); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("Run #%d error = %v, want ErrUnauthorized", i+1, err)
		}
	}
	if refresher.calls != 1 {
		t.Errorf("refreshed %d times across two runs, want 1", refresher.calls)
	}
}

func TestSessionWithoutRefreshToken(t *testing.T) {
	s := NewSession(catalogServer(t), &fakeRefresher{token: "fresh"}, "stale", "")
	err := s.Run(context.Background(), func(ctx context.Context, token string) error {
		_, err := s.Client().Me(ctx, token)
		return err
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Run error = %v, want ErrUnauthorized", err)
	}
	if s.HasCredential() != true {
		t.Errorf("HasCredential() should be true with an access token")
	}
	if NewSession(nil, nil, "", "").HasCredential() {
		t.Errorf("HasCredential() should be false with no tokens")
	}
}

func TestSessionArtistGenres(t *testing.T) {
	s := NewSession(catalogServer(t), nil, "fresh", "")
	genres, err := s.ArtistGenres(context.Background(), "Phoenix")
	if err != nil {
		t.Fatalf("ArtistGenres error: %v", err)
	}
	if len(genres) != 1 || genres[0] != "french indie pop" {
		t.Errorf("ArtistGenres = %v", genres)
	}
}

func TestSessionShortTermTaste(t *testing.T) {
	s := NewSession(catalogServer(t), nil, "fresh", "")
	taste, err := s.ShortTermTaste(context.Background())
	if err != nil {
		t.Fatalf("ShortTermTaste error: %v", err)
	}
	if len(taste.Artists) != 1 || taste.Artists[0].Popularity != 70 {
		t.Errorf("Artists = %+v", taste.Artists)
	}
	if len(taste.Tracks) != 1 || taste.Tracks[0].Artist != "Phoenix" || taste.Tracks[0].Popularity != 50 {
		t.Errorf("Tracks = %+v", taste.Tracks)
	}
}

func TestOAuthRefresher(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.Form.Get("refresh_token"); got != "rt" {
			t.Errorf("refresh_token = %q", got)
		}
		if id, _, ok := r.BasicAuth(); !ok || id != "client" {
			t.Errorf("basic auth client = %q, %v", id, ok)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","token_type":"Bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	r := NewOAuthRefresher("client", "secret", ts.URL)
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, ts.Client())
	tok, err := r.Refresh(ctx, "rt")
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if tok.AccessToken != "new-access" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
	if tok.RefreshToken != "rt" {
		t.Errorf("RefreshToken = %q, want the original kept", tok.RefreshToken)
	}
}

func TestOAuthRefresherRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer ts.Close()

	r := NewOAuthRefresher("client", "secret", ts.URL)
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, ts.Client())
	if _, err := r.Refresh(ctx, "rt"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Refresh error = %v, want ErrUnauthorized", err)
	}
}
