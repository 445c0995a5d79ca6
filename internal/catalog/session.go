package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ademuri/taste-engine/internal/domain"
)

// Session binds one listener's credential pair to a client for the length of
// a request. It is safe for concurrent use.
type Session struct {
	client    *Client
	refresher Refresher

	mu        sync.Mutex
	access    string
	refresh   string
	refreshed bool
}

// NewSession returns a Session. refresher may be nil, in which case an expired
// access token is final.
func NewSession(client *Client, refresher Refresher, accessToken, refreshToken string) *Session {
	return &Session{
		client:    client,
		refresher: refresher,
		access:    accessToken,
		refresh:   refreshToken,
	}
}

func (s *Session) Client() *Client {
	return s.client
}

// Token returns the current access token.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// HasCredential reports whether the session can make catalog calls at all.
func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access != "" || (s.refresh != "" && s.refresher != nil)
}

// Refreshed returns the new access token if the session had to refresh.
func (s *Session) Refreshed() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.refreshed
}

// Run calls fn with a usable access token. Without an access token it
// refreshes first. If fn fails with ErrUnauthorized it refreshes once and
// calls fn exactly one more time.
func (s *Session) Run(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	token := s.Token()
	if token == "" {
		var err error
		if token, err = s.renew(ctx, ""); err != nil {
			return err
		}
	}

	err := fn(ctx, token)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	token, rerr := s.renew(ctx, token)
	if rerr != nil {
		return rerr
	}
	return fn(ctx, token)
}

// renew refreshes unless another caller already replaced stale. A session
// refreshes at most once; a rejected refreshed token is final.
func (s *Session) renew(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.access != stale && s.access != "" {
		return s.access, nil
	}
	if s.refreshed {
		return "", ErrUnauthorized
	}
	if s.refresh == "" || s.refresher == nil {
		return "", ErrUnauthorized
	}

	tok, err := s.refresher.Refresh(ctx, s.refresh)
	if err != nil {
		log.Printf("WARN catalog: token refresh failed: %v", err)
		if errors.Is(err, ErrUnauthorized) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	s.access = tok.AccessToken
	if tok.RefreshToken != "" {
		s.refresh = tok.RefreshToken
	}
	s.refreshed = true
	return s.access, nil
}

// ArtistGenres looks name up in the catalog and returns its genre tags.
func (s *Session) ArtistGenres(ctx context.Context, name string) ([]string, error) {
	var genres []string
	err := s.Run(ctx, func(ctx context.Context, token string) error {
		artist, ok, err := s.client.SearchArtist(ctx, token, name)
		if err != nil {
			return err
		}
		if ok {
			genres = artist.Genres
		}
		return nil
	})
	return genres, err
}

// Taste is the slice of a listener's history the country matcher scores
// against.
type Taste struct {
	Artists []domain.Artist
	Tracks  []domain.Track
}

// ShortTermTaste fetches the listener's recent top artists and tracks.
func (s *Session) ShortTermTaste(ctx context.Context) (Taste, error) {
	var taste Taste
	err := s.Run(ctx, func(ctx context.Context, token string) error {
		artists, err := s.client.TopArtists(ctx, token, ShortTerm, 25)
		if err != nil {
			return err
		}
		tracks, err := s.client.TopTracks(ctx, token, ShortTerm, 50)
		if err != nil {
			return err
		}
		taste = Taste{Artists: artists, Tracks: tracks}
		return nil
	})
	return taste, err
}
