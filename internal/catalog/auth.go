package catalog

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// Refresher trades a refresh token for a fresh access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

type OAuthRefresher struct {
	config *oauth2.Config
}

// NewOAuthRefresher returns a Refresher for the given app credentials. An
// empty tokenURL means the Spotify accounts service.
func NewOAuthRefresher(clientID, clientSecret, tokenURL string) *OAuthRefresher {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &OAuthRefresher{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
	}
}

// Refresh uses the http.Client stored in ctx under oauth2.HTTPClient, if any.
func (r *OAuthRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}
	tok, err := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode/100 == 4 {
			return nil, fmt.Errorf("%w: refresh rejected: %v", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("catalog: refreshing token: %w", err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}
