/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ademuri/taste-engine/internal/cache"
	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/ademuri/taste-engine/internal/charts"
	"github.com/ademuri/taste-engine/internal/concerts"
	"github.com/ademuri/taste-engine/internal/dashboard"
	"github.com/ademuri/taste-engine/internal/forecast"
	"github.com/ademuri/taste-engine/internal/lastfm"
	"github.com/ademuri/taste-engine/internal/server"
	"github.com/ademuri/taste-engine/internal/similarity"
	"github.com/ademuri/taste-engine/internal/store"
	"github.com/spf13/viper"
)

// App holds the engine's collaborators, built once from configuration.
type App struct {
	Cache     cache.Cache
	Catalog   *catalog.Client
	Refresher catalog.Refresher
	Dashboard *dashboard.Service
	Matcher   *similarity.Matcher
	Concerts  *concerts.Aggregator
	Forecast  *forecast.Client

	closer func() error
}

// AppConfig is the configuration an App is built from. Base URLs are only
// set in tests.
type AppConfig struct {
	CachePath           string
	CacheTTL            time.Duration
	MaxRetries          int
	RequestTimeout      time.Duration
	SpotifyClientID     string
	SpotifyClientSecret string
	TicketmasterAPIKey  string
	GeminiAPIKey        string
	GeminiModel         string
	LastFmAPIKey        string
	LastFmSecret        string

	CatalogURL      string
	TokenURL        string
	ChartsURL       string
	TicketmasterURL string
	GeminiURL       string
}

func appConfigFromViper() AppConfig {
	return AppConfig{
		CachePath:           viper.GetString("cache"),
		CacheTTL:            viper.GetDuration("cache_ttl"),
		MaxRetries:          viper.GetInt("max_retries"),
		RequestTimeout:      viper.GetDuration("request_timeout"),
		SpotifyClientID:     viper.GetString("spotify_client_id"),
		SpotifyClientSecret: viper.GetString("spotify_client_secret"),
		TicketmasterAPIKey:  viper.GetString("ticketmaster_api_key"),
		GeminiAPIKey:        viper.GetString("gemini_api_key"),
		GeminiModel:         viper.GetString("gemini_model"),
		LastFmAPIKey:        viper.GetString("lastfm_api_key"),
		LastFmSecret:        viper.GetString("lastfm_secret"),
	}
}

func newApp(config AppConfig) (*App, error) {
	app := &App{closer: func() error { return nil }}

	if config.CachePath != "" {
		s, err := store.New(config.CachePath)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		app.Cache = s
		app.closer = s.Close
	} else {
		app.Cache = cache.NewMemory()
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		// Zero retries was asked for; the client reads zero as the default.
		maxRetries = -1
	}
	app.Catalog = catalog.NewClient(httpClient, app.Cache, catalog.Config{
		BaseURL:    config.CatalogURL,
		CacheTTL:   config.CacheTTL,
		MaxRetries: maxRetries,
		Timeout:    config.RequestTimeout,
	})
	if config.SpotifyClientID != "" {
		app.Refresher = catalog.NewOAuthRefresher(config.SpotifyClientID, config.SpotifyClientSecret, config.TokenURL)
	}

	var fallback similarity.GenreLookup
	if config.LastFmAPIKey != "" {
		fallback = lastfm.New(config.LastFmAPIKey, config.LastFmSecret)
	}
	chartClient := charts.NewClient(httpClient, config.ChartsURL, app.Cache)
	app.Matcher = similarity.NewMatcher(chartClient, nil, app.Cache, fallback)

	if config.TicketmasterAPIKey != "" {
		app.Concerts = concerts.NewAggregator(concerts.NewClient(httpClient, config.TicketmasterURL, config.TicketmasterAPIKey))
	}
	app.Forecast = forecast.NewClient(httpClient, config.GeminiURL, config.GeminiAPIKey, config.GeminiModel)
	app.Dashboard = dashboard.NewService()

	return app, nil
}

// Session binds the configured listener credentials to the app's catalog
// client.
func (a *App) Session(accessToken, refreshToken string) *catalog.Session {
	return catalog.NewSession(a.Catalog, a.Refresher, accessToken, refreshToken)
}

func (a *App) Handler() *server.Handler {
	return server.NewHandler(server.Deps{
		Catalog:   a.Catalog,
		Refresher: a.Refresher,
		Dashboard: a.Dashboard,
		Matcher:   a.Matcher,
		Concerts:  a.Concerts,
		Forecast:  a.Forecast,
	})
}

func (a *App) Close() error {
	return a.closer()
}
