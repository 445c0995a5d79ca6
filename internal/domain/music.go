// Package domain holds the catalog entities and derived metrics shared by the
// engine's packages.
package domain

import "time"

// DefaultPopularity stands in for a track or artist popularity the catalog
// did not report.
const DefaultPopularity = 50

type Profile struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"name" yaml:"name"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	ImageURL    string `json:"image,omitempty" yaml:"image,omitempty"`
}

type Artist struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Genres     []string `json:"genres" yaml:"genres"`
	Popularity int      `json:"popularity" yaml:"popularity"`
	ImageURL   string   `json:"image,omitempty" yaml:"image,omitempty"`
	URL        string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// Track is a catalog track. Tempo is in BPM; zero means the catalog had no
// tempo for it.
type Track struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Artist           string   `json:"artist" yaml:"artist"`
	Artists          []string `json:"artists" yaml:"artists"`
	Album            string   `json:"album,omitempty" yaml:"album,omitempty"`
	ImageURL         string   `json:"image,omitempty" yaml:"image,omitempty"`
	PreviewURL       string   `json:"preview,omitempty" yaml:"preview,omitempty"`
	URL              string   `json:"spotifyUrl,omitempty" yaml:"url,omitempty"`
	Popularity       int      `json:"popularity" yaml:"popularity"`
	Tempo            float64  `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	AvailableMarkets []string `json:"-" yaml:"-"`
}

type Play struct {
	Track    Track     `json:"track" yaml:"track"`
	PlayedAt time.Time `json:"playedAt" yaml:"played_at"`
}

// AudioFeatures are the catalog's per-track audio analysis values. Most
// callers only get Tempo back, if anything.
type AudioFeatures struct {
	ID           string  `json:"id"`
	Tempo        float64 `json:"tempo"`
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Acousticness float64 `json:"acousticness"`
}

// ChartEntry is one row of a national top-songs chart.
type ChartEntry struct {
	Title  string `json:"title" yaml:"title"`
	Artist string `json:"artist" yaml:"artist"`
	URL    string `json:"url" yaml:"url"`
}

// ConcertEvent is a ticketed show. Date is kept exactly as the ticketing API
// returned it because it is part of the event's identity; Start is its parsed
// form.
type ConcertEvent struct {
	Artist  string    `json:"artist" yaml:"artist"`
	Venue   string    `json:"venue" yaml:"venue"`
	City    string    `json:"city" yaml:"city"`
	Region  string    `json:"region" yaml:"region"`
	Country string    `json:"country" yaml:"country"`
	Date    string    `json:"date" yaml:"date"`
	Start   time.Time `json:"-" yaml:"-"`
	URL     string    `json:"url" yaml:"url"`
}
