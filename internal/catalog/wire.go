package catalog

import (
	"time"

	"github.com/ademuri/taste-engine/internal/domain"
)

type wireImage struct {
	URL string `json:"url"`
}

type wireExternalURLs struct {
	Spotify string `json:"spotify"`
}

type wireProfile struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Email       string      `json:"email"`
	Images      []wireImage `json:"images"`
}

type wireArtist struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Genres       []string         `json:"genres"`
	Popularity   *int             `json:"popularity"`
	Images       []wireImage      `json:"images"`
	ExternalURLs wireExternalURLs `json:"external_urls"`
}

type wireAlbum struct {
	Name   string      `json:"name"`
	Images []wireImage `json:"images"`
}

type wireTrack struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Artists          []wireArtist     `json:"artists"`
	Album            wireAlbum        `json:"album"`
	PreviewURL       string           `json:"preview_url"`
	ExternalURLs     wireExternalURLs `json:"external_urls"`
	Popularity       *int             `json:"popularity"`
	AvailableMarkets []string         `json:"available_markets"`
}

type wirePaging[T any] struct {
	Items []T `json:"items"`
}

type wirePlay struct {
	Track    wireTrack `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

type wireAudioFeatures struct {
	AudioFeatures []*domain.AudioFeatures `json:"audio_features"`
}

type wireSearch struct {
	Artists *wirePaging[wireArtist] `json:"artists"`
	Tracks  *wirePaging[wireTrack]  `json:"tracks"`
}

func firstImage(images []wireImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func popularity(p *int) int {
	if p == nil {
		return domain.DefaultPopularity
	}
	switch {
	case *p < 0:
		return 0
	case *p > 100:
		return 100
	}
	return *p
}

func mapProfile(p wireProfile) domain.Profile {
	return domain.Profile{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		ImageURL:    firstImage(p.Images),
	}
}

func mapArtist(a wireArtist) domain.Artist {
	genres := a.Genres
	if genres == nil {
		genres = []string{}
	}
	return domain.Artist{
		ID:         a.ID,
		Name:       a.Name,
		Genres:     genres,
		Popularity: popularity(a.Popularity),
		ImageURL:   firstImage(a.Images),
		URL:        a.ExternalURLs.Spotify,
	}
}

func mapArtists(in []wireArtist) []domain.Artist {
	out := make([]domain.Artist, 0, len(in))
	for _, a := range in {
		out = append(out, mapArtist(a))
	}
	return out
}

func mapTrack(t wireTrack) domain.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	first := ""
	if len(names) > 0 {
		first = names[0]
	}
	return domain.Track{
		ID:               t.ID,
		Name:             t.Name,
		Artist:           first,
		Artists:          names,
		Album:            t.Album.Name,
		ImageURL:         firstImage(t.Album.Images),
		PreviewURL:       t.PreviewURL,
		URL:              t.ExternalURLs.Spotify,
		Popularity:       popularity(t.Popularity),
		AvailableMarkets: t.AvailableMarkets,
	}
}

func mapTracks(in []wireTrack) []domain.Track {
	out := make([]domain.Track, 0, len(in))
	for _, t := range in {
		out = append(out, mapTrack(t))
	}
	return out
}
