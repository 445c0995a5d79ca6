package analysis

import (
	"sort"

	"github.com/ademuri/taste-engine/internal/domain"
)

// ForgottenArtist is a long-term favorite that has dropped out of current
// listening.
type ForgottenArtist struct {
	Name         string   `json:"name" yaml:"name"`
	LongTermRank int      `json:"longTermRank" yaml:"long_term_rank"`
	Popularity   int      `json:"popularity" yaml:"popularity"`
	Genres       []string `json:"genres" yaml:"genres"`
	Band         string   `json:"band" yaml:"band"`
}

const (
	BandObsession = "Obsession"
	BandStrong    = "Strong"
	BandModerate  = "Moderate"

	// Highest long-term rank (1-based) that still falls in each band.
	RankObsession = 3
	RankStrong    = 10
	RankModerate  = 20
)

func determineBand(rank int) string {
	switch {
	case rank <= 0:
		return ""
	case rank <= RankObsession:
		return BandObsession
	case rank <= RankStrong:
		return BandStrong
	case rank <= RankModerate:
		return BandModerate
	}
	return ""
}

// ForgottenArtists returns long-term top artists that appear neither in the
// short-term top list nor anywhere in recent plays, most-loved first. sortBy
// "popularity" orders by catalog popularity instead of long-term rank.
func ForgottenArtists(longTerm, shortTerm []domain.Artist, recent []domain.Play, sortBy string) []ForgottenArtist {
	current := make(map[string]struct{})
	for _, a := range shortTerm {
		current[a.Name] = struct{}{}
	}
	for _, p := range recent {
		for _, name := range p.Track.Artists {
			current[name] = struct{}{}
		}
		current[p.Track.Artist] = struct{}{}
	}

	forgotten := []ForgottenArtist{}
	for i, a := range longTerm {
		if _, ok := current[a.Name]; ok {
			continue
		}
		band := determineBand(i + 1)
		if band == "" {
			continue
		}
		forgotten = append(forgotten, ForgottenArtist{
			Name:         a.Name,
			LongTermRank: i + 1,
			Popularity:   a.Popularity,
			Genres:       a.Genres,
			Band:         band,
		})
	}

	sortForgotten(forgotten, sortBy)
	return forgotten
}

func sortForgotten(artists []ForgottenArtist, sortBy string) {
	sort.SliceStable(artists, func(i, j int) bool {
		if sortBy == "popularity" {
			return artists[i].Popularity > artists[j].Popularity
		}
		return artists[i].LongTermRank < artists[j].LongTermRank
	})
}
