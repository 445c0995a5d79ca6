package analysis

import (
	"fmt"
	"testing"

	"github.com/ademuri/taste-engine/internal/domain"
)

func longTermArtists(n int) []domain.Artist {
	var artists []domain.Artist
	for i := 1; i <= n; i++ {
		artists = append(artists, domain.Artist{
			Name:       fmt.Sprintf("Artist %d", i),
			Popularity: i,
		})
	}
	return artists
}

func TestForgottenArtists(t *testing.T) {
	long := longTermArtists(25)
	short := []domain.Artist{{Name: "Artist 1"}}
	recent := []domain.Play{
		{Track: domain.Track{Artist: "Artist 2", Artists: []string{"Artist 2"}}},
		{Track: domain.Track{Artist: "Someone", Artists: []string{"Someone", "Artist 12"}}},
	}

	forgotten := ForgottenArtists(long, short, recent, "")

	// 20 banded ranks minus artists 1, 2 and 12.
	if len(forgotten) != 17 {
		t.Fatalf("got %d forgotten artists, want 17: %+v", len(forgotten), forgotten)
	}
	if forgotten[0].Name != "Artist 3" || forgotten[0].Band != BandObsession {
		t.Errorf("forgotten[0] = %+v", forgotten[0])
	}
	if forgotten[1].Name != "Artist 4" || forgotten[1].Band != BandStrong {
		t.Errorf("forgotten[1] = %+v", forgotten[1])
	}
	last := forgotten[len(forgotten)-1]
	if last.Name != "Artist 20" || last.Band != BandModerate {
		t.Errorf("last = %+v", last)
	}
	for _, f := range forgotten {
		if f.Name == "Artist 12" {
			t.Errorf("featured recent artist reported as forgotten")
		}
	}
}

func TestForgottenArtistsSortByPopularity(t *testing.T) {
	forgotten := ForgottenArtists(longTermArtists(5), nil, nil, "popularity")
	if len(forgotten) != 5 {
		t.Fatalf("got %d, want 5", len(forgotten))
	}
	if forgotten[0].Name != "Artist 5" || forgotten[4].Name != "Artist 1" {
		t.Errorf("order = %+v", forgotten)
	}
}

func TestDetermineBand(t *testing.T) {
	tests := []struct {
		rank int
		want string
	}{
		{0, ""},
		{1, BandObsession},
		{RankObsession, BandObsession},
		{RankObsession + 1, BandStrong},
		{RankStrong, BandStrong},
		{RankModerate, BandModerate},
		{RankModerate + 1, ""},
	}
	for _, tt := range tests {
		if got := determineBand(tt.rank); got != tt.want {
			t.Errorf("determineBand(%d) = %q, want %q", tt.rank, got, tt.want)
		}
	}
}
