package analysis

import (
	"math"
	"time"

	"github.com/ademuri/taste-engine/internal/domain"
)

const (
	reportArtists = 20
	reportGenres  = 40
	reportTags    = 3
)

// Snapshot is everything GenerateReport reads about one listener.
type Snapshot struct {
	Profile       domain.Profile
	ShortArtists  []domain.Artist
	MediumArtists []domain.Artist
	LongArtists   []domain.Artist
	ShortTracks   []domain.Track
	LongTracks    []domain.Track
	Recent        []domain.Play
}

// GenerateReport builds the taste report comparing the short-term window
// (current taste) against the long-term one (historical baseline).
func GenerateReport(s Snapshot, now time.Time) *Report {
	mood := DefaultMoodModel()
	shortMood := mood.InferMood(s.ShortTracks, s.ShortArtists, s.Recent)
	longMood := mood.InferMood(s.LongTracks, s.LongArtists, s.Recent)
	drift := ComputeDrift(shortMood, longMood)

	current := TasteProfile{
		TopArtists: artistStats(s.ShortArtists),
		TopGenres:  GenreWeights(s.ShortArtists, reportGenres),
		Mood:       shortMood,
		TempoBand:  TempoBucket(shortMood.Tempo),
	}
	historical := TasteProfile{
		TopArtists: artistStats(s.LongArtists),
		TopGenres:  GenreWeights(s.LongArtists, reportGenres),
		Mood:       longMood,
		TempoBand:  TempoBucket(longMood.Tempo),
	}

	declined, emerged := ShiftGenres(historical.TopGenres, current.TopGenres)

	return &Report{
		Metadata: ProfileMetadata{
			GeneratedDate:  now.Format("2006-01-02"),
			DisplayName:    s.Profile.DisplayName,
			ListeningStyle: listeningStyle(shortMood.Variety),
			Variety:        math.Round(shortMood.Variety*100) / 100,
			RecentPlays:    len(s.Recent),
		},
		CurrentTaste:       current,
		HistoricalBaseline: historical,
		TasteDrift: TasteDrift{
			Mood:           drift,
			DeclinedGenres: declined,
			EmergedGenres:  emerged,
		},
		DNA:              DefaultDNAModel().InferDNA(s.ShortTracks, s.ShortArtists),
		Predictions:      GeneratePredictions(drift, GenreNames(s.ShortArtists), GenreNames(s.LongArtists)),
		ForgottenArtists: ForgottenArtists(s.LongArtists, s.ShortArtists, s.Recent, ""),
	}
}

func artistStats(artists []domain.Artist) []ArtistStat {
	if len(artists) > reportArtists {
		artists = artists[:reportArtists]
	}
	stats := make([]ArtistStat, 0, len(artists))
	for i, a := range artists {
		tags := a.Genres
		if len(tags) > reportTags {
			tags = tags[:reportTags]
		}
		stats = append(stats, ArtistStat{
			Name:        a.Name,
			Rank:        i + 1,
			Popularity:  a.Popularity,
			PrimaryTags: tags,
		})
	}
	return stats
}

func listeningStyle(variety float64) string {
	switch {
	case variety >= 0.6:
		return "explorer"
	case variety < 0.3:
		return "loyalist"
	}
	return "balanced"
}
