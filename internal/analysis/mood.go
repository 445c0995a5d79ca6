package analysis

import (
	"math"
	"strings"

	"github.com/ademuri/taste-engine/internal/domain"
)

// InferMood estimates a mood snapshot from genre keywords and popularity.
// It never fails; an empty sample gets the model's neutral values.
func (m MoodModel) InferMood(tracks []domain.Track, artists []domain.Artist, recent []domain.Play) domain.MoodSnapshot {
	variety := m.Neutral.Variety
	if len(recent) > 0 {
		variety = m.variety(recent)
	}

	if len(tracks) == 0 && len(artists) == 0 {
		return domain.MoodSnapshot{
			Valence:              m.Neutral.Valence,
			Energy:               m.Neutral.Energy,
			Danceability:         m.Neutral.Danceability,
			Acousticness:         m.Neutral.Acousticness,
			Variety:              variety,
			NormalizedPopularity: m.Neutral.Popularity,
			Tempo:                m.Neutral.Tempo,
		}
	}

	blob := genreBlob(artists)
	avgPop := averagePopularity(tracks)

	return domain.MoodSnapshot{
		Valence:              m.Valence.eval(blob, m.Damping, avgPop),
		Energy:               m.Energy.eval(blob, m.Damping, avgPop),
		Danceability:         m.Danceability.eval(blob, m.Damping, avgPop),
		Acousticness:         m.Acousticness.eval(blob, m.Damping, avgPop),
		Variety:              variety,
		NormalizedPopularity: avgPop,
		Tempo:                m.tempo(tracks),
	}
}

func (m MoodModel) variety(recent []domain.Play) float64 {
	capacity := m.VarietyCap
	if capacity <= 0 {
		capacity = 20
	}
	seen := make(map[string]struct{})
	for _, p := range recent {
		if p.Track.Artist != "" {
			seen[p.Track.Artist] = struct{}{}
		}
	}
	return math.Min(1, float64(len(seen))/float64(capacity))
}

func (m MoodModel) tempo(tracks []domain.Track) float64 {
	fallback := m.DefaultTempo
	if fallback <= 0 {
		fallback = 120
	}
	if len(tracks) == 0 {
		return fallback
	}
	sum := 0.0
	for _, t := range tracks {
		if t.Tempo > 0 && !math.IsInf(t.Tempo, 0) {
			sum += t.Tempo
		} else {
			sum += fallback
		}
	}
	return sum / float64(len(tracks))
}

// InferDNA estimates the four DNA indices. Without tracks every index is the
// model's neutral value.
func (m DNAModel) InferDNA(tracks []domain.Track, artists []domain.Artist) domain.DNAIndices {
	if len(tracks) == 0 {
		n := clamp01(m.Neutral)
		return domain.DNAIndices{Groove: n, Brightness: n, Heat: n, Pace: n}
	}

	blob := genreBlob(artists)
	avgPop := averagePopularity(tracks)

	return domain.DNAIndices{
		Groove:     m.Groove.eval(blob, m.Damping, avgPop),
		Brightness: m.Brightness.eval(blob, m.Damping, avgPop),
		Heat:       m.Heat.eval(blob, m.Damping, avgPop),
		Pace:       m.Pace.eval(blob, m.Damping, avgPop),
	}
}

// InferMood runs DefaultMoodModel.
func InferMood(tracks []domain.Track, artists []domain.Artist, recent []domain.Play) domain.MoodSnapshot {
	return DefaultMoodModel().InferMood(tracks, artists, recent)
}

// InferDNA runs DefaultDNAModel.
func InferDNA(tracks []domain.Track, artists []domain.Artist) domain.DNAIndices {
	return DefaultDNAModel().InferDNA(tracks, artists)
}

func genreBlob(artists []domain.Artist) string {
	var genres []string
	for _, a := range artists {
		genres = append(genres, a.Genres...)
	}
	return strings.ToLower(strings.Join(genres, " "))
}

// averagePopularity is the mean track popularity on [0,1]; 0.5 without
// tracks.
func averagePopularity(tracks []domain.Track) float64 {
	if len(tracks) == 0 {
		return float64(domain.DefaultPopularity) / 100
	}
	sum := 0
	for _, t := range tracks {
		p := t.Popularity
		if p < 0 {
			p = 0
		} else if p > 100 {
			p = 100
		}
		sum += p
	}
	return clamp01(float64(sum) / float64(len(tracks)) / 100)
}
