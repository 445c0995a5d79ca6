package analysis

import (
	"math"
	"sort"

	"github.com/ademuri/taste-engine/internal/domain"
)

// GenreMixSize is how many genres GenreMix reports.
const GenreMixSize = 6

type genreCount struct {
	name  string
	count int
}

// countGenres tallies genre tags across artists, most frequent first. Ties
// keep first-seen order.
func countGenres(artists []domain.Artist) ([]genreCount, int) {
	index := make(map[string]int)
	var counts []genreCount
	total := 0
	for _, a := range artists {
		for _, g := range a.Genres {
			total++
			if i, ok := index[g]; ok {
				counts[i].count++
				continue
			}
			index[g] = len(counts)
			counts = append(counts, genreCount{name: g, count: 1})
		}
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})
	return counts, total
}

// GenreMix returns the six most common genres among artists with their
// rounded percentage of all genre tags.
func GenreMix(artists []domain.Artist) []domain.GenreShare {
	counts, total := countGenres(artists)
	if total == 0 {
		total = 1
	}
	if len(counts) > GenreMixSize {
		counts = counts[:GenreMixSize]
	}
	mix := make([]domain.GenreShare, 0, len(counts))
	for _, c := range counts {
		mix = append(mix, domain.GenreShare{
			Name: c.name,
			Pct:  int(math.Round(float64(c.count) / float64(total) * 100)),
		})
	}
	return mix
}

// GenreNames is the names of GenreMix(artists), in order.
func GenreNames(artists []domain.Artist) []string {
	mix := GenreMix(artists)
	names := make([]string, 0, len(mix))
	for _, g := range mix {
		names = append(names, g.Name)
	}
	return names
}

// GenreWeights returns up to limit genres with their share of all tags,
// rounded to two decimals.
func GenreWeights(artists []domain.Artist, limit int) []GenreWeight {
	counts, total := countGenres(artists)
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	weights := make([]GenreWeight, 0, len(counts))
	for _, c := range counts {
		w := float64(c.count) / float64(total)
		weights = append(weights, GenreWeight{Genre: c.name, Weight: math.Round(w*100) / 100})
	}
	return weights
}

// PlayCount is how many recent plays credit artist.
func PlayCount(artist string, recent []domain.Play) int {
	n := 0
	for _, p := range recent {
		for _, name := range p.Track.Artists {
			if name == artist {
				n++
				break
			}
		}
	}
	return n
}

// Intensity blends an artist's top-list rank (1-based, out of 20) with its
// share of recent plays.
func Intensity(artist string, rank int, recent []domain.Play) float64 {
	total := len(recent)
	if total == 0 {
		total = 1
	}
	rankScore := 1 - Normalize(float64(rank-1), 0, 19)
	recentScore := float64(PlayCount(artist, recent)) / float64(total)
	return math.Min(1, 0.5*rankScore+0.5*recentScore)
}

// CountryAvailability counts, per market code, how many tracks are available
// there.
func CountryAvailability(tracks []domain.Track) map[string]int {
	counts := make(map[string]int)
	for _, t := range tracks {
		for _, code := range t.AvailableMarkets {
			counts[code]++
		}
	}
	return counts
}

// TempoBucket names the tempo band of bpm.
func TempoBucket(bpm float64) string {
	switch {
	case bpm < 70:
		return "Slow"
	case bpm < 100:
		return "Moderate"
	case bpm < 130:
		return "Upbeat"
	case bpm < 160:
		return "Fast"
	}
	return "Very Fast"
}
