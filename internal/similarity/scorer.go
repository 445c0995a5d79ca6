package similarity

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/ademuri/taste-engine/internal/analysis"
	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/ademuri/taste-engine/internal/fanout"
)

const (
	// Chart rows compared song by song.
	ChartSongWindow = 20
	// Chart rows whose artists are compared.
	ChartArtistWindow = 10
	// Listener top artists compared against chart artists.
	UserArtistWindow = 20

	DefaultFloor = 0.05
)

// Weights blend the three overlap components into one score.
type Weights struct {
	Song   float64
	Artist float64
	Genre  float64
}

func DefaultWeights() Weights {
	return Weights{Song: 0.50, Artist: 0.35, Genre: 0.15}
}

// GenreLookup returns the genre tags of an artist found by name. An unknown
// artist is an empty list, not an error.
type GenreLookup interface {
	ArtistGenres(ctx context.Context, name string) ([]string, error)
}

// LookupChain asks each lookup in turn until one returns genres.
type LookupChain []GenreLookup

func (c LookupChain) ArtistGenres(ctx context.Context, name string) ([]string, error) {
	var lastErr error
	for _, l := range c {
		if l == nil {
			continue
		}
		genres, err := l.ArtistGenres(ctx, name)
		if err != nil {
			lastErr = err
			continue
		}
		if len(genres) > 0 {
			return genres, nil
		}
	}
	return nil, lastErr
}

type Scorer struct {
	Weights Weights
	// Floor is the lowest score Blend returns, including for no overlap at all.
	Floor float64
}

func NewScorer() *Scorer {
	return &Scorer{Weights: DefaultWeights(), Floor: DefaultFloor}
}

// Blend combines a breakdown's components into a score on [Floor, 1].
func (s *Scorer) Blend(b domain.MatchBreakdown) float64 {
	score := clamp01(s.Weights.Song*b.SongComponent + s.Weights.Artist*b.ArtistComponent + s.Weights.Genre*b.GenreComponent)
	return math.Max(s.Floor, score)
}

// Score compares a chart against a listener's top artists and tracks. Genre
// lookups that fail count as checked artists without a hit. Score only fails
// if ctx ends first.
func (s *Scorer) Score(ctx context.Context, chart []domain.ChartEntry, artists []domain.Artist, tracks []domain.Track, genres GenreLookup) (float64, domain.MatchBreakdown, error) {
	var b domain.MatchBreakdown

	chartSongs := make(map[string]struct{})
	for _, e := range head(chart, ChartSongWindow) {
		chartSongs[SongKey(e.Title, e.Artist)] = struct{}{}
	}
	userSongs := make(map[string]struct{}, len(tracks))
	for _, t := range tracks {
		userSongs[SongKey(t.Name, t.Artist)] = struct{}{}
	}
	for k := range chartSongs {
		if _, ok := userSongs[k]; ok {
			b.SongHits++
		}
	}
	b.ChartSongs = len(chartSongs)
	b.SongComponent = ratio(b.SongHits, b.ChartSongs)

	chartArtists := distinctArtists(head(chart, ChartArtistWindow))
	userArtists := make(map[string]struct{})
	for _, a := range headArtists(artists, UserArtistWindow) {
		if n := NormalizeText(a.Name); n != "" {
			userArtists[n] = struct{}{}
		}
	}
	for _, a := range chartArtists {
		if _, ok := userArtists[NormalizeText(a)]; ok {
			b.ArtistHits++
		}
	}
	b.ChartArtists = len(chartArtists)
	b.ArtistComponent = ratio(b.ArtistHits, b.ChartArtists)

	keywords := make(map[string]struct{})
	for _, g := range analysis.GenreMix(artists) {
		for _, tok := range TokenizeGenre(g.Name) {
			keywords[tok] = struct{}{}
		}
	}
	if genres != nil && len(chartArtists) > 0 {
		outcomes := fanout.Gather(ctx, chartArtists, genres.ArtistGenres)
		for i, o := range outcomes {
			b.GenreChecked++
			if o.Err != nil {
				log.Printf("WARN similarity: genre lookup for %q: %v", chartArtists[i], o.Err)
				continue
			}
			if anyToken(o.Value, keywords) {
				b.GenreHits++
			}
		}
	}
	b.GenreComponent = ratio(b.GenreHits, b.GenreChecked)

	if err := ctx.Err(); err != nil {
		return 0, b, fmt.Errorf("similarity: scoring: %w", err)
	}
	return s.Blend(b), b, nil
}

func anyToken(genres []string, keywords map[string]struct{}) bool {
	for _, phrase := range genres {
		for _, tok := range TokenizeGenre(phrase) {
			if _, ok := keywords[tok]; ok {
				return true
			}
		}
	}
	return false
}

func distinctArtists(entries []domain.ChartEntry) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range entries {
		name := strings.TrimSpace(e.Artist)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func head(entries []domain.ChartEntry, n int) []domain.ChartEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

func headArtists(artists []domain.Artist, n int) []domain.Artist {
	if len(artists) > n {
		return artists[:n]
	}
	return artists
}

func ratio(hits, total int) float64 {
	return clamp01(float64(hits) / math.Max(1, float64(total)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
