// Package dashboard loads everything the catalog knows about a listener in
// one pass and derives the metrics shown to them.
package dashboard

import (
	"context"
	"log"

	"github.com/ademuri/taste-engine/internal/analysis"
	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/ademuri/taste-engine/internal/fanout"
	"github.com/ademuri/taste-engine/internal/forecast"
)

const (
	TopLimit    = 20
	RecentLimit = 50

	intensityArtists = 10
	shownTracks      = 10
	shownRecent      = 20
)

type DNA struct {
	Indices  domain.DNAIndices   `json:"indices"`
	Averages domain.MoodSnapshot `json:"averages"`
}

// ArtistIntensity is one of the listener's current top artists with how
// heavily they have been played lately.
type ArtistIntensity struct {
	Name      string   `json:"name"`
	ImageURL  string   `json:"image,omitempty"`
	Genres    []string `json:"genres"`
	Rank      int      `json:"rank"`
	Intensity float64  `json:"intensity"`
	Plays     int      `json:"plays"`
}

type Dashboard struct {
	Profile     domain.Profile      `json:"profile"`
	DNA         DNA                 `json:"dna"`
	Genres      []domain.GenreShare `json:"genres"`
	Mood        domain.MoodSnapshot `json:"mood"`
	LongMood    domain.MoodSnapshot `json:"longMood"`
	Artists     []ArtistIntensity   `json:"artists"`
	TopTracks   []domain.Track      `json:"topTracks"`
	Recent      []domain.Play       `json:"recent"`
	CountryMap  map[string]int      `json:"countryMap"`
	Predictions []domain.Prediction `json:"predictions"`
	Drift       domain.Drift        `json:"drift"`
}

type Service struct {
	Mood analysis.MoodModel
	DNA  analysis.DNAModel
}

func NewService() *Service {
	return &Service{Mood: analysis.DefaultMoodModel(), DNA: analysis.DefaultDNAModel()}
}

// Snapshot fetches the listener's profile, top lists and recent plays
// concurrently. Any failed fetch fails the snapshot; a rejected token is
// refreshed once by the session and the whole fetch re-run. Tracks are
// enriched with tempo where the catalog has audio features, which is
// best-effort.
func (s *Service) Snapshot(ctx context.Context, session *catalog.Session) (analysis.Snapshot, error) {
	client := session.Client()

	var snap analysis.Snapshot
	err := session.Run(ctx, func(ctx context.Context, token string) error {
		snap = analysis.Snapshot{}
		return fanout.All(ctx,
			func(ctx context.Context) (err error) {
				snap.Profile, err = client.Me(ctx, token)
				return err
			},
			func(ctx context.Context) (err error) {
				snap.ShortArtists, err = client.TopArtists(ctx, token, catalog.ShortTerm, TopLimit)
				return err
			},
			func(ctx context.Context) (err error) {
				snap.MediumArtists, err = client.TopArtists(ctx, token, catalog.MediumTerm, TopLimit)
				return err
			},
			func(ctx context.Context) (err error) {
				snap.LongArtists, err = client.TopArtists(ctx, token, catalog.LongTerm, TopLimit)
				return err
			},
			func(ctx context.Context) (err error) {
				snap.ShortTracks, err = client.TopTracks(ctx, token, catalog.ShortTerm, TopLimit)
				return err
			},
			func(ctx context.Context) (err error) {
				snap.LongTracks, err = client.TopTracks(ctx, token, catalog.LongTerm, TopLimit)
				return err
			},
			func(ctx context.Context) (err error) {
				snap.Recent, err = client.RecentlyPlayed(ctx, token, RecentLimit)
				return err
			},
		)
	})
	if err != nil {
		return analysis.Snapshot{}, err
	}

	s.attachTempo(ctx, session, snap.ShortTracks, snap.LongTracks)
	return snap, nil
}

func (s *Service) attachTempo(ctx context.Context, session *catalog.Session, lists ...[]domain.Track) {
	client := session.Client()
	err := session.Run(ctx, func(ctx context.Context, token string) error {
		var tasks []func(context.Context) error
		for _, tracks := range lists {
			tracks := tracks
			tasks = append(tasks, func(ctx context.Context) error {
				features, err := client.AudioFeatures(ctx, token, trackIDs(tracks))
				if err != nil {
					return err
				}
				for i := range tracks {
					if f, ok := features[tracks[i].ID]; ok && f.Tempo > 0 {
						tracks[i].Tempo = f.Tempo
					}
				}
				return nil
			})
		}
		return fanout.All(ctx, tasks...)
	})
	if err != nil {
		log.Printf("WARN dashboard: continuing without audio features: %v", err)
	}
}

func trackIDs(tracks []domain.Track) []string {
	var ids []string
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
		if len(ids) == catalog.MaxAudioFeatureIDs {
			break
		}
	}
	return ids
}

// Load fetches a snapshot and builds the dashboard from it.
func (s *Service) Load(ctx context.Context, session *catalog.Session) (*Dashboard, error) {
	snap, err := s.Snapshot(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.Build(snap), nil
}

// Build derives the dashboard from a snapshot. It makes no calls.
func (s *Service) Build(snap analysis.Snapshot) *Dashboard {
	shortMood := s.Mood.InferMood(snap.ShortTracks, snap.ShortArtists, snap.Recent)
	longMood := s.Mood.InferMood(snap.LongTracks, snap.LongArtists, snap.Recent)
	drift := analysis.ComputeDrift(shortMood, longMood)

	d := &Dashboard{
		Profile:  snap.Profile,
		DNA:      DNA{Indices: s.DNA.InferDNA(snap.ShortTracks, snap.ShortArtists), Averages: shortMood},
		Genres:   analysis.GenreMix(snap.MediumArtists),
		Mood:     shortMood,
		LongMood: longMood,
		Predictions: analysis.GeneratePredictions(drift,
			analysis.GenreNames(snap.ShortArtists), analysis.GenreNames(snap.LongArtists)),
		Drift:      drift,
		CountryMap: analysis.CountryAvailability(snap.ShortTracks),
		Artists:    make([]ArtistIntensity, 0, intensityArtists),
		TopTracks:  head(snap.ShortTracks, shownTracks),
		Recent:     head(snap.Recent, shownRecent),
	}

	for i, a := range head(snap.ShortArtists, intensityArtists) {
		rank := i + 1
		d.Artists = append(d.Artists, ArtistIntensity{
			Name:      a.Name,
			ImageURL:  a.ImageURL,
			Genres:    a.Genres,
			Rank:      rank,
			Intensity: analysis.Intensity(a.Name, rank, snap.Recent),
			Plays:     analysis.PlayCount(a.Name, snap.Recent),
		})
	}
	return d
}

// ForecastPayload is what a forecast for this dashboard is asked about.
func (d *Dashboard) ForecastPayload() forecast.Payload {
	p := forecast.Payload{
		Mood:       &d.Mood,
		Drift:      &d.Drift,
		Genres:     make([]string, 0, len(d.Genres)),
		TopArtists: make([]string, 0, len(d.Artists)),
		TopTracks:  make([]forecast.TrackRef, 0, len(d.TopTracks)),
	}
	if d.Profile.DisplayName != "" {
		name := d.Profile.DisplayName
		p.ProfileName = &name
	}
	for _, g := range d.Genres {
		p.Genres = append(p.Genres, g.Name)
	}
	for _, a := range d.Artists {
		p.TopArtists = append(p.TopArtists, a.Name)
	}
	for _, t := range d.TopTracks {
		p.TopTracks = append(p.TopTracks, forecast.TrackRef{Name: t.Name, Artist: t.Artist})
	}
	return p
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
