package analysis

import "github.com/ademuri/taste-engine/internal/domain"

// Report is the top-level structure of the YAML taste report.
type Report struct {
	Metadata           ProfileMetadata     `yaml:"profile_metadata"`
	CurrentTaste       TasteProfile        `yaml:"current_taste"`
	HistoricalBaseline TasteProfile        `yaml:"historical_baseline"`
	TasteDrift         TasteDrift          `yaml:"taste_drift"`
	DNA                domain.DNAIndices   `yaml:"dna"`
	Predictions        []domain.Prediction `yaml:"predictions"`
	ForgottenArtists   []ForgottenArtist   `yaml:"forgotten_artists"`
}

type ProfileMetadata struct {
	GeneratedDate  string  `yaml:"generated_date"`
	DisplayName    string  `yaml:"display_name"`
	ListeningStyle string  `yaml:"listening_style"`
	Variety        float64 `yaml:"variety"`
	RecentPlays    int     `yaml:"recent_plays"`
}

type TasteProfile struct {
	TopArtists []ArtistStat        `yaml:"top_artists"`
	TopGenres  []GenreWeight       `yaml:"top_genres"`
	Mood       domain.MoodSnapshot `yaml:"mood"`
	TempoBand  string              `yaml:"tempo_band"`
}

type ArtistStat struct {
	Name        string   `yaml:"name"`
	Rank        int      `yaml:"rank"`
	Popularity  int      `yaml:"popularity"`
	PrimaryTags []string `yaml:"primary_tags"`
}

// GenreWeight is a genre's share of a window's artist genre tags.
type GenreWeight struct {
	Genre  string  `yaml:"genre"`
	Weight float64 `yaml:"weight"`
}

type TasteDrift struct {
	Mood           domain.Drift `yaml:"mood"`
	DeclinedGenres []GenreShift `yaml:"declined_genres"`
	EmergedGenres  []GenreShift `yaml:"emerged_genres"`
}

type GenreShift struct {
	Genre            string  `yaml:"genre"`
	HistoricalWeight float64 `yaml:"historical_weight"`
	CurrentWeight    float64 `yaml:"current_weight"`
}
