package domain

// MoodSnapshot is the inferred emotional and rhythmic profile of a listening
// window. Every scalar lies in [0,1]; Tempo is in BPM.
type MoodSnapshot struct {
	Valence              float64 `json:"valence" yaml:"valence"`
	Energy               float64 `json:"energy" yaml:"energy"`
	Danceability         float64 `json:"danceability" yaml:"danceability"`
	Acousticness         float64 `json:"acousticness" yaml:"acousticness"`
	Variety              float64 `json:"variety" yaml:"variety"`
	NormalizedPopularity float64 `json:"avgPop" yaml:"normalized_popularity"`
	Tempo                float64 `json:"tempo" yaml:"tempo"`
}

// DNAIndices summarize a listener's inferred sonic profile.
type DNAIndices struct {
	Groove     float64 `json:"groove" yaml:"groove"`
	Brightness float64 `json:"brightness" yaml:"brightness"`
	Heat       float64 `json:"heat" yaml:"heat"`
	Pace       float64 `json:"pace" yaml:"pace"`
}

// Drift is a recent snapshot minus a long-term one.
type Drift struct {
	TempoDrift        float64 `json:"tempoDrift" yaml:"tempo_drift"`
	ValenceDrift      float64 `json:"valenceDrift" yaml:"valence_drift"`
	DanceabilityDrift float64 `json:"danceabilityDrift" yaml:"danceability_drift"`
	EnergyDrift       float64 `json:"energyDrift" yaml:"energy_drift"`
}

type Prediction struct {
	Icon       string  `json:"icon" yaml:"icon"`
	Text       string  `json:"text" yaml:"text"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

type GenreShare struct {
	Name string `json:"name" yaml:"name"`
	Pct  int    `json:"pct" yaml:"pct"`
}

// MatchReason explains a degraded or empty CountryMatch.
type MatchReason string

const (
	ReasonNone                MatchReason = ""
	ReasonNoStorefrontMapping MatchReason = "no_storefront_mapping"
	ReasonChartFetchFailed    MatchReason = "chart_fetch_failed"
	ReasonEmptyChart          MatchReason = "empty_chart"
	ReasonNoCredential        MatchReason = "no_credential"
	ReasonScoringFailed       MatchReason = "scoring_failed"
)

// MatchBreakdown carries the three overlap components behind a score.
type MatchBreakdown struct {
	SongComponent   float64 `json:"songComponent" yaml:"song_component"`
	ArtistComponent float64 `json:"artistComponent" yaml:"artist_component"`
	GenreComponent  float64 `json:"genreComponent" yaml:"genre_component"`
	SongHits        int     `json:"songHits" yaml:"song_hits"`
	ChartSongs      int     `json:"chartSongs" yaml:"chart_songs"`
	ArtistHits      int     `json:"artistHits" yaml:"artist_hits"`
	ChartArtists    int     `json:"chartArtists" yaml:"chart_artists"`
	GenreHits       int     `json:"genreHits" yaml:"genre_hits"`
	GenreChecked    int     `json:"genreChecked" yaml:"genre_checked"`
}

type CountryMatch struct {
	Name      string          `json:"name,omitempty" yaml:"name,omitempty"`
	Code      string          `json:"code,omitempty" yaml:"code,omitempty"`
	HasData   bool            `json:"hasData" yaml:"has_data"`
	Score     float64         `json:"score" yaml:"score"`
	TopSongs  []ChartEntry    `json:"topSongs" yaml:"top_songs"`
	Reason    MatchReason     `json:"reason,omitempty" yaml:"reason,omitempty"`
	Breakdown *MatchBreakdown `json:"debug,omitempty" yaml:"breakdown,omitempty"`
}
