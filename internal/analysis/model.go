package analysis

import (
	"math"
	"strings"
)

// KeywordTerm adds Weight times the match ratio of Keywords to a scalar.
// Negative weights pull the scalar down.
type KeywordTerm struct {
	Keywords []string
	Weight   float64
}

// ScalarRecipe derives one [0,1] scalar from a genre blob and the sample's
// average popularity.
type ScalarRecipe struct {
	Terms            []KeywordTerm
	PopularityWeight float64
	Offset           float64
}

func (r ScalarRecipe) eval(blob string, damping, avgPop float64) float64 {
	v := r.Offset + r.PopularityWeight*avgPop
	for _, term := range r.Terms {
		v += term.Weight * matchRatio(blob, term.Keywords, damping)
	}
	return clamp01(v)
}

// MoodModel holds the recipes behind InferMood.
type MoodModel struct {
	Damping      float64
	Valence      ScalarRecipe
	Energy       ScalarRecipe
	Danceability ScalarRecipe
	Acousticness ScalarRecipe
	// VarietyCap is the number of distinct recent artists that counts as
	// full variety.
	VarietyCap   int
	DefaultTempo float64
	// Neutral is returned for an empty sample.
	Neutral MoodNeutral
}

type MoodNeutral struct {
	Valence, Energy, Danceability, Acousticness, Variety, Popularity, Tempo float64
}

func DefaultMoodModel() MoodModel {
	return MoodModel{
		Damping: 0.25,
		Valence: ScalarRecipe{
			Terms: []KeywordTerm{
				{Keywords: []string{"happy", "pop", "funk", "soul", "disco", "tropical", "reggae", "feel-good", "summer"}, Weight: 0.5},
				{Keywords: []string{"sad", "emo", "doom", "depressive", "melancholy", "dark", "gothic"}, Weight: -0.3},
			},
			Offset: 0.4,
		},
		Energy: ScalarRecipe{
			Terms: []KeywordTerm{
				{Keywords: []string{"metal", "rock", "punk", "hardcore", "edm", "dubstep", "drum", "bass", "trap", "rage", "intense"}, Weight: 0.6},
				{Keywords: []string{"ambient", "acoustic", "sleep", "calm", "soft", "meditation"}, Weight: -0.3},
			},
			PopularityWeight: 0.3,
			Offset:           0.2,
		},
		Danceability: ScalarRecipe{
			Terms: []KeywordTerm{
				{Keywords: []string{"dance", "house", "techno", "hip hop", "hip-hop", "r&b", "funk", "disco", "pop", "club"}, Weight: 0.6},
			},
			PopularityWeight: 0.2,
			Offset:           0.15,
		},
		Acousticness: ScalarRecipe{
			Terms: []KeywordTerm{
				{Keywords: []string{"acoustic", "folk", "singer-songwriter", "country", "bluegrass", "unplugged"}, Weight: 0.6},
				{Keywords: []string{"electronic", "synth", "edm", "house", "techno", "digital"}, Weight: -0.3},
			},
			Offset: 0.25,
		},
		VarietyCap:   20,
		DefaultTempo: 120,
		Neutral: MoodNeutral{
			Valence:      0.5,
			Energy:       0.5,
			Danceability: 0.5,
			Acousticness: 0.3,
			Variety:      0.5,
			Popularity:   0.5,
			Tempo:        120,
		},
	}
}

// DNAModel holds the recipes behind InferDNA.
type DNAModel struct {
	Damping    float64
	Groove     ScalarRecipe
	Brightness ScalarRecipe
	Heat       ScalarRecipe
	Pace       ScalarRecipe
	// Neutral is every index's value for a sample without tracks.
	Neutral float64
}

func DefaultDNAModel() DNAModel {
	return DNAModel{
		Damping: 0.3,
		Groove: ScalarRecipe{
			Terms:            []KeywordTerm{{Keywords: []string{"dance", "pop", "hip", "r&b", "funk", "disco", "house", "soul"}, Weight: 0.65}},
			PopularityWeight: 0.35,
		},
		Brightness: ScalarRecipe{
			Terms:  []KeywordTerm{{Keywords: []string{"pop", "indie", "folk", "acoustic", "soft", "dream", "chill", "bedroom", "singer"}, Weight: 0.6}},
			Offset: 0.25,
		},
		Heat: ScalarRecipe{
			Terms:            []KeywordTerm{{Keywords: []string{"metal", "rock", "punk", "hardcore", "trap", "drill", "edm", "bass", "heavy", "grunge"}, Weight: 0.75}},
			PopularityWeight: 0.25,
		},
		Pace: ScalarRecipe{
			Terms:            []KeywordTerm{{Keywords: []string{"fast", "speed", "power", "energy", "uptempo", "drum", "breakbeat"}, Weight: 0.4}},
			PopularityWeight: 0.35,
			Offset:           0.1,
		},
		Neutral: 0.5,
	}
}

// matchRatio is the share of keywords found in blob, scaled up by 1/damping
// and capped at 1.
func matchRatio(blob string, keywords []string, damping float64) float64 {
	if blob == "" || len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, k := range keywords {
		if strings.Contains(blob, k) {
			hits++
		}
	}
	return math.Min(1, float64(hits)/math.Max(1, float64(len(keywords))*damping))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// Normalize maps value from [min,max] onto [0,1], clamping outside values.
func Normalize(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return clamp01((value - min) / (max - min))
}
