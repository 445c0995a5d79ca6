package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/ademuri/taste-engine/internal/domain"
)

const (
	tempoDriftThreshold   = 5
	scalarDriftThreshold  = 0.05
	risingGenreLimit      = 2
	risingGenreConfidence = 0.72
	fillerConfidence      = 0.80
	minPredictions        = 2
)

// ComputeDrift is recent minus longTerm, field by field.
func ComputeDrift(recent, longTerm domain.MoodSnapshot) domain.Drift {
	return domain.Drift{
		TempoDrift:        recent.Tempo - longTerm.Tempo,
		ValenceDrift:      recent.Valence - longTerm.Valence,
		DanceabilityDrift: recent.Danceability - longTerm.Danceability,
		EnergyDrift:       recent.Energy - longTerm.Energy,
	}
}

// GeneratePredictions turns a drift and the recent and long-term genre lists
// into prediction cards. When fewer than two rules fire, a steady-taste card
// is added, so the result is never empty.
func GeneratePredictions(drift domain.Drift, recentGenres, longGenres []string) []domain.Prediction {
	var preds []domain.Prediction

	if d := drift.TempoDrift; math.Abs(d) > tempoDriftThreshold {
		icon, direction := "🌙", "slower"
		if d > 0 {
			icon, direction = "⚡", "faster"
		}
		preds = append(preds, domain.Prediction{
			Icon:       icon,
			Text:       fmt.Sprintf("You'll trend toward %s tracks (%s%d BPM projected)", direction, sign(d), int(math.Round(d))),
			Confidence: math.Min(0.95, 0.5+math.Abs(d)/60),
		})
	}

	if d := drift.ValenceDrift; math.Abs(d) > scalarDriftThreshold {
		icon, direction := "🌧️", "more introspective"
		if d > 0 {
			icon, direction = "😊", "more upbeat"
		}
		preds = append(preds, domain.Prediction{
			Icon:       icon,
			Text:       fmt.Sprintf("Your mood profile may become %s (valence %s%.2f)", direction, sign(d), d),
			Confidence: math.Min(0.90, 0.5+math.Abs(d)*3),
		})
	}

	if d := drift.DanceabilityDrift; math.Abs(d) > scalarDriftThreshold {
		icon, text := "🧘", "Danceability decreasing, you may go deeper into headphone music"
		if d > 0 {
			icon, text = "💃", "Danceability rising, you may gravitate to club-ready sounds"
		}
		preds = append(preds, domain.Prediction{
			Icon:       icon,
			Text:       text,
			Confidence: math.Min(0.85, 0.5+math.Abs(d)*3),
		})
	}

	rising := risingGenres(recentGenres, longGenres)
	if len(rising) > risingGenreLimit {
		rising = rising[:risingGenreLimit]
	}
	if len(rising) > 0 {
		preds = append(preds, domain.Prediction{
			Icon:       "🎸",
			Text:       fmt.Sprintf("%s are rising fast in your taste profile", strings.Join(rising, " & ")),
			Confidence: risingGenreConfidence,
		})
	}

	if len(preds) < minPredictions {
		preds = append(preds, domain.Prediction{
			Icon:       "🔮",
			Text:       "Your taste is remarkably consistent, a true creature of habit",
			Confidence: fillerConfidence,
		})
	}

	return preds
}

// sign is the explicit plus for positive deltas; negative numbers carry
// their own minus.
func sign(d float64) string {
	if d > 0 {
		return "+"
	}
	return ""
}

// risingGenres returns the recent genres missing from the long-term list, in
// recent order.
func risingGenres(recent, long []string) []string {
	longSet := make(map[string]struct{}, len(long))
	for _, g := range long {
		longSet[g] = struct{}{}
	}
	var rising []string
	for _, g := range recent {
		if _, ok := longSet[g]; !ok {
			rising = append(rising, g)
		}
	}
	return rising
}

// ShiftGenres compares historical and current genre weights. A genre in the
// historical top 20 missing from the current list has declined; one in the
// current top 20 missing from the historical list has emerged.
func ShiftGenres(historical, current []GenreWeight) (declined, emerged []GenreShift) {
	histMap := make(map[string]float64)
	for _, g := range historical {
		histMap[g.Genre] = g.Weight
	}
	currMap := make(map[string]float64)
	for _, g := range current {
		currMap[g.Genre] = g.Weight
	}

	histTop := historical
	if len(histTop) > 20 {
		histTop = histTop[:20]
	}
	currTop := current
	if len(currTop) > 20 {
		currTop = currTop[:20]
	}

	declined = []GenreShift{}
	for _, h := range histTop {
		if _, exists := currMap[h.Genre]; !exists {
			declined = append(declined, GenreShift{Genre: h.Genre, HistoricalWeight: h.Weight})
		}
	}

	emerged = []GenreShift{}
	for _, c := range currTop {
		if _, exists := histMap[c.Genre]; !exists {
			emerged = append(emerged, GenreShift{Genre: c.Genre, CurrentWeight: c.Weight})
		}
	}

	return declined, emerged
}
