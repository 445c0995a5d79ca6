// Package forecast asks a generative model for a listener's next-year taste
// and turns whatever it answers into a bounded list of predictions.
package forecast

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ademuri/taste-engine/internal/domain"
)

const (
	DefaultIcon       = "✨"
	DefaultConfidence = 0.6
	MaxPredictions    = 4

	minConfidence = 0.05
	maxConfidence = 0.95
)

// Forecast is the model's answer. Enabled is false when no model is
// configured, in which case nothing else is set.
type Forecast struct {
	Enabled     bool                `json:"enabled" yaml:"enabled"`
	Summary     string              `json:"summary" yaml:"summary"`
	Predictions []domain.Prediction `json:"predictions" yaml:"predictions"`
}

// ParseForecast extracts a forecast from free model output: the text
// between the first '{' and the last '}' is decoded, and each prediction is
// coerced on its own. Anything unusable yields an empty forecast.
func ParseForecast(text string) Forecast {
	empty := Forecast{Enabled: true, Predictions: []domain.Prediction{}}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last <= first {
		return empty
	}

	var raw struct {
		Summary     json.RawMessage   `json:"summary"`
		Predictions []json.RawMessage `json:"predictions"`
	}
	if err := json.Unmarshal([]byte(text[first:last+1]), &raw); err != nil {
		// predictions may be something other than an array.
		var loose map[string]json.RawMessage
		if json.Unmarshal([]byte(text[first:last+1]), &loose) != nil {
			return empty
		}
		raw.Summary = loose["summary"]
		raw.Predictions = nil
	}

	f := empty
	f.Summary = strings.TrimSpace(stringValue(raw.Summary))
	for _, entry := range raw.Predictions {
		p, ok := coercePrediction(entry)
		if !ok {
			continue
		}
		f.Predictions = append(f.Predictions, p)
		if len(f.Predictions) == MaxPredictions {
			break
		}
	}
	return f
}

func coercePrediction(entry json.RawMessage) (domain.Prediction, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return domain.Prediction{}, false
	}

	text := strings.TrimSpace(stringValue(fields["text"]))
	if text == "" {
		return domain.Prediction{}, false
	}
	icon := strings.TrimSpace(stringValue(fields["icon"]))
	if icon == "" {
		icon = DefaultIcon
	}
	return domain.Prediction{
		Icon:       icon,
		Text:       text,
		Confidence: clampConfidence(confidenceValue(fields["confidence"])),
	}, true
}

func stringValue(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// confidenceValue reads a number the way a loosely typed model emits it:
// numbers, numeric strings and booleans are accepted, a missing or null value
// means the default, and anything else is NaN.
func confidenceValue(raw json.RawMessage) float64 {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return DefaultConfidence
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return math.NaN()
	}
	switch v := v.(type) {
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

func clampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return math.Max(minConfidence, math.Min(maxConfidence, v))
}
