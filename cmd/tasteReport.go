package cmd

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/ademuri/taste-engine/internal/analysis"
)

// TasteReportAnalyzer renders the taste report as HTML for email.
type TasteReportAnalyzer struct {
	Artists int
}

func (t *TasteReportAnalyzer) Configure(params map[string]string) error {
	t.Artists = 10
	return intParam(params, "artists", &t.Artists)
}

func (t *TasteReportAnalyzer) GetName() string {
	return "Music Taste Profile"
}

func (t *TasteReportAnalyzer) GetResults(ctx context.Context, run *Run) (a Analysis, err error) {
	snap, err := run.Snapshot(ctx)
	if err != nil {
		return
	}
	report := analysis.GenerateReport(snap, run.Now)

	limit := t.Artists
	if limit == 0 {
		limit = 10
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<p><strong>Analysis Date:</strong> %s</p>", report.Metadata.GeneratedDate))
	sb.WriteString(fmt.Sprintf("<p><strong>Listening Style:</strong> %s (variety %.2f over %d recent plays)</p>",
		html.EscapeString(report.Metadata.ListeningStyle), report.Metadata.Variety, report.Metadata.RecentPlays))

	// Top Artists
	sb.WriteString("<h3>Current Top Artists</h3>")
	sb.WriteString("<ul>")
	for i, artist := range report.CurrentTaste.TopArtists {
		if i >= limit {
			break
		}
		sb.WriteString(fmt.Sprintf("<li><strong>%s</strong> (#%d)", html.EscapeString(artist.Name), artist.Rank))
		if len(artist.PrimaryTags) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s]", html.EscapeString(strings.Join(artist.PrimaryTags, ", "))))
		}
		sb.WriteString("</li>")
	}
	sb.WriteString("</ul>")

	mood := report.CurrentTaste.Mood
	sb.WriteString("<h3>Mood</h3>")
	sb.WriteString(fmt.Sprintf("<p>Valence %s, energy %s, danceability %s, %.0f BPM (%s)</p>",
		percent(mood.Valence), percent(mood.Energy), percent(mood.Danceability), mood.Tempo, report.CurrentTaste.TempoBand))

	// Taste Drift
	sb.WriteString("<h3>Taste Drift</h3>")
	if len(report.TasteDrift.EmergedGenres) > 0 {
		sb.WriteString("<p><strong>New Interests:</strong> ")
		sb.WriteString(html.EscapeString(joinShifts(report.TasteDrift.EmergedGenres)))
		sb.WriteString("</p>")
	}
	if len(report.TasteDrift.DeclinedGenres) > 0 {
		sb.WriteString("<p><strong>Fading Interests:</strong> ")
		sb.WriteString(html.EscapeString(joinShifts(report.TasteDrift.DeclinedGenres)))
		sb.WriteString("</p>")
	}

	if len(report.Predictions) > 0 {
		sb.WriteString("<h3>Predictions</h3><ul>")
		for _, p := range report.Predictions {
			sb.WriteString(fmt.Sprintf("<li>%s %s (%s)</li>", p.Icon, html.EscapeString(p.Text), percent(p.Confidence)))
		}
		sb.WriteString("</ul>")
	}

	a.BodyOverride = sb.String()
	return
}

func joinShifts(shifts []analysis.GenreShift) string {
	var genres []string
	for _, s := range shifts {
		genres = append(genres, s.Genre)
	}
	return strings.Join(genres, ", ")
}
