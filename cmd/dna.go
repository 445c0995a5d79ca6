/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ademuri/taste-engine/internal/analysis"
	"github.com/spf13/cobra"
)

var dnaCmd = &cobra.Command{
	Use:   "dna",
	Short: "Shows the listener's sonic DNA and mood",
	Long: `Infers groove, brightness, heat and pace from the listener's short-term top
tracks and artists, next to the mood averages they are derived from and how
the mood has drifted from the long-term baseline.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(DNAAnalyzer{})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(dnaCmd)
}

type DNAAnalyzer struct{}

func (d DNAAnalyzer) GetName() string {
	return "Sonic DNA"
}

func (d DNAAnalyzer) GetResults(ctx context.Context, run *Run) (a Analysis, err error) {
	snap, err := run.Snapshot(ctx)
	if err != nil {
		return
	}

	board := run.App.Dashboard.Build(snap)
	dna := board.DNA.Indices
	mood := board.Mood
	drift := board.Drift

	a.results = [][]string{
		{"Metric", "Value"},
		{"Groove", percent(dna.Groove)},
		{"Brightness", percent(dna.Brightness)},
		{"Heat", percent(dna.Heat)},
		{"Pace", percent(dna.Pace)},
		{"Valence", percent(mood.Valence)},
		{"Energy", percent(mood.Energy)},
		{"Danceability", percent(mood.Danceability)},
		{"Acousticness", percent(mood.Acousticness)},
		{"Variety", percent(mood.Variety)},
		{"Tempo", fmt.Sprintf("%.0f BPM (%s)", mood.Tempo, analysis.TempoBucket(mood.Tempo))},
	}
	a.summary = fmt.Sprintf("Drift from long-term taste: tempo %+.0f BPM, valence %+.2f, danceability %+.2f, energy %+.2f",
		drift.TempoDrift, drift.ValenceDrift, drift.DanceabilityDrift, drift.EnergyDrift)
	return
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
