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
	"strconv"
	"strings"

	"github.com/ademuri/taste-engine/internal/analysis"
	"github.com/spf13/cobra"
)

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists",
	Short: "Gets the listener's current top artists",
	Long:  `Lists short-term top artists with how intensely each has been played recently.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(TopArtistsAnalyzer{Config: AnalyserConfig{NumToReturn: topArtistsNumber}})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", 10, "number of results to return")
}

type TopArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t *TopArtistsAnalyzer) Configure(params map[string]string) error {
	return intParam(params, "n", &t.Config.NumToReturn)
}

func (t TopArtistsAnalyzer) GetName() string {
	return "Top artists"
}

func (t TopArtistsAnalyzer) GetResults(ctx context.Context, run *Run) (a Analysis, err error) {
	snap, err := run.Snapshot(ctx)
	if err != nil {
		return
	}

	a.results = [][]string{{"Rank", "Artist", "Genres", "Plays", "Intensity"}}
	totalPlays := 0
	for i, artist := range snap.ShortArtists {
		rank := i + 1
		plays := analysis.PlayCount(artist.Name, snap.Recent)
		totalPlays += plays
		if t.Config.NumToReturn > 0 && rank > t.Config.NumToReturn {
			continue
		}
		a.results = append(a.results, []string{
			strconv.Itoa(rank),
			artist.Name,
			strings.Join(artist.Genres, ", "),
			strconv.Itoa(plays),
			percent(analysis.Intensity(artist.Name, rank, snap.Recent)),
		})
	}

	a.summary = fmt.Sprintf("Found %d top artists; %d of the last %d plays were theirs",
		len(snap.ShortArtists), totalPlays, len(snap.Recent))
	return
}
