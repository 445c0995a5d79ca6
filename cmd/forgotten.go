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

var (
	forgottenSortBy  string
	forgottenResults int
)

var forgottenCmd = &cobra.Command{
	Use:   "forgotten",
	Short: "Surfaces long-term favorites that have dropped out of rotation",
	Long: `Lists long-term top artists that are missing from both the short-term top
artists and recent plays, grouped into interest bands by long-term rank.`,
	Run: func(cmd *cobra.Command, args []string) {
		f := &ForgottenAnalyzer{}
		err := f.Configure(map[string]string{
			"sort":    forgottenSortBy,
			"results": strconv.Itoa(forgottenResults),
		})
		if err == nil {
			err = runAnalyser(f)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(forgottenCmd)

	forgottenCmd.Flags().StringVar(&forgottenSortBy, "sort", "rank", "Sort order: 'rank' or 'popularity'")
	forgottenCmd.Flags().IntVar(&forgottenResults, "results", 0, "Max results shown, default is all")
}

type ForgottenAnalyzer struct {
	SortBy  string
	Results int
}

func (f *ForgottenAnalyzer) Configure(params map[string]string) error {
	f.SortBy = "rank"
	if val, ok := params["sort"]; ok {
		if val != "rank" && val != "popularity" {
			return fmt.Errorf("invalid sort: %q", val)
		}
		f.SortBy = val
	}
	return intParam(params, "results", &f.Results)
}

func (f *ForgottenAnalyzer) GetName() string {
	return "Forgotten favorites"
}

func (f *ForgottenAnalyzer) GetResults(ctx context.Context, run *Run) (a Analysis, err error) {
	snap, err := run.Snapshot(ctx)
	if err != nil {
		return
	}

	forgotten := analysis.ForgottenArtists(snap.LongArtists, snap.ShortArtists, snap.Recent, f.SortBy)
	a.results = [][]string{{"Artist", "Band", "Long-term rank", "Popularity", "Genres"}}
	for i, artist := range forgotten {
		if f.Results > 0 && i >= f.Results {
			break
		}
		a.results = append(a.results, []string{
			artist.Name,
			artist.Band,
			strconv.Itoa(artist.LongTermRank),
			strconv.Itoa(artist.Popularity),
			strings.Join(artist.Genres, ", "),
		})
	}
	a.summary = fmt.Sprintf("%d of %d long-term favorites are out of rotation", len(forgotten), len(snap.LongArtists))
	return
}
