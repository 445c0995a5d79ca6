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

	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/spf13/cobra"
)

var countryName string

var countryCmd = &cobra.Command{
	Use:   "country <iso_code>",
	Short: "Scores how well the listener matches a country's charts",
	Long: `Fetches the country's top songs and scores the overlap of their songs, artists
and genres with the listener's short-term taste. The country can be given by
its ISO code, or by --name alone with an empty code ('').`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(&CountryAnalyzer{Code: args[0], Name: countryName})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(countryCmd)

	countryCmd.Flags().StringVar(&countryName, "name", "", "Display name of the country, used when the code is not known")
}

type CountryAnalyzer struct {
	Code string
	Name string
}

func (c *CountryAnalyzer) Configure(params map[string]string) error {
	c.Code = params["code"]
	c.Name = params["name"]
	if c.Code == "" && c.Name == "" {
		return fmt.Errorf("country needs a code or name param")
	}
	return nil
}

func (c *CountryAnalyzer) GetName() string {
	if c.Name != "" {
		return "Chart match for " + c.Name
	}
	return "Chart match for " + c.Code
}

func (c *CountryAnalyzer) GetResults(ctx context.Context, run *Run) (a Analysis, err error) {
	match := run.App.Matcher.Match(ctx, c.Code, c.Name, run.Session)

	a.results = [][]string{{"#", "Title", "Artist"}}
	for i, song := range match.TopSongs {
		a.results = append(a.results, []string{strconv.Itoa(i + 1), song.Title, song.Artist})
	}

	switch {
	case !match.HasData:
		a.summary = fmt.Sprintf("No chart data: %s", match.Reason)
	case match.Reason != domain.ReasonNone:
		a.summary = fmt.Sprintf("Match score %s (estimated: %s)", percent(match.Score), match.Reason)
	case match.Breakdown == nil:
		a.summary = fmt.Sprintf("Match score %s", percent(match.Score))
	default:
		b := match.Breakdown
		a.summary = fmt.Sprintf("Match score %s: %d/%d chart songs, %d/%d chart artists, %d/%d genres",
			percent(match.Score), b.SongHits, b.ChartSongs, b.ArtistHits, b.ChartArtists, b.GenreHits, b.GenreChecked)
	}
	return
}
