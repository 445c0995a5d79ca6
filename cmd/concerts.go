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
	"strings"

	"github.com/ademuri/taste-engine/internal/concerts"
	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/spf13/cobra"
)

var (
	concertsCity   string
	concertsSearch []string
)

var concertsCmd = &cobra.Command{
	Use:   "concerts",
	Short: "Finds upcoming concerts for the listener's top artists",
	Long: `Looks up the coming year of shows for up to ten short-term top artists.
--city narrows the list to a city, region or country. --search adds shows for
other artists without changing the top-artist totals.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(&ConcertsAnalyzer{City: concertsCity, Search: concertsSearch})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(concertsCmd)

	concertsCmd.Flags().StringVar(&concertsCity, "city", "", "Only show concerts whose city, region or country contains this")
	concertsCmd.Flags().StringArrayVar(&concertsSearch, "search", nil, "Also look up this artist; may be repeated")
}

type ConcertsAnalyzer struct {
	City   string
	Search []string
}

func (c *ConcertsAnalyzer) Configure(params map[string]string) error {
	c.City = params["city"]
	if val, ok := params["search"]; ok {
		// Params are comma separated, so several artists are joined with ';'.
		c.Search = strings.Split(val, ";")
	}
	return nil
}

func (c *ConcertsAnalyzer) GetName() string {
	if c.City != "" {
		return "Upcoming concerts near " + c.City
	}
	return "Upcoming concerts"
}

func (c *ConcertsAnalyzer) GetResults(ctx context.Context, run *Run) (a Analysis, err error) {
	if run.App.Concerts == nil {
		err = fmt.Errorf("ticketmaster_api_key must be set to look up concerts")
		return
	}
	snap, err := run.Snapshot(ctx)
	if err != nil {
		return
	}

	var artists []string
	for _, artist := range snap.ShortArtists {
		artists = append(artists, artist.Name)
	}

	radar := concerts.NewRadar(run.App.Concerts)
	radar.Load(ctx, artists)
	view := radar.View(c.City)

	a.results = [][]string{{"Date", "Artist", "Venue", "City", "Country", "Source"}}
	for _, e := range view.Events {
		a.results = append(a.results, concertRow(e, "top artist"))
	}

	searched := 0
	for _, name := range c.Search {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, err := radar.Search(ctx, name); err != nil {
			fmt.Fprintf(os.Stderr, "Searching %q: %v\n", name, err)
		}
	}
	for _, e := range concerts.FilterByCity(radar.Searched(), c.City) {
		a.results = append(a.results, concertRow(e, "search"))
		searched++
	}

	a.summary = fmt.Sprintf("Showing %d of %d top-artist concerts", view.Total, view.TotalAll)
	if searched > 0 {
		a.summary += fmt.Sprintf(", plus %d from searches", searched)
	}
	return
}

func concertRow(e domain.ConcertEvent, source string) []string {
	date := e.Date
	if !e.Start.IsZero() {
		date = e.Start.Format("2006-01-02 15:04")
	}
	city := e.City
	if e.Region != "" {
		city += ", " + e.Region
	}
	return []string{date, e.Artist, e.Venue, city, e.Country, source}
}
