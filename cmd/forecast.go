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

	"github.com/ademuri/taste-engine/internal/domain"
	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Predicts where the listener's taste is heading",
	Long: `Lists predictions derived from how the listener's mood and genres have drifted.
When gemini_api_key is set, the model's forecast for the coming year is added.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(ForecastAnalyzer{})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

type ForecastAnalyzer struct{}

func (f ForecastAnalyzer) GetName() string {
	return "Taste forecast"
}

func (f ForecastAnalyzer) GetResults(ctx context.Context, run *Run) (a Analysis, err error) {
	snap, err := run.Snapshot(ctx)
	if err != nil {
		return
	}
	board := run.App.Dashboard.Build(snap)

	a.results = [][]string{{"Source", "", "Prediction", "Confidence"}}
	a.results = append(a.results, predictionRows("drift", board.Predictions)...)

	if !run.App.Forecast.Enabled() {
		a.summary = "Set gemini_api_key for a model forecast"
		return
	}
	forecast, err := run.App.Forecast.Predict(ctx, board.ForecastPayload())
	if err != nil {
		err = fmt.Errorf("forecasting: %w", err)
		return
	}
	a.results = append(a.results, predictionRows("model", forecast.Predictions)...)
	a.summary = forecast.Summary
	return
}

func predictionRows(source string, predictions []domain.Prediction) [][]string {
	rows := make([][]string, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, []string{source, p.Icon, p.Text, percent(p.Confidence)})
	}
	return rows
}
