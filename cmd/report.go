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
	"io"
	"os"

	"github.com/ademuri/taste-engine/internal/analysis"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generates a comprehensive music taste report",
	Long: `Compares the listener's current taste against their long-term baseline and
prints a YAML report of top artists, genres, mood, drift, sonic DNA,
predictions and forgotten favorites.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(w io.Writer) error {
	run, err := newRun()
	if err != nil {
		return err
	}
	defer run.App.Close()

	snap, err := run.Snapshot(context.Background())
	if err != nil {
		return err
	}
	return writeReport(w, analysis.GenerateReport(snap, run.Now))
}

func writeReport(w io.Writer, report *analysis.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	err := encoder.Encode(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}
