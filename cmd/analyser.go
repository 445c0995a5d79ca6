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
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ademuri/taste-engine/internal/analysis"
	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
)

type Analysis struct {
	results      [][]string
	summary      string
	BodyOverride string
}

type AnalyserConfig struct {
	// Number of results to return, default is all results.
	NumToReturn int
}

// Run is one listener's analysis session. The catalog snapshot is fetched on
// first use and shared by every analyser in the run.
type Run struct {
	App     *App
	Session *catalog.Session
	Now     time.Time

	snapshot *analysis.Snapshot
}

func (r *Run) Snapshot(ctx context.Context) (analysis.Snapshot, error) {
	if r.snapshot != nil {
		return *r.snapshot, nil
	}
	if !r.Session.HasCredential() {
		return analysis.Snapshot{}, fmt.Errorf("access_token or refresh_token must be set")
	}
	snap, err := r.App.Dashboard.Snapshot(ctx, r.Session)
	if err != nil {
		return analysis.Snapshot{}, fmt.Errorf("loading listener data: %w", err)
	}
	r.snapshot = &snap
	return snap, nil
}

type Analyser interface {
	GetResults(ctx context.Context, run *Run) (Analysis, error)

	GetName() string
}

type Configurable interface {
	Configure(params map[string]string) error
}

// newRun builds the app from configuration and binds the configured
// listener to it. The caller closes the app.
func newRun() (*Run, error) {
	app, err := newApp(appConfigFromViper())
	if err != nil {
		return nil, err
	}
	return &Run{
		App:     app,
		Session: app.Session(viper.GetString("access_token"), viper.GetString("refresh_token")),
		Now:     time.Now(),
	}, nil
}

// runAnalyser prints a single analyser's results to stdout.
func runAnalyser(a Analyser) error {
	run, err := newRun()
	if err != nil {
		return err
	}
	defer run.App.Close()

	out, err := a.GetResults(context.Background(), run)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func intParam(params map[string]string, key string, dst *int) error {
	val, ok := params[key]
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func (a Analysis) String() string {
	if a.BodyOverride != "" && len(a.results) == 0 {
		return a.summary
	}
	out := new(bytes.Buffer)
	if len(a.results) > 0 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}
