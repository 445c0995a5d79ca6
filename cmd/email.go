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
	"html"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type SendEmailConfig struct {
	User           string
	From           string
	To             string
	ReportName     string
	Types          []string
	Params         []map[string]string
	DryRun         bool
	SendgridAPIKey string
	Date           time.Time
}

var emailCmd = &cobra.Command{
	Use:   "email <address> <analysis_name...>",
	Short: "Sends an email report",
	Long: `Emails the listener's analyses to the specified address.
  <analysis_name> is one or more of: dna, top-artists, forgotten, country, concerts, forecast, taste-report.
  With --schedule, keeps running and sends the report on that cron schedule.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		to := args[0]
		analysisTypes := args[1:]

		params, _ := cmd.Flags().GetStringArray("params")
		if len(params) > 0 && len(params) != len(analysisTypes) {
			fmt.Printf("Error: Number of --params flags (%d) must match number of reports (%d), or be 0.\n", len(params), len(analysisTypes))
			os.Exit(1)
		}

		config := SendEmailConfig{
			From:           viper.GetString("from"),
			To:             to,
			ReportName:     viper.GetString("name"),
			Types:          analysisTypes,
			Params:         parseParams(params, len(analysisTypes)),
			DryRun:         viper.GetBool("dryRun"),
			SendgridAPIKey: viper.GetString("sendgrid_api_key"),
		}
		var err error
		if schedule := viper.GetString("schedule"); schedule != "" {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = runEmailSchedule(ctx, schedule, config)
		} else {
			err = sendEmail(config)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().String("name", "", "Name of the report, appended to the subject")
	viper.BindPFlag("name", emailCmd.Flags().Lookup("name"))

	emailCmd.Flags().StringArray("params", nil, "Parameters for reports, matched by index (e.g. --params 'n=20')")

	emailCmd.Flags().String("schedule", "", "Cron spec to send the report on repeatedly (e.g. '0 9 * * MON')")
	viper.BindPFlag("schedule", emailCmd.Flags().Lookup("schedule"))
}

// newEmailSchedule returns a stopped scheduler that calls send on spec.
func newEmailSchedule(spec string, send func()) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, send); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return c, nil
}

// runEmailSchedule sends the report on spec until ctx is done. A failed send
// is logged and retried at the next tick.
func runEmailSchedule(ctx context.Context, spec string, config SendEmailConfig) error {
	if _, err := buildActions(config); err != nil {
		return err
	}
	c, err := newEmailSchedule(spec, func() {
		if err := sendEmail(config); err != nil {
			log.Printf("WARN email: scheduled send to %s: %v", config.To, err)
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Printf("Sending %s to %s on schedule %q", strings.Join(config.Types, ", "), config.To, spec)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// parseParams turns "k=v,k2=v2" strings into one map per report.
func parseParams(params []string, reports int) []map[string]string {
	structured := make([]map[string]string, reports)
	for i, v := range params {
		pMap := make(map[string]string)
		if v != "" {
			for _, pair := range strings.Split(v, ",") {
				kv := strings.SplitN(pair, "=", 2)
				if len(kv) == 2 {
					pMap[kv[0]] = kv[1]
				}
			}
		}
		structured[i] = pMap
	}
	return structured
}

func buildActions(config SendEmailConfig) ([]Analyser, error) {
	actions := make([]Analyser, 0, len(config.Types))
	for i, actionName := range config.Types {
		action, err := getActionFromName(actionName)
		if err != nil {
			return nil, err
		}

		if config.Params != nil && i < len(config.Params) {
			params := config.Params[i]
			if len(params) > 0 {
				if configurable, ok := action.(Configurable); ok {
					err := configurable.Configure(params)
					if err != nil {
						return nil, fmt.Errorf("configuring %s (index %d): %w", actionName, i, err)
					}
				}
			}
		}

		actions = append(actions, action)
	}
	return actions, nil
}

func sendEmail(config SendEmailConfig) error {
	actions, err := buildActions(config)
	if err != nil {
		return err
	}
	if !config.DryRun && config.SendgridAPIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	run, err := newRun()
	if err != nil {
		return err
	}
	defer run.App.Close()

	ctx := context.Background()
	config.Date = run.Now
	if snap, err := run.Snapshot(ctx); err == nil {
		config.User = snap.Profile.DisplayName
	}

	subject, out, err := generateEmailContent(ctx, config, run, actions)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	from := mail.NewEmail("taste-engine", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, subject, out)
	client := sendgrid.NewSendClient(config.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func generateEmailContent(ctx context.Context, config SendEmailConfig, run *Run, actions []Analyser) (subject string, body string, err error) {
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	for _, action := range actions {
		out += `
		<div>
`
		out += fmt.Sprintf("<h2>%s:</h2>\n", html.EscapeString(action.GetName()))
		analysis, err := action.GetResults(ctx, run)
		if err != nil {
			return "", "", fmt.Errorf("getting results for %s: %w", action.GetName(), err)
		}

		if analysis.BodyOverride != "" {
			out += analysis.BodyOverride
		} else if len(analysis.results) <= 1 {
			out += "<div>Nothing to show.</div>\n"
		} else {
			out += `
			<table>
				<thead>
					<tr>
`
			for _, header := range analysis.results[0] {
				out += fmt.Sprintf("<th>%s</th>", html.EscapeString(header))
			}
			out += `				</tr>
			</thead>
			<tbody>
`
			for _, row := range analysis.results[1:] {
				out += "<tr>\n"
				for _, column := range row {
					out += fmt.Sprintf("<td>%s</td>\n", html.EscapeString(column))
				}
				out += "</tr>\n"
			}
			out += `
				</tbody>
			</table>
`
		}
		out += fmt.Sprintf(`<div>%s</div>
		</div>`, html.EscapeString(analysis.summary))
	}
	out += `
  </body>
</html>
`

	subjectSuffix := ""
	if len(config.ReportName) > 0 {
		subjectSuffix = ": " + config.ReportName
	}
	listener := config.User
	if listener == "" {
		listener = config.To
	}
	// Subject line format: Taste report for <User> <Date><Suffix>
	subject = fmt.Sprintf("Taste report for %s %s%s", listener, config.Date.Format("2006-01-02"), subjectSuffix)

	return subject, out, nil
}

func getActionFromName(actionName string) (Analyser, error) {
	// Recreating map every time but it's fine. Pointers required for Configure.
	actionMap := map[string]Analyser{
		"dna":          DNAAnalyzer{},
		"top-artists":  &TopArtistsAnalyzer{Config: AnalyserConfig{NumToReturn: 20}},
		"forgotten":    &ForgottenAnalyzer{SortBy: "rank"},
		"country":      &CountryAnalyzer{Code: "US", Name: "United States"},
		"concerts":     &ConcertsAnalyzer{},
		"forecast":     ForecastAnalyzer{},
		"taste-report": &TasteReportAnalyzer{Artists: 10},
	}

	action, ok := actionMap[actionName]
	if !ok {
		return nil, fmt.Errorf("Invalid analysis_name: %s", actionName)
	}

	return action, nil
}
