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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taste-engine",
	Short: "Analyzes a listener's Spotify taste",
	Long: `Infers mood and sonic DNA from a listener's top artists and tracks, predicts
how their taste is drifting, scores how well they match each country's charts,
and finds upcoming concerts for their favorite artists.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.taste-engine.yaml)")

	stringFlag("spotify_client_id", "", "Spotify app client ID, used to refresh access tokens")
	stringFlag("spotify_client_secret", "", "Spotify app client secret")
	stringFlag("access_token", "", "Spotify access token of the listener")
	stringFlag("refresh_token", "", "Spotify refresh token of the listener")
	stringFlag("ticketmaster_api_key", "", "Ticketmaster Discovery API key")
	stringFlag("gemini_api_key", "", "Gemini API key; forecasts are disabled without it")
	stringFlag("gemini_model", "", "Gemini model (default gemini-1.5-flash)")
	stringFlag("lastfm_api_key", "", "last.fm API key, for artist genre tags the catalog lacks")
	stringFlag("lastfm_secret", "", "last.fm secret")
	stringFlag("cache", "", "Path to a SQLite response cache shared between processes (default in memory)")
	stringFlag("sendgrid_api_key", "", "SendGrid API key for the email command")
	stringFlag("from", "", "From email address")

	rootCmd.PersistentFlags().Duration("cache_ttl", 5*time.Minute, "How long catalog responses are cached")
	viper.BindPFlag("cache_ttl", rootCmd.PersistentFlags().Lookup("cache_ttl"))

	rootCmd.PersistentFlags().Int("max_retries", 3, "Retries of a rate limited catalog request")
	viper.BindPFlag("max_retries", rootCmd.PersistentFlags().Lookup("max_retries"))

	rootCmd.PersistentFlags().Duration("request_timeout", 15*time.Second, "Deadline of one catalog request, retries included")
	viper.BindPFlag("request_timeout", rootCmd.PersistentFlags().Lookup("request_timeout"))
}

func stringFlag(name, value, usage string) {
	rootCmd.PersistentFlags().String(name, value, usage)
	viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".taste-engine" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".taste-engine")
	}

	// TASTE_ACCESS_TOKEN overrides access_token, and so on.
	viper.SetEnvPrefix("taste")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}
