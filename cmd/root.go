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

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-history/internal/source"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "listen-history",
	Short: "Summarizes Deezer and Spotify listening history exports",
	Long: `Reads a Deezer listening-history workbook and/or a Spotify extended
streaming history, merges them into one timeline and prints summaries of it:
hours per platform and per month, top artists and songs, and the listening
time of chosen artists over the years.

Years are given as 'yyyy'. One year selects just that year; two select an
inclusive range; none selects every year in the exports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log-level"), cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.listen-history.yaml)")

	var deezerPath string
	rootCmd.PersistentFlags().StringVar(&deezerPath, "deezer", "", "Path to the Deezer listening-history workbook (.xlsx)")
	viper.BindPFlag("deezer", rootCmd.PersistentFlags().Lookup("deezer"))

	var spotifyPath string
	rootCmd.PersistentFlags().StringVar(&spotifyPath, "spotify", "", "Path to the Spotify streaming history (.json)")
	viper.BindPFlag("spotify", rootCmd.PersistentFlags().Lookup("spotify"))

	var cachePath string
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "Path to the SQLite parse cache; empty disables it")
	viper.BindPFlag("cache", rootCmd.PersistentFlags().Lookup("cache"))

	var deezerSheet string
	rootCmd.PersistentFlags().StringVar(&deezerSheet, "deezer-sheet", source.DefaultDeezerSheet, "Sheet of the Deezer workbook holding the listening history")
	viper.BindPFlag("deezer-sheet", rootCmd.PersistentFlags().Lookup("deezer-sheet"))

	var deezerTimezone string
	rootCmd.PersistentFlags().StringVar(&deezerTimezone, "deezer-timezone", "UTC", "IANA time zone the Deezer export's dates are in")
	viper.BindPFlag("deezer-timezone", rootCmd.PersistentFlags().Lookup("deezer-timezone"))

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	var long bool
	rootCmd.PersistentFlags().BoolVar(&long, "long", false, "Print views as (category, series, value) rows, ready for charting")
	viper.BindPFlag("long", rootCmd.PersistentFlags().Lookup("long"))
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
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".listen-history" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".listen-history")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}
