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

	"github.com/spf13/cobra"

	"github.com/ademuri/listen-history/internal/aggregate"
	"github.com/ademuri/listen-history/internal/listening"
)

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists [from (optional)] [to (optional)]",
	Short: "Gets the most listened artists",
	Long: `Ranks artists by minutes listened, with a column per year. A track credited
to several artists counts in full for each of them. Years look like 'yyyy'.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := AnalyserConfig{NumToReturn: topArtistsNumber}
		return runAnalyser(cmd, TopArtistsAnalyzer{}.SetConfig(config), args)
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", aggregate.DefaultTopN, "number of results to return")
}

type TopArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t TopArtistsAnalyzer) SetConfig(config AnalyserConfig) TopArtistsAnalyzer {
	t.Config = config
	return t
}

func (t TopArtistsAnalyzer) GetName() string {
	return "Top artists"
}

func (t TopArtistsAnalyzer) GetResults(table *listening.Table, params aggregate.Params) (analysis Analysis, err error) {
	ranked := aggregate.TopArtists(table, params, t.Config.NumToReturn)

	analysis.results = rankingRows("Artist", ranked)
	analysis.points = ranked.Melt()
	analysis.summary = fmt.Sprintf("Top %d artists in %s", len(ranked), params)
	return
}
