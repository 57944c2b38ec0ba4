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
	"github.com/spf13/viper"

	"github.com/ademuri/listen-history/internal/aggregate"
	"github.com/ademuri/listen-history/internal/listening"
)

var topSongsCmd = &cobra.Command{
	Use:   "top-songs [from (optional)] [to (optional)]",
	Short: "Gets the most listened songs",
	Long:  `Ranks song titles by minutes listened across both platforms. Years look like 'yyyy'.`,
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := AnalyserConfig{NumToReturn: viper.GetInt("songs-number")}
		return runAnalyser(cmd, TopSongsAnalyzer{Config: config}, args)
	},
}

func init() {
	rootCmd.AddCommand(topSongsCmd)

	var number int
	topSongsCmd.Flags().IntVarP(&number, "number", "n", aggregate.DefaultTopN, "number of results to return")
	viper.BindPFlag("songs-number", topSongsCmd.Flags().Lookup("number"))
}

type TopSongsAnalyzer struct {
	Config AnalyserConfig
}

func (t TopSongsAnalyzer) GetName() string {
	return "Top songs"
}

func (t TopSongsAnalyzer) GetResults(table *listening.Table, params aggregate.Params) (analysis Analysis, err error) {
	ranked := aggregate.TopSongs(table, params, t.Config.NumToReturn)

	analysis.results = rankingRows("Song", ranked)
	analysis.points = ranked.Melt()
	analysis.summary = fmt.Sprintf("Top %d songs in %s", len(ranked), params)
	return
}
