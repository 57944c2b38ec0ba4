package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ademuri/listen-history/internal/aggregate"
	"github.com/ademuri/listen-history/internal/listening"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms [from (optional)] [to (optional)]",
	Short: "Hours listened per year on each platform",
	Long:  `Every platform gets a row for each year with listening, even when it wasn't used that year. Years look like 'yyyy'.`,
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyser(cmd, PlatformsAnalyser{}, args)
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}

type PlatformsAnalyser struct{}

func (PlatformsAnalyser) GetName() string {
	return "Hours per platform"
}

func (PlatformsAnalyser) GetResults(table *listening.Table, params aggregate.Params) (analysis Analysis, err error) {
	totals := aggregate.ByPlatform(table, params)

	analysis.results = [][]string{{"Year", "Platform", "Hours"}}
	hours := map[listening.Platform]int{}
	for _, row := range totals {
		analysis.results = append(analysis.results, []string{strconv.Itoa(row.Year), row.Platform.String(), strconv.Itoa(row.Hours)})
		hours[row.Platform] += row.Hours
	}
	analysis.points = totals.Melt()
	analysis.summary = fmt.Sprintf("%d hours on Deezer and %d hours on Spotify in %s",
		hours[listening.Deezer], hours[listening.Spotify], params)
	return
}
