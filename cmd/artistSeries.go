package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ademuri/listen-history/internal/aggregate"
	"github.com/ademuri/listen-history/internal/listening"
)

var seriesArtists []string
var artistSeriesCmd = &cobra.Command{
	Use:   "artist-series [from (optional)] [to (optional)]",
	Short: "Minutes listened per year to chosen artists",
	Long: `Follows the given artists over the years, newest year first. A track counts
for an artist when the artist is one of its credited artists. See 'artists' for
the names known to the exports. Years look like 'yyyy'.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyser(cmd, ArtistSeriesAnalyser{Artists: seriesArtists}, args)
	},
}

func init() {
	rootCmd.AddCommand(artistSeriesCmd)

	artistSeriesCmd.Flags().StringArrayVarP(&seriesArtists, "artist", "a", nil, "artist to follow, may be repeated")
	artistSeriesCmd.MarkFlagRequired("artist")
}

type ArtistSeriesAnalyser struct {
	Artists []string
}

func (ArtistSeriesAnalyser) GetName() string {
	return "Artist series"
}

func (a ArtistSeriesAnalyser) GetResults(table *listening.Table, params aggregate.Params) (analysis Analysis, err error) {
	params.Artists = a.Artists
	if err = params.Validate(); err != nil {
		return
	}
	series := aggregate.ArtistSeries(table, params)

	analysis.results = [][]string{{"Year", "Artist", "Minutes"}}
	for _, row := range series {
		analysis.results = append(analysis.results, []string{strconv.Itoa(row.Year), row.Artist, strconv.Itoa(row.Minutes)})
	}
	analysis.points = series.Melt()

	if len(series) == 0 {
		analysis.summary = fmt.Sprintf("No listening to %s in %s", strings.Join(a.Artists, ", "), params)
	} else {
		analysis.summary = fmt.Sprintf("Listening to %s in %s", strings.Join(a.Artists, ", "), params)
	}
	return
}
