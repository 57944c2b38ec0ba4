package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var artistsMatch string
var artistsCmd = &cobra.Command{
	Use:   "artists",
	Short: "Lists every artist in the exports",
	Long:  `Prints the distinct artists, co-credited artists split apart, one per line. These are the names 'artist-series' accepts.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		count := 0
		for _, artist := range table.Artists() {
			if artistsMatch != "" && !strings.Contains(strings.ToLower(artist), strings.ToLower(artistsMatch)) {
				continue
			}
			fmt.Fprintln(out, artist)
			count++
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d artists\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(artistsCmd)

	artistsCmd.Flags().StringVar(&artistsMatch, "match", "", "only list artists whose name contains this, ignoring case")
}
