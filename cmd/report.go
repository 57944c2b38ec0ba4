package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/listen-history/internal/aggregate"
)

var reportArtists []string
var reportNumber int
var reportCmd = &cobra.Command{
	Use:   "report [from (optional)] [to (optional)]",
	Short: "Generates a YAML report of every summary",
	Long:  `Bundles the per-platform and per-month hours, the top artists and songs and, with --artist, the series of the chosen artists into one YAML document.`,
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runReport(cmd, args)
		if err != nil {
			return fmt.Errorf("Error generating report: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringArrayVarP(&reportArtists, "artist", "a", nil, "artist to follow, may be repeated")
	reportCmd.Flags().IntVarP(&reportNumber, "number", "n", aggregate.DefaultTopN, "length of the top artist and song lists")
}

func runReport(cmd *cobra.Command, args []string) error {
	table, err := loadTable(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	params, err := parseYearRangeFromArgs(args, table)
	if err != nil {
		return err
	}
	params.Artists = reportArtists

	report, err := aggregate.Summarize(table, params, reportNumber)
	if err != nil {
		return fmt.Errorf("analyzing data: %w", err)
	}

	return writeReport(cmd.OutOrStdout(), report)
}

func writeReport(w io.Writer, report *aggregate.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}
