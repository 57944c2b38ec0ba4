package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/listen-history/internal/aggregate"
	"github.com/ademuri/listen-history/internal/listening"
)

var monthsCmd = &cobra.Command{
	Use:   "months [from (optional)] [to (optional)]",
	Short: "Hours listened per month, across platforms",
	Long:  `Prints all twelve months of each year with listening. Years look like 'yyyy'.`,
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyser(cmd, MonthsAnalyser{}, args)
	},
}

func init() {
	rootCmd.AddCommand(monthsCmd)
}

type MonthsAnalyser struct{}

func (MonthsAnalyser) GetName() string {
	return "Hours per month"
}

func (MonthsAnalyser) GetResults(table *listening.Table, params aggregate.Params) (analysis Analysis, err error) {
	totals := aggregate.ByMonth(table, params)

	analysis.results = [][]string{{"Year", "Month", "Hours"}}
	var busiest aggregate.MonthHours
	for _, row := range totals {
		analysis.results = append(analysis.results,
			[]string{strconv.Itoa(row.Year), time.Month(row.Month).String(), strconv.Itoa(row.Hours)})
		if row.Hours > busiest.Hours {
			busiest = row
		}
	}
	analysis.points = totals.Melt()

	if busiest.Hours > 0 {
		analysis.summary = fmt.Sprintf("Busiest month of %s: %s %d with %d hours",
			params, time.Month(busiest.Month), busiest.Year, busiest.Hours)
	} else {
		analysis.summary = fmt.Sprintf("No listening in %s", params)
	}
	return
}
