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
	"bytes"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-history/internal/aggregate"
	"github.com/ademuri/listen-history/internal/listening"
)

type Analysis struct {
	results [][]string
	summary string
	points  []aggregate.Point
}

type AnalyserConfig struct {
	// Number of results to return, default is aggregate.DefaultTopN.
	NumToReturn int
}

type Analyser interface {
	GetResults(table *listening.Table, params aggregate.Params) (Analysis, error)

	GetName() string
}

func (a Analysis) String() string {
	return render(a.results, a.summary)
}

// Long renders the analysis as (category, series, value) rows.
func (a Analysis) Long() string {
	rows := [][]string{{"Category", "Series", "Value"}}
	for _, p := range a.points {
		rows = append(rows, []string{p.Category, p.Series, strconv.Itoa(p.Value)})
	}
	return render(rows, a.summary)
}

// empty reports whether the analysis has no data rows.
func (a Analysis) empty() bool {
	return len(a.results) <= 1
}

func render(results [][]string, summary string) string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(results[0])
	for _, row := range results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", summary)
	return out.String()
}

// runAnalyser loads the exports, applies the year arguments and prints a's
// results.
func runAnalyser(cmd *cobra.Command, a Analyser, args []string) error {
	table, err := loadTable(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	params, err := parseYearRangeFromArgs(args, table)
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	analysis, err := a.GetResults(table, params)
	if err != nil {
		return fmt.Errorf("%s: %w", a.GetName(), err)
	}
	if analysis.empty() {
		slog.Warn("no listening matches", "view", a.GetName(), "years", params.String())
	}

	if viper.GetBool("long") {
		fmt.Fprint(cmd.OutOrStdout(), analysis.Long())
	} else {
		fmt.Fprint(cmd.OutOrStdout(), analysis)
	}
	return nil
}

// yearHeader lists the years of a per-year breakdown as column titles.
func yearHeader(ranked aggregate.Rankings) []string {
	if len(ranked) == 0 {
		return nil
	}
	header := make([]string, 0, len(ranked[0].ByYear))
	for _, y := range ranked[0].ByYear {
		header = append(header, strconv.Itoa(y.Year))
	}
	return header
}

// rankingRows renders a ranking with one column per year.
func rankingRows(title string, ranked aggregate.Rankings) [][]string {
	rows := [][]string{append([]string{title, "Minutes"}, yearHeader(ranked)...)}
	for _, r := range ranked {
		row := []string{r.Name, strconv.Itoa(r.Minutes)}
		for _, y := range r.ByYear {
			row = append(row, strconv.Itoa(y.Minutes))
		}
		rows = append(rows, row)
	}
	return rows
}
