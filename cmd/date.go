package cmd

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ademuri/listen-history/internal/aggregate"
	"github.com/ademuri/listen-history/internal/listening"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// parseYearRangeFromArgs turns the optional [from] [to] arguments into
// aggregate parameters. With no arguments the range spans the whole table.
func parseYearRangeFromArgs(args []string, table *listening.Table) (params aggregate.Params, err error) {
	switch len(args) {
	case 0:
		params = aggregate.DefaultParams(table)

	case 1:
		params.MinYear, err = parseYear(args[0])
		params.MaxYear = params.MinYear

	case 2:
		params.MinYear, err = parseYear(args[0])
		if err != nil {
			return
		}
		params.MaxYear, err = parseYear(args[1])

	default:
		err = fmt.Errorf("Expected at most two year arguments")
	}
	return
}

func parseYear(ys string) (int, error) {
	if !yearPattern.MatchString(ys) {
		return 0, fmt.Errorf("Invalid format: %q, expected yyyy", ys)
	}
	year, err := strconv.Atoi(ys)
	if err != nil {
		return 0, fmt.Errorf("Parsing year: %w", err)
	}
	return year, nil
}
