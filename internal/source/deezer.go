// Package source parses raw streaming-platform export files into listening
// events.
package source

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ademuri/listen-history/internal/listening"
)

const (
	// DefaultDeezerSheet is the listening-history sheet of a Deezer GDPR export.
	DefaultDeezerSheet = "10_listeningHistory"

	deezerDateLayout = "2006-01-02 15:04:05"
)

// Deezer column headers.
const (
	colSongTitle     = "Song Title"
	colArtist        = "Artist"
	colISRC          = "ISRC"
	colAlbumTitle    = "Album Title"
	colIPAddress     = "IP Address"
	colListeningTime = "Listening Time"
	colDate          = "Date"
)

var deezerRequired = []string{colSongTitle, colArtist, colISRC, colListeningTime, colDate}

// DeezerOptions configures ParseDeezer. The zero value reads the default
// sheet and interprets dates as UTC.
type DeezerOptions struct {
	Sheet string
	// Location the export's naive timestamps are expressed in. Parsed times
	// are converted to UTC.
	Location *time.Location
	Logger   *slog.Logger
}

func (o DeezerOptions) withDefaults() DeezerOptions {
	if o.Sheet == "" {
		o.Sheet = DefaultDeezerSheet
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Variant identifies the options that change the parsed events: the sheet
// read and the zone dates are interpreted in.
func (o DeezerOptions) Variant() string {
	o = o.withDefaults()
	return fmt.Sprintf("sheet=%s;tz=%s", o.Sheet, o.Location)
}

// ParseDeezer reads the listening-history sheet of a Deezer export workbook.
// Any malformed row fails the whole file.
func ParseDeezer(path string, opts DeezerOptions) ([]listening.Event, error) {
	opts = opts.withDefaults()
	fail := func(row int, kind, err error) error {
		return &listening.SourceError{Platform: listening.Deezer, Path: path, Row: row, Kind: kind, Err: err}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fail(0, listening.ErrSourceRead, err)
	}
	defer f.Close()

	rows, err := f.GetRows(opts.Sheet)
	if err != nil {
		var missing excelize.ErrSheetNotExist
		if errors.As(err, &missing) {
			return nil, fail(0, listening.ErrSourceRead, fmt.Errorf("sheet %q not found (have %v)", opts.Sheet, f.GetSheetList()))
		}
		return nil, fail(0, listening.ErrSourceRead, err)
	}
	if len(rows) == 0 {
		return nil, fail(0, listening.ErrSchema, fmt.Errorf("sheet %q has no header row", opts.Sheet))
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		columns[strings.TrimSpace(header)] = i
	}
	var missing []string
	for _, name := range deezerRequired {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fail(0, listening.ErrSchema, fmt.Errorf("missing columns %q", missing))
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	events := make([]listening.Event, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 1
		if blank(row) {
			continue
		}

		rawDate := cell(row, colDate)
		ts, err := time.ParseInLocation(deezerDateLayout, rawDate, opts.Location)
		if err != nil {
			return nil, fail(rowNum, listening.ErrTimestamp, err)
		}

		rawSeconds := cell(row, colListeningTime)
		seconds, err := strconv.ParseFloat(rawSeconds, 64)
		if err != nil {
			return nil, fail(rowNum, listening.ErrValue, fmt.Errorf("listening time %q: %w", rawSeconds, err))
		}
		if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return nil, fail(rowNum, listening.ErrValue, fmt.Errorf("listening time %q is not a number", rawSeconds))
		}
		if seconds < 0 {
			return nil, fail(rowNum, listening.ErrValue, fmt.Errorf("negative listening time %v", seconds))
		}

		events = append(events, listening.Event{
			Timestamp:        ts.UTC(),
			SongTitle:        cell(row, colSongTitle),
			Artist:           cell(row, colArtist),
			AlbumTitle:       cell(row, colAlbumTitle),
			IPAddress:        cell(row, colIPAddress),
			ListeningSeconds: seconds,
			Platform:         listening.Deezer,
			CountryCode:      countryFromISRC(cell(row, colISRC)),
		})
	}

	opts.Logger.Debug("Parsed Deezer export",
		slog.String("path", path),
		slog.String("sheet", opts.Sheet),
		slog.Int("events", len(events)))
	return events, nil
}

// countryFromISRC returns the two-letter country prefix of an ISRC, or ""
// when the code is too short to carry one.
func countryFromISRC(isrc string) string {
	if len(isrc) < 2 {
		return ""
	}
	return isrc[:2]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
