package source

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ademuri/listen-history/internal/listening"
)

var deezerHeader = []interface{}{
	"Song Title", "Artist", "ISRC", "Album Title", "IP Address",
	"Listening Time", "Platform Name", "Platform Model", "Date",
}

// writeWorkbook saves rows (header first) to a sheet of a new workbook in a
// temp dir and returns its path.
func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "deezer.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseDeezer(t *testing.T) {
	path := writeWorkbook(t, DefaultDeezerSheet, [][]interface{}{
		deezerHeader,
		{"Levitating", "Dua Lipa, DaBaby", "GBAHT2000942", "Future Nostalgia", "10.0.0.1", "203", "Android", "Pixel", "2021-03-04 18:22:01"},
		{"Short ISRC", "Someone", "F", "", "", "12.5", "Web", "", "2020-01-01 00:00:00"},
		{},
		{"", "No title", "", "", "", "7", "Web", "", "2019-06-01 08:00:00"},
	})

	events, err := ParseDeezer(path, DeezerOptions{})
	require.NoError(t, err)
	require.Len(t, events, 3, "blank rows are skipped, untitled rows are left to the reconciler")

	e := events[0]
	assert.Equal(t, "Levitating", e.SongTitle)
	assert.Equal(t, "Dua Lipa, DaBaby", e.Artist)
	assert.Equal(t, "Future Nostalgia", e.AlbumTitle)
	assert.Equal(t, "10.0.0.1", e.IPAddress)
	assert.Equal(t, 203.0, e.ListeningSeconds)
	assert.Equal(t, "GB", e.CountryCode)
	assert.Equal(t, listening.Deezer, e.Platform)
	assert.Equal(t, time.Date(2021, time.March, 4, 18, 22, 1, 0, time.UTC), e.Timestamp)

	assert.Equal(t, 12.5, events[1].ListeningSeconds, "seconds are copied unchanged")
	assert.Empty(t, events[1].CountryCode)
	assert.Empty(t, events[2].SongTitle)
}

func TestParseDeezerLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	path := writeWorkbook(t, DefaultDeezerSheet, [][]interface{}{
		deezerHeader,
		{"Song", "Artist", "FR0000000001", "", "", "60", "", "", "2020-07-01 12:00:00"},
	})
	events, err := ParseDeezer(path, DeezerOptions{Location: paris})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2020, time.July, 1, 10, 0, 0, 0, time.UTC), events[0].Timestamp)
}

func TestParseDeezerErrors(t *testing.T) {
	good := []interface{}{"Song", "Artist", "GB0000000001", "", "", "60", "", "", "2020-07-01 12:00:00"}

	tests := []struct {
		name    string
		sheet   string
		rows    [][]interface{}
		opts    DeezerOptions
		wantErr error
		wantRow int
	}{
		{
			name:    "missing sheet",
			sheet:   "Sheet1",
			rows:    [][]interface{}{deezerHeader, good},
			wantErr: listening.ErrSourceRead,
		},
		{
			name:    "custom sheet missing column",
			sheet:   "history",
			opts:    DeezerOptions{Sheet: "history"},
			rows:    [][]interface{}{{"Song Title", "Artist", "Date"}, {"S", "A", "2020-07-01 12:00:00"}},
			wantErr: listening.ErrSchema,
		},
		{
			name:    "empty sheet",
			sheet:   DefaultDeezerSheet,
			wantErr: listening.ErrSchema,
		},
		{
			name:  "timestamp in another format",
			sheet: DefaultDeezerSheet,
			rows: [][]interface{}{
				deezerHeader,
				good,
				{"Song", "Artist", "GB0000000001", "", "", "60", "", "", "01/07/2020 12:00"},
			},
			wantErr: listening.ErrTimestamp,
			wantRow: 2,
		},
		{
			name:    "missing timestamp",
			sheet:   DefaultDeezerSheet,
			rows:    [][]interface{}{deezerHeader, {"Song", "Artist", "GB0000000001", "", "", "60"}},
			wantErr: listening.ErrTimestamp,
			wantRow: 1,
		},
		{
			name:    "non numeric listening time",
			sheet:   DefaultDeezerSheet,
			rows:    [][]interface{}{deezerHeader, {"Song", "Artist", "GB0000000001", "", "", "1m", "", "", "2020-07-01 12:00:00"}},
			wantErr: listening.ErrValue,
			wantRow: 1,
		},
		{
			name:    "negative listening time",
			sheet:   DefaultDeezerSheet,
			rows:    [][]interface{}{deezerHeader, {"Song", "Artist", "GB0000000001", "", "", "-4", "", "", "2020-07-01 12:00:00"}},
			wantErr: listening.ErrValue,
			wantRow: 1,
		},
		{
			name:    "NaN listening time",
			sheet:   DefaultDeezerSheet,
			rows:    [][]interface{}{deezerHeader, good, {"Song", "Artist", "GB0000000001", "", "", "NaN", "", "", "2020-07-01 12:00:00"}},
			wantErr: listening.ErrValue,
			wantRow: 2,
		},
		{
			name:    "infinite listening time",
			sheet:   DefaultDeezerSheet,
			rows:    [][]interface{}{deezerHeader, {"Song", "Artist", "GB0000000001", "", "", "+Inf", "", "", "2020-07-01 12:00:00"}},
			wantErr: listening.ErrValue,
			wantRow: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeWorkbook(t, tc.sheet, tc.rows)
			events, err := ParseDeezer(path, tc.opts)
			require.Error(t, err)
			assert.Nil(t, events, "no partial results")
			assert.ErrorIs(t, err, tc.wantErr)

			var se *listening.SourceError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, path, se.Path)
			assert.Equal(t, listening.Deezer, se.Platform)
			assert.Equal(t, tc.wantRow, se.Row)
		})
	}
}

func TestDeezerOptionsVariant(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	assert.Equal(t, DeezerOptions{}.Variant(), DeezerOptions{Sheet: DefaultDeezerSheet, Location: time.UTC}.Variant())
	assert.NotEqual(t, DeezerOptions{}.Variant(), DeezerOptions{Location: paris}.Variant())
	assert.NotEqual(t, DeezerOptions{}.Variant(), DeezerOptions{Sheet: "history"}.Variant())
}

func TestParseDeezerMissingFile(t *testing.T) {
	_, err := ParseDeezer(filepath.Join(t.TempDir(), "nope.xlsx"), DeezerOptions{})
	assert.ErrorIs(t, err, listening.ErrSourceRead)
}
