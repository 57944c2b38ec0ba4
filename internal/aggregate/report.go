package aggregate

import (
	"fmt"
	"time"

	"github.com/ademuri/listen-history/internal/listening"
)

// Report bundles every aggregate for one set of parameters.
type Report struct {
	Metadata     ReportMetadata `yaml:"metadata"`
	ByPlatform   PlatformTotals `yaml:"by_platform"`
	ByMonth      MonthTotals    `yaml:"by_month"`
	TopArtists   Rankings       `yaml:"top_artists"`
	TopSongs     Rankings       `yaml:"top_songs"`
	ArtistSeries ArtistTotals   `yaml:"artist_series,omitempty"`
}

type ReportMetadata struct {
	GeneratedDate   string         `yaml:"generated_date"`
	Years           string         `yaml:"years"`
	SelectedArtists []string       `yaml:"selected_artists,omitempty"`
	Events          map[string]int `yaml:"events"`
	TotalHours      int            `yaml:"total_hours"`
	FirstListen     string         `yaml:"first_listen,omitempty"`
	LastListen      string         `yaml:"last_listen,omitempty"`
}

const reportTimeLayout = "2006-01-02 15:04:05"

// Summarize validates p and computes every aggregate of t, keeping the top n
// artists and songs.
func Summarize(t *listening.Table, p Params, n int) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultTopN
	}

	report := &Report{
		ByPlatform:   ByPlatform(t, p),
		ByMonth:      ByMonth(t, p),
		TopArtists:   TopArtists(t, p, n),
		TopSongs:     TopSongs(t, p, n),
		ArtistSeries: ArtistSeries(t, p),
	}

	events, _ := inRange(t, p)
	counts := map[string]int{}
	for _, pl := range listening.Platforms() {
		counts[pl.String()] = 0
	}
	var total float64
	var first, last time.Time
	for _, e := range events {
		counts[e.Platform.String()]++
		total += e.ListeningSeconds
		if first.IsZero() || e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}

	report.Metadata = ReportMetadata{
		GeneratedDate:   time.Now().Format("2006-01-02"),
		Years:           p.String(),
		SelectedArtists: p.Artists,
		Events:          counts,
		TotalHours:      hours(total),
	}
	if len(events) > 0 {
		report.Metadata.FirstListen = first.Format(reportTimeLayout)
		report.Metadata.LastListen = last.Format(reportTimeLayout)
	}

	return report, nil
}

// String renders a one-line summary of the metadata.
func (m ReportMetadata) String() string {
	return fmt.Sprintf("%s: %d hours over %d Deezer and %d Spotify plays",
		m.Years, m.TotalHours, m.Events[listening.Deezer.String()], m.Events[listening.Spotify.String()])
}
