package aggregate

import (
	"cmp"
	"math"
	"slices"

	"github.com/ademuri/listen-history/internal/listening"
)

// DefaultTopN is the length of the top artist and song rankings.
const DefaultTopN = 10

// PlatformHours is the listening time of one platform in one year.
type PlatformHours struct {
	Year     int                `yaml:"year"`
	Platform listening.Platform `yaml:"platform"`
	Hours    int                `yaml:"hours"`
}

// PlatformTotals holds a row for every year in range and every platform.
type PlatformTotals []PlatformHours

// MonthHours is the listening time, across platforms, of one month.
type MonthHours struct {
	Year  int `yaml:"year"`
	Month int `yaml:"month"`
	Hours int `yaml:"hours"`
}

// MonthTotals holds a row for every month of every year in range.
type MonthTotals []MonthHours

// YearMinutes is one year's share of a ranked entry.
type YearMinutes struct {
	Year    int `yaml:"year"`
	Minutes int `yaml:"minutes"`
}

// Ranked is one entry of a top artist or top song ranking.
type Ranked struct {
	Name    string        `yaml:"name"`
	Minutes int           `yaml:"minutes"`
	ByYear  []YearMinutes `yaml:"by_year"`
}

// Rankings is ordered by total listening time, then by name.
type Rankings []Ranked

// ArtistYearMinutes is the listening time of one selected artist in one year.
type ArtistYearMinutes struct {
	Year    int    `yaml:"year"`
	Artist  string `yaml:"artist"`
	Minutes int    `yaml:"minutes"`
}

// ArtistTotals is ordered by year, newest first, then by artist.
type ArtistTotals []ArtistYearMinutes

func hours(seconds float64) int {
	return int(math.Round(seconds / 3600))
}

func minutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}

// inRange returns the events within p's years and the sorted distinct years
// among them.
func inRange(t *listening.Table, p Params) ([]listening.Event, []int) {
	var events []listening.Event
	seen := map[int]bool{}
	var years []int
	t.Each(func(e listening.Event) {
		if !p.inRange(e.Year) {
			return
		}
		events = append(events, e)
		if !seen[e.Year] {
			seen[e.Year] = true
			years = append(years, e.Year)
		}
	})
	slices.Sort(years)
	return events, years
}

type yearPlatform struct {
	year     int
	platform listening.Platform
}

// ByPlatform sums listening hours per year and platform. Every platform gets
// a row for each year with listening in range, zero when it had none.
func ByPlatform(t *listening.Table, p Params) PlatformTotals {
	events, years := inRange(t, p)
	seconds := map[yearPlatform]float64{}
	for _, e := range events {
		seconds[yearPlatform{e.Year, e.Platform}] += e.ListeningSeconds
	}

	out := make(PlatformTotals, 0, len(years)*len(listening.Platforms()))
	for _, y := range years {
		for _, pl := range listening.Platforms() {
			out = append(out, PlatformHours{Year: y, Platform: pl, Hours: hours(seconds[yearPlatform{y, pl}])})
		}
	}
	return out
}

type yearMonth struct {
	year, month int
}

// ByMonth sums listening hours per month. Each year with listening in range
// gets all twelve months.
func ByMonth(t *listening.Table, p Params) MonthTotals {
	events, years := inRange(t, p)
	seconds := map[yearMonth]float64{}
	for _, e := range events {
		seconds[yearMonth{e.Year, e.Month}] += e.ListeningSeconds
	}

	out := make(MonthTotals, 0, len(years)*12)
	for _, y := range years {
		for m := 1; m <= 12; m++ {
			out = append(out, MonthHours{Year: y, Month: m, Hours: hours(seconds[yearMonth{y, m}])})
		}
	}
	return out
}

// TopArtists ranks artists by listening time in range. An event credited to
// several artists counts in full for each of them, so the artist totals can
// add up to more than the time actually listened.
func TopArtists(t *listening.Table, p Params, n int) Rankings {
	return rank(t, p, n, listening.Event.Artists)
}

// TopSongs ranks song titles by listening time in range.
func TopSongs(t *listening.Table, p Params, n int) Rankings {
	return rank(t, p, n, func(e listening.Event) []string {
		return []string{e.SongTitle}
	})
}

type tally struct {
	name   string
	total  float64
	byYear map[int]float64
}

// rank keeps the n entries with the largest unrounded totals. Equal totals
// are ordered by name. Each entry's per-year breakdown covers every year with
// listening in range.
func rank(t *listening.Table, p Params, n int, keys func(listening.Event) []string) Rankings {
	if n <= 0 {
		n = DefaultTopN
	}
	events, years := inRange(t, p)

	tallies := map[string]*tally{}
	for _, e := range events {
		for _, k := range keys(e) {
			tl, ok := tallies[k]
			if !ok {
				tl = &tally{name: k, byYear: map[int]float64{}}
				tallies[k] = tl
			}
			tl.total += e.ListeningSeconds
			tl.byYear[e.Year] += e.ListeningSeconds
		}
	}

	sorted := make([]*tally, 0, len(tallies))
	for _, tl := range tallies {
		sorted = append(sorted, tl)
	}
	slices.SortFunc(sorted, func(a, b *tally) int {
		if c := cmp.Compare(b.total, a.total); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make(Rankings, 0, len(sorted))
	for _, tl := range sorted {
		r := Ranked{Name: tl.name, Minutes: minutes(tl.total), ByYear: make([]YearMinutes, 0, len(years))}
		for _, y := range years {
			r.ByYear = append(r.ByYear, YearMinutes{Year: y, Minutes: minutes(tl.byYear[y])})
		}
		out = append(out, r)
	}
	return out
}

type yearArtist struct {
	year   int
	artist string
}

// ArtistSeries sums listening minutes per year for each of p.Artists. An
// event counts for a selected artist when the artist is one of its credited
// artists. Every matched artist gets a row for each year in which any
// selected artist was heard.
func ArtistSeries(t *listening.Table, p Params) ArtistTotals {
	if len(p.Artists) == 0 {
		return ArtistTotals{}
	}

	selected := slices.Clone(p.Artists)
	slices.Sort(selected)
	selected = slices.Compact(selected)

	seconds := map[yearArtist]float64{}
	matched := map[string]bool{}
	seenYear := map[int]bool{}
	t.Each(func(e listening.Event) {
		if !p.inRange(e.Year) {
			return
		}
		for _, a := range selected {
			if !e.HasArtist(a) {
				continue
			}
			matched[a] = true
			seenYear[e.Year] = true
			seconds[yearArtist{e.Year, a}] += e.ListeningSeconds
		}
	})

	years := make([]int, 0, len(seenYear))
	for y := range seenYear {
		years = append(years, y)
	}
	slices.Sort(years)
	slices.Reverse(years)

	artists := make([]string, 0, len(matched))
	for a := range matched {
		artists = append(artists, a)
	}
	slices.Sort(artists)

	out := make(ArtistTotals, 0, len(years)*len(artists))
	for _, y := range years {
		for _, a := range artists {
			out = append(out, ArtistYearMinutes{Year: y, Artist: a, Minutes: minutes(seconds[yearArtist{y, a}])})
		}
	}
	return out
}
