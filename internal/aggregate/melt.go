package aggregate

import (
	"strconv"
	"time"
)

// Point is one (category, series, value) triple of a long-format table, the
// shape charting libraries expect.
type Point struct {
	Category string `yaml:"category"`
	Series   string `yaml:"series"`
	Value    int    `yaml:"value"`
}

// Melt yields one point per year and platform.
func (pt PlatformTotals) Melt() []Point {
	out := make([]Point, 0, len(pt))
	for _, r := range pt {
		out = append(out, Point{Category: strconv.Itoa(r.Year), Series: r.Platform.String(), Value: r.Hours})
	}
	return out
}

// Melt yields one point per month, with the year as the series.
func (mt MonthTotals) Melt() []Point {
	out := make([]Point, 0, len(mt))
	for _, r := range mt {
		out = append(out, Point{Category: time.Month(r.Month).String()[:3], Series: strconv.Itoa(r.Year), Value: r.Hours})
	}
	return out
}

// Melt yields one point per ranked name and year.
func (rs Rankings) Melt() []Point {
	var out []Point
	for _, r := range rs {
		for _, y := range r.ByYear {
			out = append(out, Point{Category: r.Name, Series: strconv.Itoa(y.Year), Value: y.Minutes})
		}
	}
	return out
}

// Melt yields one point per year and artist.
func (at ArtistTotals) Melt() []Point {
	out := make([]Point, 0, len(at))
	for _, r := range at {
		out = append(out, Point{Category: strconv.Itoa(r.Year), Series: r.Artist, Value: r.Minutes})
	}
	return out
}
