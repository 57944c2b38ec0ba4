package listening

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Batch is the output of one source parser, tagged with its provenance.
type Batch struct {
	Platform Platform
	Events   []Event
}

// Table is the unified, reconciled listening timeline. It is never modified
// after Reconcile returns it, so it can be shared freely.
type Table struct {
	events []Event
}

// Reconcile merges parser outputs into one unified table.
//
// Batches are concatenated in argument order, preserving event order within
// each batch. Each event's platform is taken from its batch. Events without a
// song title or from before MinYear are dropped, and Year/Month are derived
// from the UTC timestamp.
//
// Reconcile panics if a batch carries an invalid platform or an event has a
// negative or NaN duration: the parsers never produce either.
func Reconcile(batches ...Batch) *Table {
	n := 0
	for _, b := range batches {
		n += len(b.Events)
	}
	out := make([]Event, 0, n)

	for _, b := range batches {
		if !b.Platform.Valid() {
			panic(fmt.Sprintf("listening: reconciling batch with invalid platform %d", int(b.Platform)))
		}
		for _, e := range b.Events {
			if !(e.ListeningSeconds >= 0) {
				panic(fmt.Sprintf("listening: invalid listening time %v for %q", e.ListeningSeconds, e.SongTitle))
			}
			if strings.TrimSpace(e.SongTitle) == "" {
				continue
			}
			ts := e.Timestamp.UTC()
			if ts.Year() < MinYear {
				continue
			}
			e.Timestamp = ts
			e.Platform = b.Platform
			e.Year = ts.Year()
			e.Month = int(ts.Month())
			out = append(out, e)
		}
	}
	return &Table{events: out}
}

// Len returns the number of events in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.events)
}

// Events returns a copy of the table's events in reconciliation order.
func (t *Table) Events() []Event {
	if t == nil {
		return nil
	}
	return slices.Clone(t.events)
}

// Each calls fn for every event, in order, without copying the table.
func (t *Table) Each(fn func(Event)) {
	if t == nil {
		return
	}
	for _, e := range t.events {
		fn(e)
	}
}

// Count returns the number of events per platform.
func (t *Table) Count() map[Platform]int {
	counts := make(map[Platform]int, len(Platforms()))
	for _, p := range Platforms() {
		counts[p] = 0
	}
	t.Each(func(e Event) { counts[e.Platform]++ })
	return counts
}

// Artists returns the distinct artist universe: every artist field exploded,
// trimmed and sorted.
func (t *Table) Artists() []string {
	seen := make(map[string]struct{})
	t.Each(func(e Event) {
		for _, a := range e.Artists() {
			seen[a] = struct{}{}
		}
	})
	artists := make([]string, 0, len(seen))
	for a := range seen {
		artists = append(artists, a)
	}
	slices.Sort(artists)
	return artists
}

// Years returns the sorted distinct years present in the table.
func (t *Table) Years() []int {
	seen := make(map[int]struct{})
	t.Each(func(e Event) { seen[e.Year] = struct{}{} })
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Span returns the earliest and latest timestamps. Both are zero for an
// empty table.
func (t *Table) Span() (first, last time.Time) {
	t.Each(func(e Event) {
		if first.IsZero() || e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	})
	return first, last
}
