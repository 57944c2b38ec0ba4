// Package listening holds the unified listening-event model shared by the
// source parsers, the reconciler and the aggregation engine.
package listening

import (
	"fmt"
	"strings"
	"time"
)

// MinYear is the first year covered by the unified table. Earlier events are
// dropped during reconciliation.
const MinYear = 2019

// Platform identifies the streaming service an event was exported from.
type Platform int

const (
	PlatformUnknown Platform = iota
	Deezer
	Spotify
)

// Platforms lists the known platforms in display order. Each call returns a
// new slice.
func Platforms() []Platform {
	return []Platform{Deezer, Spotify}
}

func (p Platform) String() string {
	switch p {
	case Deezer:
		return "Deezer"
	case Spotify:
		return "Spotify"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	return p == Deezer || p == Spotify
}

// MarshalText lets platforms be used as YAML scalars and map keys.
func (p Platform) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid platform %d", int(p))
	}
	return []byte(p.String()), nil
}

// ParsePlatform is the inverse of Platform.String, case-insensitive.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deezer":
		return Deezer, nil
	case "spotify":
		return Spotify, nil
	}
	return PlatformUnknown, fmt.Errorf("unknown platform %q", s)
}

// Event is one play of one track on one platform.
type Event struct {
	Timestamp  time.Time
	SongTitle  string
	Artist     string // may list several co-artists separated by commas
	AlbumTitle string
	IPAddress  string

	ListeningSeconds float64
	Platform         Platform

	// CountryCode is the ISRC registrant country. Only Deezer exports carry it.
	CountryCode string

	// Set by Reconcile.
	Year  int
	Month int
}

// Artists returns the event's artist list, split on commas and trimmed.
//
// A single event counts fully towards each of its artists; the aggregation
// engine relies on this and deliberately double counts co-listening. Names
// that legitimately contain a comma are split as well.
func (e Event) Artists() []string {
	return SplitArtists(e.Artist)
}

// SplitArtists explodes a comma-separated artist field.
func SplitArtists(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	artists := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			artists = append(artists, p)
		}
	}
	return artists
}

// HasArtist reports whether name is a member of the event's artist list.
func (e Event) HasArtist(name string) bool {
	for _, a := range e.Artists() {
		if a == name {
			return true
		}
	}
	return false
}
