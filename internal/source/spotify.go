package source

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ademuri/listen-history/internal/listening"
)

const spotifyTimeLayout = "2006-01-02T15:04:05Z"

// spotifyRecord selects the fields we use by name; anything else in the
// export is ignored. Pointers distinguish absent/null from zero values.
type spotifyRecord struct {
	TS       *string  `json:"ts"`
	MsPlayed *float64 `json:"ms_played"`
	IPAddr   *string  `json:"ip_addr"`
	Track    *string  `json:"master_metadata_track_name"`
	// Spotify only exports the album artist. It's used as the event's artist,
	// which is wrong for compilations and features.
	AlbumArtist *string `json:"master_metadata_album_artist_name"`
	Album       *string `json:"master_metadata_album_album_name"`
}

// ParseSpotify reads a Spotify extended streaming history file, either a JSON
// array of plays or newline-delimited JSON.
func ParseSpotify(path string) ([]listening.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &listening.SourceError{Platform: listening.Spotify, Path: path, Kind: listening.ErrSourceRead, Err: err}
	}
	defer f.Close()

	events, err := DecodeSpotify(f)
	if err != nil {
		var se *listening.SourceError
		if errors.As(err, &se) {
			se.Path = path
		}
		return nil, err
	}
	return events, nil
}

// DecodeSpotify decodes Spotify plays from r. Errors are *listening.SourceError
// values with an empty Path.
func DecodeSpotify(r io.Reader) ([]listening.Event, error) {
	fail := func(row int, kind, err error) error {
		return &listening.SourceError{Platform: listening.Spotify, Row: row, Kind: kind, Err: err}
	}

	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fail(0, listening.ErrSourceRead, err)
	}

	dec := json.NewDecoder(br)
	isArray := first == '['
	if isArray {
		if _, err := dec.Token(); err != nil {
			return nil, fail(0, listening.ErrSourceRead, err)
		}
	} else if first != '{' {
		return nil, fail(0, listening.ErrSourceRead, fmt.Errorf("expected JSON array or objects, found %q", first))
	}

	var events []listening.Event
	for row := 1; ; row++ {
		if isArray && !dec.More() {
			break
		}
		var rec spotifyRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF && !isArray {
				break
			}
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return nil, fail(row, listening.ErrSchema, err)
			}
			return nil, fail(row, listening.ErrSourceRead, err)
		}
		e, err := rec.event(func(kind, err error) error { return fail(row, kind, err) })
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if isArray {
		if _, err := dec.Token(); err != nil {
			return nil, fail(0, listening.ErrSourceRead, fmt.Errorf("unterminated array: %w", err))
		}
	}
	return events, nil
}

func (r spotifyRecord) event(fail func(kind, err error) error) (listening.Event, error) {
	if r.TS == nil {
		return listening.Event{}, fail(listening.ErrSchema, errors.New(`missing field "ts"`))
	}
	if r.MsPlayed == nil {
		return listening.Event{}, fail(listening.ErrSchema, errors.New(`missing field "ms_played"`))
	}
	ts, err := time.Parse(spotifyTimeLayout, *r.TS)
	if err != nil {
		return listening.Event{}, fail(listening.ErrTimestamp, err)
	}
	if *r.MsPlayed < 0 {
		return listening.Event{}, fail(listening.ErrValue, fmt.Errorf("negative ms_played %v", *r.MsPlayed))
	}

	return listening.Event{
		Timestamp:        ts.UTC(),
		SongTitle:        deref(r.Track),
		Artist:           deref(r.AlbumArtist),
		AlbumTitle:       deref(r.Album),
		IPAddress:        deref(r.IPAddr),
		ListeningSeconds: MillisToSeconds(*r.MsPlayed),
		Platform:         listening.Spotify,
	}, nil
}

// MillisToSeconds converts a millisecond duration to whole seconds, rounding
// half away from zero: 1499 -> 1, 1500 -> 2, 2500 -> 3.
func MillisToSeconds(ms float64) float64 {
	return math.Round(ms / 1000)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xEF:
			// UTF-8 byte order mark.
			if next, err := br.Peek(2); err == nil && next[0] == 0xBB && next[1] == 0xBF {
				br.Discard(2)
				continue
			}
		}
		return b, br.UnreadByte()
	}
}
