package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ademuri/listen-history/internal/listening"
)

// CachedFile describes one cached export.
type CachedFile struct {
	Key      FileKey
	Events   int
	ParsedAt time.Time
}

// GetEvents returns the events cached for key. ok is false when nothing is
// cached for this exact file identity and variant.
func (s *Store) GetEvents(key FileKey) (events []listening.Event, ok bool, err error) {
	var fileID int64
	err = s.db.QueryRow("SELECT id FROM SourceFile WHERE platform = ? AND path = ? AND mod_time = ? AND size = ? AND variant = ?",
		key.Platform.String(), key.Path, key.ModTime.UnixNano(), key.Size, key.Variant).Scan(&fileID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up %s: %w", key, err)
	}

	rows, err := s.db.Query(`
		SELECT date, song_title, artist, album_title, seconds, ip_address, country_code
		FROM Event
		WHERE file = ?
		ORDER BY seq ASC
	`, fileID)
	if err != nil {
		return nil, false, fmt.Errorf("querying events of %s: %w", key, err)
	}
	defer rows.Close()

	events = []listening.Event{}
	for rows.Next() {
		var date int64
		e := listening.Event{Platform: key.Platform}
		if err := rows.Scan(&date, &e.SongTitle, &e.Artist, &e.AlbumTitle, &e.ListeningSeconds, &e.IPAddress, &e.CountryCode); err != nil {
			return nil, false, fmt.Errorf("scanning event: %w", err)
		}
		e.Timestamp = time.Unix(0, date).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return events, true, nil
}

// ListFiles returns every cached export, ordered by platform and path.
func (s *Store) ListFiles() ([]CachedFile, error) {
	rows, err := s.db.Query(`
		SELECT f.platform, f.path, f.mod_time, f.size, f.variant, f.parsed_at, COUNT(e.seq)
		FROM SourceFile f
		LEFT JOIN Event e ON e.file = f.id
		GROUP BY f.id
		ORDER BY f.platform, f.path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying cached files: %w", err)
	}
	defer rows.Close()

	var files []CachedFile
	for rows.Next() {
		var platform string
		var modTime int64
		var f CachedFile
		if err := rows.Scan(&platform, &f.Key.Path, &modTime, &f.Key.Size, &f.Key.Variant, &f.ParsedAt, &f.Events); err != nil {
			return nil, fmt.Errorf("scanning cached file: %w", err)
		}
		f.Key.Platform, err = listening.ParsePlatform(platform)
		if err != nil {
			return nil, err
		}
		f.Key.ModTime = time.Unix(0, modTime)
		files = append(files, f)
	}
	return files, rows.Err()
}
