package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/mattn/go-sqlite3"

	"github.com/ademuri/listen-history/internal/listening"
)

// FileKey identifies one parsed export: which parser read it, the file's
// path and modification signature at the time, and the parser options that
// shaped the events.
type FileKey struct {
	Platform listening.Platform
	Path     string
	ModTime  time.Time
	Size     int64
	// Variant fingerprints the parse options, e.g. the Deezer sheet and time
	// zone. Events cached under another variant are not reused.
	Variant string
}

func (k FileKey) String() string {
	s := fmt.Sprintf("%s:%s@%d/%d", k.Platform, k.Path, k.ModTime.UnixNano(), k.Size)
	if k.Variant != "" {
		s += "[" + k.Variant + "]"
	}
	return s
}

// PutEvents caches the events parsed from key, replacing whatever was cached
// for the same platform and path.
func (s *Store) PutEvents(key FileKey, events []listening.Event) error {
	return withRetry(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		if err := deleteFile(tx, key.Platform, key.Path); err != nil {
			return err
		}

		res, err := tx.Exec("INSERT INTO SourceFile (platform, path, mod_time, size, variant, parsed_at) VALUES (?, ?, ?, ?, ?, ?)",
			key.Platform.String(), key.Path, key.ModTime.UnixNano(), key.Size, key.Variant, time.Now())
		if err != nil {
			return fmt.Errorf("inserting source file %q: %w", key.Path, err)
		}
		fileID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("inserting source file %q: %w", key.Path, err)
		}

		stmt, err := tx.Prepare(`INSERT INTO Event
			(file, seq, date, song_title, artist, album_title, seconds, ip_address, country_code)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing event insert: %w", err)
		}
		defer stmt.Close()

		for i, e := range events {
			_, err := stmt.Exec(fileID, i, e.Timestamp.UnixNano(), e.SongTitle, e.Artist, e.AlbumTitle,
				e.ListeningSeconds, e.IPAddress, e.CountryCode)
			if err != nil {
				return fmt.Errorf("inserting event %d of %q: %w", i, key.Path, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing transaction: %w", err)
		}
		return nil
	})
}

// Clear drops every cached file.
func (s *Store) Clear() error {
	return withRetry(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM Event"); err != nil {
			return fmt.Errorf("clearing events: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM SourceFile"); err != nil {
			return fmt.Errorf("clearing source files: %w", err)
		}
		return tx.Commit()
	})
}

func deleteFile(tx *sql.Tx, platform listening.Platform, path string) error {
	var id int64
	err := tx.QueryRow("SELECT id FROM SourceFile WHERE platform = ? AND path = ?", platform.String(), path).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking source file %q: %w", path, err)
	}

	if _, err := tx.Exec("DELETE FROM Event WHERE file = ?", id); err != nil {
		return fmt.Errorf("deleting events of %q: %w", path, err)
	}
	if _, err := tx.Exec("DELETE FROM SourceFile WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting source file %q: %w", path, err)
	}
	return nil
}

// withRetry retries fn while another connection holds the database lock.
func withRetry(fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(5),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
	)
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
