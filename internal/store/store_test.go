package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/ademuri/listen-history/internal/listening"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}

	return store
}

func testKey(platform listening.Platform, path string) FileKey {
	key := FileKey{
		Platform: platform,
		Path:     path,
		ModTime:  time.Date(2024, time.November, 25, 10, 0, 0, 123, time.UTC),
		Size:     4096,
	}
	if platform == listening.Deezer {
		key.Variant = "sheet=10_listeningHistory;tz=UTC"
	}
	return key
}

func testEvents() []listening.Event {
	return []listening.Event{
		{
			Timestamp:        time.Date(2021, time.March, 4, 18, 22, 1, 0, time.UTC),
			SongTitle:        "Levitating",
			Artist:           "Dua Lipa, DaBaby",
			AlbumTitle:       "Future Nostalgia",
			IPAddress:        "10.0.0.1",
			ListeningSeconds: 203,
			Platform:         listening.Deezer,
			CountryCode:      "GB",
		},
		{
			Timestamp:        time.Date(2018, time.May, 1, 0, 0, 0, 500, time.UTC),
			SongTitle:        "",
			Artist:           "Unknown",
			ListeningSeconds: 12.5,
			Platform:         listening.Deezer,
		},
	}
}

func TestNewIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	for i := 0; i < 2; i++ {
		s, err := New(dbPath)
		if err != nil {
			t.Fatalf("New(%s) #%d error: %v", dbPath, i, err)
		}
		s.Close()
	}
}

func TestEnsureSchemaUpgradesOldCache(t *testing.T) {
	key := testKey(listening.Deezer, "/exports/deezer.xlsx")

	// A cache written before files were keyed by their parse options.
	dbPath := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE SourceFile (
		  id INTEGER PRIMARY KEY AUTOINCREMENT,
		  platform TEXT NOT NULL,
		  path TEXT NOT NULL,
		  mod_time INTEGER NOT NULL,
		  size INTEGER NOT NULL,
		  parsed_at DATETIME NOT NULL,
		  UNIQUE (platform, path)
		);
		CREATE TABLE Event (
		  file INTEGER NOT NULL,
		  seq INTEGER NOT NULL,
		  date INTEGER NOT NULL,
		  song_title TEXT NOT NULL,
		  artist TEXT NOT NULL,
		  album_title TEXT NOT NULL,
		  seconds REAL NOT NULL,
		  ip_address TEXT NOT NULL DEFAULT '',
		  country_code TEXT NOT NULL DEFAULT '',
		  PRIMARY KEY (file, seq)
		);`)
	if err != nil {
		t.Fatalf("creating old schema: %v", err)
	}
	_, err = db.Exec("INSERT INTO SourceFile (platform, path, mod_time, size, parsed_at) VALUES (?, ?, ?, ?, ?)",
		key.Platform.String(), key.Path, key.ModTime.UnixNano(), key.Size, time.Now())
	if err != nil {
		t.Fatalf("inserting old entry: %v", err)
	}
	db.Close()

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}
	defer s.Close()

	exists, err := columnExists(s.db, "SourceFile", "variant")
	if err != nil {
		t.Fatalf("columnExists: %v", err)
	}
	if !exists {
		t.Fatalf("Expected column SourceFile.variant to be added")
	}

	if _, ok, err := s.GetEvents(key); err != nil || ok {
		t.Errorf("GetEvents on an entry cached without options = ok %v, err %v; want miss", ok, err)
	}

	if err := s.PutEvents(key, testEvents()); err != nil {
		t.Fatalf("PutEvents on upgraded cache: %v", err)
	}
	if _, ok, err := s.GetEvents(key); err != nil || !ok {
		t.Errorf("GetEvents after re-caching = ok %v, err %v; want hit", ok, err)
	}
}

func TestPutGetEvents(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	key := testKey(listening.Deezer, "/exports/deezer.xlsx")
	if _, ok, err := s.GetEvents(key); err != nil || ok {
		t.Fatalf("GetEvents on empty cache = ok %v, err %v; want miss", ok, err)
	}

	want := testEvents()
	if err := s.PutEvents(key, want); err != nil {
		t.Fatalf("PutEvents: %v", err)
	}

	got, ok, err := s.GetEvents(key)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if !ok {
		t.Fatalf("GetEvents: expected a cache hit")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetEvents mismatch:\n got %+v\nwant %+v", got, want)
	}

	// Same path under the other platform is a different entry.
	if _, ok, _ := s.GetEvents(testKey(listening.Spotify, key.Path)); ok {
		t.Errorf("expected a miss for a different platform")
	}
}

func TestPutEventsEmptyFileIsCached(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	key := testKey(listening.Spotify, "/exports/empty.json")
	if err := s.PutEvents(key, nil); err != nil {
		t.Fatalf("PutEvents: %v", err)
	}
	got, ok, err := s.GetEvents(key)
	if err != nil || !ok {
		t.Fatalf("GetEvents = ok %v, err %v; want hit", ok, err)
	}
	if len(got) != 0 {
		t.Errorf("expected no events, got %d", len(got))
	}
}

func TestModifiedFileMisses(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	key := testKey(listening.Deezer, "/exports/deezer.xlsx")
	if err := s.PutEvents(key, testEvents()); err != nil {
		t.Fatalf("PutEvents: %v", err)
	}

	touched := key
	touched.ModTime = key.ModTime.Add(time.Second)
	if _, ok, _ := s.GetEvents(touched); ok {
		t.Errorf("expected a miss after the modification time changed")
	}

	grown := key
	grown.Size++
	if _, ok, _ := s.GetEvents(grown); ok {
		t.Errorf("expected a miss after the size changed")
	}

	inParis := key
	inParis.Variant = "sheet=10_listeningHistory;tz=Europe/Paris"
	if _, ok, _ := s.GetEvents(inParis); ok {
		t.Errorf("expected a miss for events parsed with other options")
	}

	// Re-caching the new version replaces the old entry.
	if err := s.PutEvents(touched, testEvents()[:1]); err != nil {
		t.Fatalf("PutEvents: %v", err)
	}
	if _, ok, _ := s.GetEvents(key); ok {
		t.Errorf("old entry should have been replaced")
	}
	files, err := s.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].Events != 1 {
		t.Errorf("Expected one cached file with 1 event, got %+v", files)
	}
}

func TestListFilesAndClear(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	if err := s.PutEvents(testKey(listening.Spotify, "/b.json"), testEvents()); err != nil {
		t.Fatalf("PutEvents: %v", err)
	}
	if err := s.PutEvents(testKey(listening.Deezer, "/a.xlsx"), testEvents()[:1]); err != nil {
		t.Fatalf("PutEvents: %v", err)
	}

	files, err := s.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(files))
	}
	if files[0].Key.Platform != listening.Deezer || files[0].Key.Path != "/a.xlsx" || files[0].Events != 1 {
		t.Errorf("unexpected first file %+v", files[0])
	}
	if files[1].Key.Platform != listening.Spotify || files[1].Events != 2 {
		t.Errorf("unexpected second file %+v", files[1])
	}
	if files[0].Key.Variant != testKey(listening.Deezer, "").Variant || files[1].Key.Variant != "" {
		t.Errorf("variants not preserved: %q, %q", files[0].Key.Variant, files[1].Key.Variant)
	}
	if !files[0].Key.ModTime.Equal(testKey(listening.Deezer, "").ModTime) {
		t.Errorf("mod time not preserved: %v", files[0].Key.ModTime)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	files, err = s.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles after Clear: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected empty cache after Clear, got %+v", files)
	}
}

func TestIsBusy(t *testing.T) {
	if !isBusy(sqlite3.Error{Code: sqlite3.ErrBusy}) {
		t.Errorf("SQLITE_BUSY should be retried")
	}
	if !isBusy(errors.Join(errors.New("committing"), sqlite3.Error{Code: sqlite3.ErrLocked})) {
		t.Errorf("wrapped SQLITE_LOCKED should be retried")
	}
	if isBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}) {
		t.Errorf("constraint violations should not be retried")
	}
	if isBusy(errors.New("other")) {
		t.Errorf("unrelated errors should not be retried")
	}
}

func TestWithRetryStopsOnOtherErrors(t *testing.T) {
	calls := 0
	err := withRetry(func() error {
		calls++
		return errors.New("boom")
	})
	if err == nil || calls != 1 {
		t.Errorf("withRetry = %v after %d calls; want error after 1 call", err, calls)
	}

	calls = 0
	err = withRetry(func() error {
		calls++
		if calls < 3 {
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("withRetry = %v after %d calls; want success after 3 calls", err, calls)
	}
}
