// Package load turns export file paths into a reconciled listening table,
// parsing each distinct file only once.
package load

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ademuri/listen-history/internal/listening"
	"github.com/ademuri/listen-history/internal/source"
	"github.com/ademuri/listen-history/internal/store"
)

// DefaultCacheSize is the number of parsed files kept in memory.
const DefaultCacheSize = 16

// FileKey is the identity a parsed file is cached under. A file whose
// modification time or size changes, or that is read with different parse
// options, gets a new key and is parsed again.
type FileKey = store.FileKey

// Options configures a Loader.
type Options struct {
	Deezer source.DeezerOptions
	// Store, when set, persists parsed files across runs.
	Store     *store.Store
	CacheSize int
	Logger    *slog.Logger
}

// Stats counts where the loader's files came from.
type Stats struct {
	MemoryHits int
	StoreHits  int
	Parses     int
}

// Loader parses export files through a two-level cache: an in-memory LRU
// and, optionally, a SQLite store. A Loader is not safe for concurrent use.
type Loader struct {
	deezer source.DeezerOptions
	store  *store.Store
	cache  *lru.Cache[FileKey, []listening.Event]
	logger *slog.Logger
	stats  Stats
}

func New(opts Options) (*Loader, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Deezer.Logger == nil {
		opts.Deezer.Logger = opts.Logger
	}

	cache, err := lru.New[FileKey, []listening.Event](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating parse cache: %w", err)
	}

	return &Loader{
		deezer: opts.Deezer,
		store:  opts.Store,
		cache:  cache,
		logger: opts.Logger,
	}, nil
}

// Key resolves the cache identity of path as read by platform's parser.
func Key(platform listening.Platform, path string) (FileKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileKey{}, &listening.SourceError{Platform: platform, Path: path, Kind: listening.ErrSourceRead, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileKey{}, &listening.SourceError{Platform: platform, Path: path, Kind: listening.ErrSourceRead, Err: err}
	}
	if info.IsDir() {
		return FileKey{}, &listening.SourceError{Platform: platform, Path: path, Kind: listening.ErrSourceRead, Err: errors.New("is a directory")}
	}
	return FileKey{
		Platform: platform,
		Path:     abs,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}, nil
}

// Deezer returns the events of a Deezer export.
func (l *Loader) Deezer(path string) ([]listening.Event, error) {
	return l.events(listening.Deezer, path, l.deezer.Variant(), func(p string) ([]listening.Event, error) {
		return source.ParseDeezer(p, l.deezer)
	})
}

// Spotify returns the events of a Spotify streaming-history export.
func (l *Loader) Spotify(path string) ([]listening.Event, error) {
	return l.events(listening.Spotify, path, "", source.ParseSpotify)
}

func (l *Loader) events(platform listening.Platform, path, variant string, parse func(string) ([]listening.Event, error)) ([]listening.Event, error) {
	key, err := Key(platform, path)
	if err != nil {
		return nil, err
	}
	key.Variant = variant

	if events, ok := l.cache.Get(key); ok {
		l.stats.MemoryHits++
		l.logger.Debug("parse cache hit", "layer", "memory", "file", key.Path)
		return slices.Clone(events), nil
	}

	if l.store != nil {
		events, ok, err := l.store.GetEvents(key)
		if err != nil {
			l.logger.Warn("reading parse cache", "file", key.Path, "err", err)
		} else if ok {
			l.stats.StoreHits++
			l.logger.Debug("parse cache hit", "layer", "store", "file", key.Path, "events", len(events))
			l.cache.Add(key, events)
			return slices.Clone(events), nil
		}
	}

	events, err := parse(key.Path)
	if err != nil {
		return nil, err
	}
	l.stats.Parses++
	l.logger.Info("parsed export", "platform", platform, "file", key.Path, "events", len(events))

	l.cache.Add(key, events)
	if l.store != nil {
		if err := l.store.PutEvents(key, events); err != nil {
			l.logger.Warn("writing parse cache", "file", key.Path, "err", err)
		}
	}
	return slices.Clone(events), nil
}

// Result reports the outcome of each configured source of a Load.
type Result struct {
	Loaded []listening.Platform
	Errors map[listening.Platform]error
}

// OK reports whether at least one source loaded.
func (r Result) OK() bool {
	return len(r.Loaded) > 0
}

// Err joins the per-source errors in platform order.
func (r Result) Err() error {
	var errs []error
	for _, p := range listening.Platforms() {
		if err, ok := r.Errors[p]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load reads both exports and reconciles whichever of them could be parsed.
// An empty path leaves that source out. A failing source doesn't prevent the
// other from loading; its error is reported in the Result instead.
func (l *Loader) Load(deezerPath, spotifyPath string) (*listening.Table, Result) {
	res := Result{Errors: map[listening.Platform]error{}}
	var batches []listening.Batch

	sources := []struct {
		platform listening.Platform
		path     string
		load     func(string) ([]listening.Event, error)
	}{
		{listening.Deezer, deezerPath, l.Deezer},
		{listening.Spotify, spotifyPath, l.Spotify},
	}
	for _, s := range sources {
		if s.path == "" {
			continue
		}
		events, err := s.load(s.path)
		if err != nil {
			l.logger.Error("loading export", "platform", s.platform, "file", s.path, "err", err)
			res.Errors[s.platform] = err
			continue
		}
		res.Loaded = append(res.Loaded, s.platform)
		batches = append(batches, listening.Batch{Platform: s.platform, Events: events})
	}

	table := listening.Reconcile(batches...)
	if res.OK() && table.Len() == 0 {
		l.logger.Warn("no listening events after reconciliation")
	}
	return table, res
}

// Stats returns the cache counters accumulated so far.
func (l *Loader) Stats() Stats {
	return l.stats
}

// Clear empties the in-memory cache and, when configured, the persistent one.
func (l *Loader) Clear() error {
	l.cache.Purge()
	if l.store == nil {
		return nil
	}
	if err := l.store.Clear(); err != nil {
		return fmt.Errorf("clearing parse cache: %w", err)
	}
	return nil
}
