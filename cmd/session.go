/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/listen-history/internal/listening"
	"github.com/ademuri/listen-history/internal/load"
	"github.com/ademuri/listen-history/internal/source"
	"github.com/ademuri/listen-history/internal/store"
)

// openStore opens the parse cache configured with --cache, or returns nil
// when caching is disabled.
func openStore() (*store.Store, error) {
	path := viper.GetString("cache")
	if path == "" {
		return nil, nil
	}
	s, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %q: %w", path, err)
	}
	return s, nil
}

func newLoader(s *store.Store) (*load.Loader, error) {
	loc, err := time.LoadLocation(viper.GetString("deezer-timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid --deezer-timezone: %w", err)
	}
	return load.New(load.Options{
		Deezer: source.DeezerOptions{
			Sheet:    viper.GetString("deezer-sheet"),
			Location: loc,
		},
		Store:  s,
		Logger: slog.Default(),
	})
}

// loadTable loads the configured exports. A source that fails is reported on
// errOut and left out; an error is returned only when nothing could be loaded.
func loadTable(errOut io.Writer) (*listening.Table, error) {
	deezerPath := viper.GetString("deezer")
	spotifyPath := viper.GetString("spotify")
	if deezerPath == "" && spotifyPath == "" {
		return nil, errors.New("no export given: pass --deezer and/or --spotify")
	}

	s, err := openStore()
	if err != nil {
		return nil, err
	}
	if s != nil {
		defer s.Close()
	}

	loader, err := newLoader(s)
	if err != nil {
		return nil, err
	}

	table, res := loader.Load(deezerPath, spotifyPath)
	for _, p := range listening.Platforms() {
		if err, ok := res.Errors[p]; ok {
			fmt.Fprintf(errOut, "Could not load the %s export: %v\n", p, err)
		}
	}
	if !res.OK() {
		return nil, fmt.Errorf("no export could be loaded: %w", res.Err())
	}
	return table, nil
}
