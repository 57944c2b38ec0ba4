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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-history/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspects or clears the parse cache",
	Long:  `The parse cache, enabled with --cache, keeps parsed exports so unchanged files aren't read again.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if viper.GetString("cache") == "" {
			return fmt.Errorf("required flag(s) \"cache\" not set")
		}
		return nil
	},
}

// listCacheCmd represents the cache list command
var listCacheCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the cached exports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		return listCache(cmd.OutOrStdout(), s)
	},
}

// clearCacheCmd represents the cache clear command
var clearCacheCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drops every cached export",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		loader, err := newLoader(s)
		if err != nil {
			return err
		}
		if err := loader.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared cache %q\n", viper.GetString("cache"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(listCacheCmd)
	cacheCmd.AddCommand(clearCacheCmd)
}

func listCache(out io.Writer, s *store.Store) error {
	files, err := s.ListFiles()
	if err != nil {
		return fmt.Errorf("list cache: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tPATH\tEVENTS\tSIZE\tMODIFIED\tPARSED\tOPTIONS")
	for _, f := range files {
		options := f.Key.Variant
		if options == "" {
			options = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			f.Key.Platform, f.Key.Path, f.Events, f.Key.Size,
			f.Key.ModTime.Format("2006-01-02 15:04:05"), f.ParsedAt.Format("2006-01-02 15:04:05"), options)
	}
	return w.Flush()
}
