package main

import (
	"github.com/spf13/cobra"

	"github.com/deckgen/deckgen/internal/cache"
	"github.com/deckgen/deckgen/internal/cli"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the parsed-structure cache",
}

type cacheEntryRow struct {
	Path string `json:"path" yaml:"path"`
	Hash string `json:"hash" yaml:"hash"`
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached book structures",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		mgr := cache.NewManager(h.CachePath(), newLogger())

		rows := []cacheEntryRow{}
		for _, e := range mgr.List() {
			rows = append(rows, cacheEntryRow{Path: e.Path, Hash: e.Hash})
		}
		return cli.Output(map[string]any{
			"cache_dir": h.CachePath(),
			"entries":   rows,
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached book structures",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		mgr := cache.NewManager(h.CachePath(), newLogger())

		removed, err := mgr.Clear()
		if err != nil {
			return err
		}
		return cli.Output(map[string]any{
			"cache_dir": h.CachePath(),
			"removed":   removed,
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
