// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	"github.com/morphinspector/morphinspector/pkg/appctx"
	"github.com/morphinspector/morphinspector/pkg/cache"
	"github.com/morphinspector/morphinspector/pkg/logging"
)

var errNoCacheDir = errors.New("no cache directory: pass --cache-dir or enable the workspace")

// NewCacheCommand creates the cache command group.
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Short:   "Inspect or clear the parsed dump cache",
		GroupID: "core",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached dump directories",
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear [dump-dir]",
		Short: "Remove cached entries, all of them or those of one dump directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheClear,
	})

	return cmd
}

// openCache returns the store of this run, opening it even when --no-cache
// disabled it for analysis.
func openCache(cmd *cobra.Command) (*cache.Store, error) {
	ctx := cmd.Context()
	if store, ok := appctx.Cache(ctx); ok {
		return store, nil
	}
	manager, ok := appctx.Config(ctx)
	if !ok {
		return nil, errNoConfig
	}
	dir := cacheDir(ctx, manager.Get())
	if dir == "" {
		return nil, errNoCacheDir
	}
	return cache.NewStore(dir, logging.NewLogger("cache", zerolog.GlobalLevel()))
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	formatter := format.FromCommand(cmd)

	store, err := openCache(cmd)
	if err != nil {
		return fail(formatter, "cache list", err)
	}
	entries, err := store.Entries()
	if err != nil {
		return fail(formatter, "cache list", err)
	}

	return formatter.PrintResult(entries, func() error {
		if len(entries) == 0 {
			return formatter.PrintSummary("Cache is empty")
		}
		return format.CacheTable(entries).PrintWith(formatter)
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)

	store, err := openCache(cmd)
	if err != nil {
		return fail(formatter, "cache clear", err)
	}

	var removed int
	if len(args) == 1 {
		dir, absErr := filepath.Abs(args[0])
		if absErr != nil {
			return fail(formatter, "cache clear", absErr)
		}
		removed, err = store.Invalidate(dir)
	} else {
		removed, err = store.Clear()
	}
	if err != nil {
		return fail(formatter, "cache clear", err)
	}

	return formatter.PrintResult(map[string]int{"removed": removed}, func() error {
		return formatter.PrintSummary(fmt.Sprintf("✓ Removed %s", countLabel(removed, "cache entry")))
	})
}
