// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	"github.com/morphinspector/morphinspector/pkg/analysis"
	"github.com/morphinspector/morphinspector/pkg/appctx"
	"github.com/morphinspector/morphinspector/pkg/cache"
	"github.com/morphinspector/morphinspector/pkg/config"
	"github.com/morphinspector/morphinspector/pkg/logging"
	"github.com/morphinspector/morphinspector/pkg/paths"
	"github.com/morphinspector/morphinspector/pkg/workspace"
)

const cliExecutable = "morphinspector"

// NewCommand constructs the top-level morphinspector CLI command, wiring global
// flags, configuration, logging, and shared workspace preparation.
func NewCommand() *cobra.Command {
	var (
		configFile        string
		workspaceDir      string
		workspaceDisabled bool
		verbosityCount    int
		detachLog         func() error
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Morphinspector measures how well face recognition resists morphing attacks",
		Long: `Morphinspector reads the comparison dumps of a face recognition model and
computes DET and ROC curves, per-morph details, rankings and MMPMR.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			if err := format.ValidateMode(output); err != nil {
				return analysis.WithErrorCode(err, analysis.CodeInvalidConfig)
			}
			if configFile == "" {
				configFile = paths.DefaultConfigFile()
			}
			manager := config.NewManager()
			if err := manager.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := manager.Get()

			level := cfg.Log.Level
			switch {
			case verbosityCount == 1:
				level = "debug"
			case verbosityCount > 1:
				level = "trace"
			}
			if err := logging.Configure(logging.Options{
				Level:   level,
				Format:  cfg.Log.Format,
				NoColor: cfg.Log.NoColor,
			}); err != nil {
				return err
			}

			ctx := appctx.WithConfig(cmd.Context(), manager)

			if !workspaceDisabled {
				prepared, err := workspace.Prepare(workspaceDir)
				if err != nil {
					return fmt.Errorf("prepare workspace: %w", err)
				}
				ctx = workspace.WithContext(ctx, prepared)
				detachLog, err = logging.AttachFile(filepath.Join(prepared, workspace.LogsDir, cliExecutable+".log"))
				if err != nil {
					return err
				}
				log.Debug().Str("workspace", prepared).Msg("workspace ready")
			} else {
				log.Debug().Msg("workspace disabled for this run")
			}

			if cfg.Cache.Enabled {
				if dir := cacheDir(ctx, cfg); dir != "" {
					store, err := cache.NewStore(dir, logging.NewLogger("cache", zerolog.GlobalLevel()))
					if err != nil {
						return fmt.Errorf("open cache: %w", err)
					}
					ctx = appctx.WithCache(ctx, store)
				}
			}

			ctx = log.Logger.WithContext(ctx)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if detachLog == nil {
				return nil
			}
			err := detachLog()
			detachLog = nil
			return err
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default <config-dir>/morphinspector/config.yaml)")
	cmd.PersistentFlags().StringVar(&workspaceDir, "workspace-dir", "", "Override workspace root directory")
	cmd.PersistentFlags().BoolVar(&workspaceDisabled, "no-workspace", false, "Disable workspace persistence for this run")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")
	cmd.PersistentFlags().StringP("output", "o", "table", "Output format (table, json)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress summaries")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-cache", false, "Do not read or write the comparison cache")
	cmd.PersistentFlags().String("cache-dir", "", "Comparison cache directory (default <workspace>/cache)")
	cmd.PersistentFlags().String("metric", "", "Distance column of the dumps (default: first known metric column)")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "analysis", Title: "Analysis Commands"})
	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands"})

	cmd.AddCommand(NewCurveCommand())
	cmd.AddCommand(NewStatsCommand())
	cmd.AddCommand(NewDetailsCommand())
	cmd.AddCommand(NewRankCommand())
	cmd.AddCommand(NewMMPMRCommand())
	cmd.AddCommand(NewCacheCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewVersionCommand(cliExecutable))

	return cmd
}
