// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	"github.com/morphinspector/morphinspector/pkg/analysis"
	"github.com/morphinspector/morphinspector/pkg/appctx"
	"github.com/morphinspector/morphinspector/pkg/config"
	"github.com/morphinspector/morphinspector/pkg/logging"
	"github.com/morphinspector/morphinspector/pkg/progress"
	"github.com/morphinspector/morphinspector/pkg/workspace"
)

// errNoConfig is returned when a command runs without the root pre-run.
var errNoConfig = errors.New("configuration not loaded")

// reportedError marks an error the formatter already printed.
type reportedError struct {
	error
}

func (e *reportedError) Unwrap() error { return e.error }

// IsReported reports whether err was already printed to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// fail prints err with its suggestions and returns it marked as reported.
func fail(f format.Formatter, operation string, err error) error {
	_ = f.PrintTotalFailureSummary(operation, err, analysis.ErrorCode(err))
	return &reportedError{err}
}

// newService builds an analysis service from the configuration and cache of
// the command context. With -v or -vv, run progress is shown on stderr.
func newService(cmd *cobra.Command) (*analysis.Service, error) {
	ctx := cmd.Context()
	manager, ok := appctx.Config(ctx)
	if !ok {
		return nil, errNoConfig
	}
	store, _ := appctx.Cache(ctx)
	svc := analysis.NewService(manager.Get().Analysis, store, logging.NewLogger("analysis", zerolog.GlobalLevel()))

	verbosity, _ := cmd.Flags().GetCount("verbosity")
	if verbosity > 0 {
		level := progress.LevelVerbose
		if verbosity > 1 {
			level = progress.LevelDebug
		}
		noColor, _ := cmd.Flags().GetBool("no-color")
		stream := progress.NewStream()
		stream.Subscribe(progress.NewDiagnosticSubscriber(level, cmd.ErrOrStderr(), !noColor && !color.NoColor))
		svc = svc.WithProgressSink(stream)
	}
	return svc, nil
}

// cacheDir returns the configured cache directory, falling back to the
// workspace cache. Empty when neither is available.
func cacheDir(ctx context.Context, cfg config.Config) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	if root, ok := workspace.FromContext(ctx); ok {
		return filepath.Join(root, workspace.CacheDir)
	}
	return ""
}

// defaultOutput places name under a workspace subdirectory. Empty when the
// workspace is disabled.
func defaultOutput(ctx context.Context, sub, name string) string {
	root, ok := workspace.FromContext(ctx)
	if !ok {
		return ""
	}
	return workspace.Path(root, sub, name)
}

// baseName names outputs after the input they were computed from.
func baseName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	base := filepath.Base(abs)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func countLabel(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

func commandPath(cmd *cobra.Command) string {
	return strings.TrimPrefix(cmd.CommandPath(), cliExecutable+" ")
}
