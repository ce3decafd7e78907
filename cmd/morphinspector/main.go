// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/commands"
	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	"github.com/morphinspector/morphinspector/pkg/analysis"
)

// main runs the morphinspector CLI until it finishes or receives an interrupt.
//
// Exit codes:
//   - 0: Success
//   - 1: Analysis failed (default)
//   - 2: Invalid usage/input (NO_INPUT, INVALID_CONFIG)
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := commands.NewCommand()

	err := command.ExecuteContext(ctx)
	if err != nil {
		if !commands.IsReported(err) {
			f := format.New(os.Stdout, os.Stderr, format.ModeTable, false, !color.NoColor)
			_ = f.PrintError(err)
		}
		stop()
		os.Exit(analysis.ExitCode(err))
	}
}
