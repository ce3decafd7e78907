// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// FromCommand builds a Formatter from the writers of cmd and its --output,
// --quiet and --no-color flags. Color is also off when NO_COLOR is set or
// stdout is not a terminal.
func FromCommand(cmd *cobra.Command) Formatter {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return New(stdout, stderr,
		ParseMode(flagValue(cmd, "output")),
		cast.ToBool(flagValue(cmd, "quiet")),
		!color.NoColor && !cast.ToBool(flagValue(cmd, "no-color")),
	)
}

// flagValue returns the string form of a local or inherited flag, or "" when
// cmd has no such flag.
func flagValue(cmd *cobra.Command, name string) string {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Value.String()
	}
	return ""
}
