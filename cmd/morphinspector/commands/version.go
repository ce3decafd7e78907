// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	v "github.com/morphinspector/morphinspector/pkg/version"
)

// NewVersionCommand prints build information of cliExecutable.
func NewVersionCommand(cliExecutable string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := v.Get()
			out := cmd.OutOrStdout()
			if short {
				_, err := fmt.Fprintln(out, info.Version)
				return err
			}

			formatter := format.FromCommand(cmd)
			if formatter.IsJSON() {
				return formatter.PrintJSON(info)
			}

			fmt.Fprintf(out, "%s version: %s\n", cliExecutable, info.Version)
			fmt.Fprintf(out, "Commit: %s\n", info.Commit)
			fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
			fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			if !v.IsRelease() {
				fmt.Fprintln(out, "Release: no (development or prerelease build)")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}
