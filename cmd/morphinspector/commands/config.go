// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	"github.com/morphinspector/morphinspector/pkg/appctx"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Inspect the effective configuration",
		GroupID: "core",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the configuration after merging defaults, file, environment and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formatter := format.FromCommand(cmd)
			manager, ok := appctx.Config(cmd.Context())
			if !ok {
				return fail(formatter, "config show", errNoConfig)
			}
			cfg := manager.Get()
			return formatter.PrintResult(cfg, func() error {
				out, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("encode configuration: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	})

	return cmd
}
