// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"github.com/spf13/cobra"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/bind"
	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	"github.com/morphinspector/morphinspector/pkg/analysis"
	"github.com/morphinspector/morphinspector/pkg/biometric"
)

// NewStatsCommand creates a command reporting area and operating points of curve files.
func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stats <curve.json>...",
		Short:   "Report AUC and operating points of saved curves",
		GroupID: "analysis",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runStats,
	}

	cmd.Flags().String("kind", string(biometric.ProtocolDET), "Curve kind (det, roc)")
	cmd.Flags().Float64Slice("target", nil, "Y values to read the curve at (default 1, 0.1, 0.05, 0.01)")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)

	opts, err := bind.BindStatsOptions(cmd, args)
	if err != nil {
		return fail(formatter, "stats", err)
	}
	svc, err := newService(cmd)
	if err != nil {
		return fail(formatter, "stats", err)
	}

	res, err := svc.Stats(cmd.Context(), analysis.StatsParams{Paths: opts.Paths, Protocol: opts.Protocol})
	if err != nil {
		return fail(formatter, "stats", err)
	}

	return formatter.PrintResult(res, func() error {
		return format.StatsTable(res, opts.Protocol).PrintWith(formatter)
	})
}
