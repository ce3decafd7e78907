// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/bind"
	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	"github.com/morphinspector/morphinspector/pkg/analysis"
)

// NewMMPMRCommand creates a command computing the mated morph presentation match rate.
func NewMMPMRCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mmpmr <morphs-dir>",
		Short:   "Compute MMPMR at each tau",
		GroupID: "analysis",
		Args:    cobra.ExactArgs(1),
		RunE:    runMMPMR,
	}

	cmd.Flags().Float64Slice("tau", nil, "Thresholds (default 0.3, 0.4, 0.5, 0.6, 0.7, 0.8)")

	return cmd
}

func runMMPMR(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)

	opts, err := bind.BindMMPMROptions(cmd, args)
	if err != nil {
		return fail(formatter, "mmpmr", err)
	}
	svc, err := newService(cmd)
	if err != nil {
		return fail(formatter, "mmpmr", err)
	}

	res, err := svc.MMPMR(cmd.Context(), analysis.MMPMRParams{MorphDir: opts.MorphDir})
	if err != nil {
		return fail(formatter, "mmpmr", err)
	}

	err = formatter.PrintResult(res, func() error {
		if err := format.MMPMRTable(res).PrintWith(formatter); err != nil {
			return err
		}
		return formatter.PrintSummary(fmt.Sprintf("%s scored, %s in total",
			countLabel(res.Samples, "morph"), countLabel(res.Total, "morph file")))
	})
	if err != nil {
		return err
	}
	return formatter.PrintPartialFailureSummary(format.SummaryFromSkips("mmpmr", res.Total, res.Skipped))
}
