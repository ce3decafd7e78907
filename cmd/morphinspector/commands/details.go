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
	"github.com/morphinspector/morphinspector/pkg/workspace"
)

// NewDetailsCommand creates a command computing per-morph details.
func NewDetailsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "details <morphs-dir>",
		Short:   "Compute MorphScore, identity distances and 1-Wasserstein per morph",
		GroupID: "analysis",
		Args:    cobra.ExactArgs(1),
		RunE:    runDetails,
	}

	cmd.Flags().String("out", "", "Details JSON file (default <workspace>/details/<morphs>_details.json)")
	cmd.Flags().String("csv", "", "Also write the details as CSV to this file")

	return cmd
}

func runDetails(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)

	opts, err := bind.BindDetailsOptions(cmd, args)
	if err != nil {
		return fail(formatter, "details", err)
	}
	ctx := cmd.Context()
	svc, err := newService(cmd)
	if err != nil {
		return fail(formatter, "details", err)
	}

	params := analysis.DetailsParams{MorphDir: opts.MorphDir, Output: opts.Out, CSVOutput: opts.CSV}
	if params.Output == "" {
		params.Output = defaultOutput(ctx, workspace.DetailsDir, baseName(opts.MorphDir)+"_details.json")
	}

	res, err := svc.Details(ctx, params)
	if err != nil {
		return fail(formatter, "details", err)
	}

	err = formatter.PrintResult(res, func() error {
		if err := format.DetailsTable(res).PrintWith(formatter); err != nil {
			return err
		}
		for _, out := range []string{res.Output, res.CSVOutput} {
			if out == "" {
				continue
			}
			if err := formatter.PrintSummary(fmt.Sprintf("Details written to %s", out)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return formatter.PrintPartialFailureSummary(format.SummaryFromSkips("details", res.Files, res.Skipped))
}
