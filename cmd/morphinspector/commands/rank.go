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

// NewRankCommand creates a command sorting morphs into Rank A, B and C.
func NewRankCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rank <details.json>",
		Short:   "Rank morphs by how many identities accept them",
		GroupID: "analysis",
		Args:    cobra.ExactArgs(1),
		RunE:    runRank,
	}

	cmd.Flags().Float64("threshold", 0.8, "Acceptance threshold on mean identity distance")
	cmd.Flags().String("export", "", "Ranking JSON file (default <workspace>/ranks/<details>_ranks.json)")
	cmd.Flags().String("copy-from", "", "Directory of morph artifacts to copy into per-rank folders")
	cmd.Flags().String("dest", "", "Destination of the per-rank folders")

	return cmd
}

func runRank(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)

	opts, err := bind.BindRankOptions(cmd, args)
	if err != nil {
		return fail(formatter, "rank", err)
	}
	ctx := cmd.Context()
	svc, err := newService(cmd)
	if err != nil {
		return fail(formatter, "rank", err)
	}

	params := analysis.RankParams{
		DetailsPath: opts.DetailsPath,
		Export:      opts.Export,
		CopyFrom:    opts.CopyFrom,
		CopyDest:    opts.Dest,
	}
	if params.Export == "" {
		params.Export = defaultOutput(ctx, workspace.RanksDir, baseName(opts.DetailsPath)+"_ranks.json")
	}

	res, err := svc.Rank(ctx, params)
	if err != nil {
		return fail(formatter, "rank", err)
	}

	return formatter.PrintResult(res, func() error {
		if err := format.RankTable(res).PrintWith(formatter); err != nil {
			return err
		}
		if err := formatter.PrintSummary(fmt.Sprintf("✓ %s ranked at threshold %s",
			countLabel(res.Ranking.Len(), "morph"), format.Float(res.Threshold))); err != nil {
			return err
		}
		if res.Export != "" {
			if err := formatter.PrintSummary("Ranking written to " + res.Export); err != nil {
				return err
			}
		}
		if res.Copy != nil {
			msg := fmt.Sprintf("Copied %s into %s", countLabel(res.Copy.Total(), "artifact"), opts.Dest)
			if n := len(res.Copy.Missing); n > 0 {
				msg += fmt.Sprintf(", %d without artifact", n)
			}
			return formatter.PrintSummary(msg)
		}
		return nil
	})
}
