// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/bind"
	"github.com/morphinspector/morphinspector/cmd/morphinspector/internal/format"
	"github.com/morphinspector/morphinspector/pkg/analysis"
	"github.com/morphinspector/morphinspector/pkg/appctx"
	"github.com/morphinspector/morphinspector/pkg/biometric"
	"github.com/morphinspector/morphinspector/pkg/watch"
	"github.com/morphinspector/morphinspector/pkg/workspace"
)

// NewCurveCommand creates the curve command group.
func NewCurveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "curve",
		Short:   "Compute DET or ROC curves from morph and still dumps",
		GroupID: "analysis",
	}

	cmd.AddCommand(newProtocolCommand(biometric.ProtocolDET,
		"Compute the APCER/BPCER detection error tradeoff curve"))
	cmd.AddCommand(newProtocolCommand(biometric.ProtocolROC,
		"Compute the FPR/TPR receiver operating characteristic curve"))

	return cmd
}

func newProtocolCommand(protocol biometric.Protocol, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(protocol) + " <morphs-dir> <stills-dir>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurve(cmd, protocol, args)
		},
	}

	cmd.Flags().Float64("gamma-step", 0.001, "Threshold step")
	cmd.Flags().Float64("gamma-max", 2, "Largest threshold")
	cmd.Flags().String("out", "", "Curve JSON file (default <workspace>/curves/<morphs>_"+string(protocol)+".json)")
	cmd.Flags().Bool("force", false, "Overwrite an existing curve file")
	cmd.Flags().Bool("watch", false, "Recompute whenever a dump directory changes")
	cmd.Flags().Bool("omit-degenerate", false, "Drop thresholds where a rate is undefined instead of failing")

	return cmd
}

func runCurve(cmd *cobra.Command, protocol biometric.Protocol, args []string) error {
	formatter := format.FromCommand(cmd)
	operation := commandPath(cmd)

	opts, err := bind.BindCurveOptions(cmd, protocol, args)
	if err != nil {
		return fail(formatter, operation, err)
	}
	ctx := cmd.Context()
	svc, err := newService(cmd)
	if err != nil {
		return fail(formatter, operation, err)
	}

	params := analysis.CurveParams{
		Protocol:  opts.Protocol,
		MorphDir:  opts.MorphDir,
		StillDir:  opts.StillDir,
		Output:    opts.Out,
		Overwrite: opts.Force,
	}
	if params.Output == "" {
		params.Output = defaultOutput(ctx, workspace.CurvesDir, fmt.Sprintf("%s_%s.json", baseName(opts.MorphDir), protocol))
	}

	res, err := svc.Curve(ctx, params)
	if err != nil && !opts.Watch {
		return fail(formatter, operation, err)
	}
	if err != nil {
		_ = formatter.PrintTotalFailureSummary(operation, err, analysis.ErrorCode(err))
	} else if err := printCurve(formatter, operation, res); err != nil {
		return err
	}

	if !opts.Watch {
		return nil
	}

	// Later runs replace the file the first run wrote.
	params.Overwrite = true
	return watchCurve(ctx, formatter, operation, svc, params)
}

func watchCurve(ctx context.Context, formatter format.Formatter, operation string, svc *analysis.Service, params analysis.CurveParams) error {
	logger := *zerolog.Ctx(ctx)
	rerun := func(ctx context.Context, dirs []string) error {
		if store, ok := appctx.Cache(ctx); ok {
			for _, dir := range dirs {
				if _, err := store.Invalidate(dir); err != nil {
					logger.Warn().Err(err).Str("dir", dir).Msg("cache invalidation failed")
				}
			}
		}
		res, err := svc.Curve(ctx, params)
		if err != nil {
			_ = formatter.PrintTotalFailureSummary(operation, err, analysis.ErrorCode(err))
			return err
		}
		return printCurve(formatter, operation, res)
	}

	w, err := watch.NewDirWatcher([]string{params.MorphDir, params.StillDir}, rerun, logger)
	if err != nil {
		return fail(formatter, operation, err)
	}
	_ = formatter.PrintSummary("Watching for dump changes, press Ctrl+C to stop")
	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		return fail(formatter, operation, err)
	}
	return nil
}

func printCurve(f format.Formatter, operation string, res *analysis.CurveResult) error {
	err := f.PrintResult(res, func() error {
		msg := fmt.Sprintf("✓ %s curve: %s from %s and %s",
			strings.ToUpper(string(res.Protocol)),
			countLabel(len(res.Curve), "point"),
			countLabel(res.AttackTrials, "attack trial"),
			countLabel(res.BonaFideTrials, "bona fide trial"))
		if res.Omitted > 0 {
			msg += fmt.Sprintf(", %d undefined omitted", res.Omitted)
		}
		if err := f.PrintSummary(msg); err != nil {
			return err
		}

		if err := format.CurveTable(res).PrintWith(f); err != nil {
			return err
		}
		if res.Output != "" {
			return f.PrintSummary("Curve written to " + res.Output)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return f.PrintPartialFailureSummary(format.SummaryFromSkips(operation, res.MorphProbes+res.StillProbes, res.Skipped))
}
