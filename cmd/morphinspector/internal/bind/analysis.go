// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package bind

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/morphinspector/morphinspector/pkg/biometric"
	"github.com/morphinspector/morphinspector/pkg/dump"
)

// ErrMissingDestination is returned when --copy-from is used without --dest.
var ErrMissingDestination = errors.New("--copy-from requires --dest")

// CurveOptions contains validated options for the curve det|roc commands
type CurveOptions struct {
	Protocol biometric.Protocol
	MorphDir string
	StillDir string
	Out      string
	Force    bool
	Watch    bool
}

// BindCurveOptions extracts and validates curve flags and arguments from the command
func BindCurveOptions(cmd *cobra.Command, protocol biometric.Protocol, args []string) (CurveOptions, error) {
	if len(args) != 2 {
		return CurveOptions{}, fmt.Errorf("expected <morphs-dir> <stills-dir>, got %d arguments", len(args))
	}
	if err := requireDir(args[0]); err != nil {
		return CurveOptions{}, err
	}
	if err := requireDir(args[1]); err != nil {
		return CurveOptions{}, err
	}

	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")
	watch, _ := cmd.Flags().GetBool("watch")

	return CurveOptions{
		Protocol: protocol,
		MorphDir: args[0],
		StillDir: args[1],
		Out:      out,
		Force:    force,
		Watch:    watch,
	}, nil
}

// StatsOptions contains validated options for the stats command
type StatsOptions struct {
	Paths    []string
	Protocol biometric.Protocol
}

// BindStatsOptions extracts and validates stats flags from the command
func BindStatsOptions(cmd *cobra.Command, args []string) (StatsOptions, error) {
	if len(args) == 0 {
		return StatsOptions{}, fmt.Errorf("at least one curve file is required")
	}
	kind, _ := cmd.Flags().GetString("kind")
	protocol, err := biometric.ParseProtocol(kind)
	if err != nil {
		return StatsOptions{}, err
	}
	return StatsOptions{Paths: args, Protocol: protocol}, nil
}

// DetailsOptions contains validated options for the details command
type DetailsOptions struct {
	MorphDir string
	Out      string
	CSV      string
}

// BindDetailsOptions extracts and validates details flags from the command
func BindDetailsOptions(cmd *cobra.Command, args []string) (DetailsOptions, error) {
	if len(args) != 1 {
		return DetailsOptions{}, fmt.Errorf("expected <morphs-dir>, got %d arguments", len(args))
	}
	if err := requireDir(args[0]); err != nil {
		return DetailsOptions{}, err
	}
	out, _ := cmd.Flags().GetString("out")
	csv, _ := cmd.Flags().GetString("csv")
	return DetailsOptions{MorphDir: args[0], Out: out, CSV: csv}, nil
}

// RankOptions contains validated options for the rank command
type RankOptions struct {
	DetailsPath string
	Export      string
	CopyFrom    string
	Dest        string
}

// BindRankOptions extracts and validates rank flags from the command
func BindRankOptions(cmd *cobra.Command, args []string) (RankOptions, error) {
	if len(args) != 1 {
		return RankOptions{}, fmt.Errorf("expected <details.json>, got %d arguments", len(args))
	}
	export, _ := cmd.Flags().GetString("export")
	copyFrom, _ := cmd.Flags().GetString("copy-from")
	dest, _ := cmd.Flags().GetString("dest")

	if copyFrom != "" {
		if dest == "" {
			return RankOptions{}, ErrMissingDestination
		}
		if err := requireDir(copyFrom); err != nil {
			return RankOptions{}, err
		}
	}

	return RankOptions{
		DetailsPath: args[0],
		Export:      export,
		CopyFrom:    copyFrom,
		Dest:        dest,
	}, nil
}

// MMPMROptions contains validated options for the mmpmr command
type MMPMROptions struct {
	MorphDir string
}

// BindMMPMROptions extracts and validates mmpmr arguments from the command
func BindMMPMROptions(_ *cobra.Command, args []string) (MMPMROptions, error) {
	if len(args) != 1 {
		return MMPMROptions{}, fmt.Errorf("expected <morphs-dir>, got %d arguments", len(args))
	}
	if err := requireDir(args[0]); err != nil {
		return MMPMROptions{}, err
	}
	return MMPMROptions{MorphDir: args[0]}, nil
}

// requireDir fails with dump.ErrNoInput unless path is an existing directory.
func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", dump.ErrNoInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", dump.ErrNoInput, path)
	}
	return nil
}
