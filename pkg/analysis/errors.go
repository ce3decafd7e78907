// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"errors"

	"github.com/morphinspector/morphinspector/pkg/biometric"
	"github.com/morphinspector/morphinspector/pkg/config"
	"github.com/morphinspector/morphinspector/pkg/curve"
	"github.com/morphinspector/morphinspector/pkg/dump"
	"github.com/morphinspector/morphinspector/pkg/mmpmr"
)

// Error codes reported by the CLI for analysis failures.
const (
	CodeNoInput        = "NO_INPUT"
	CodeDegenerateRate = "DEGENERATE_RATE"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeOutputExists   = "OUTPUT_EXISTS"
	CodeAnalysisError  = "ANALYSIS_ERROR"

	// Per-file codes reported for skipped dumps.
	CodeMissingComparison = dump.CodeMissingComparison
	CodeMalformedRecord   = dump.CodeMalformedRecord
)

// codedError wraps an error with an explicit error code.
type codedError struct {
	error
	code string
}

func (e *codedError) Error() string {
	return e.error.Error()
}

func (e *codedError) Unwrap() error {
	return e.error
}

func (e *codedError) Code() string {
	return e.code
}

// WithErrorCode wraps err with a specific CLI error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &codedError{error: err, code: code}
}

// ErrorCode resolves an analysis error into a CLI error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}

	switch {
	case errors.Is(err, dump.ErrNoInput), errors.Is(err, mmpmr.ErrNoMorphs):
		return CodeNoInput
	case errors.Is(err, biometric.ErrDegenerateRate):
		return CodeDegenerateRate
	case errors.Is(err, config.ErrInvalidConfig):
		return CodeInvalidConfig
	case errors.Is(err, curve.ErrExists):
		return CodeOutputExists
	case dump.IsMissingComparison(err):
		return CodeMissingComparison
	case dump.IsMalformedRecord(err):
		return CodeMalformedRecord
	}

	return CodeAnalysisError
}

// ExitCode maps analysis errors to CLI exit codes. Usage problems exit with 2.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch ErrorCode(err) {
	case CodeNoInput, CodeInvalidConfig:
		return 2
	default:
		return 1
	}
}

// Suggestions provides CLI hints for analysis errors.
func Suggestions(err error) []string {
	if err == nil {
		return nil
	}
	return SuggestionsFor(ErrorCode(err))
}

// SuggestionsFor provides CLI hints for an error code.
func SuggestionsFor(code string) []string {
	switch code {
	case CodeNoInput:
		return []string{
			"Check the dump directory:   ls <morphs-dir>",
			"Dumps are named like:       00_0-01_0.png.csv (morphs), 00_1.jpg.csv (stills)",
		}
	case CodeDegenerateRate:
		return []string{
			"Skip undefined points:      morphinspector curve det <morphs> <stills> --omit-degenerate",
			"Check both directories hold usable dumps",
		}
	case CodeInvalidConfig:
		return []string{
			"Show the effective config:  morphinspector config show",
		}
	case CodeOutputExists:
		return []string{
			"Overwrite the file:         add --force",
			"Write somewhere else:       --out <file>",
		}
	case CodeMissingComparison:
		return []string{
			"Keep NaN rows out instead:  --nan-policy omit",
			"Check the gallery holds stills of both identities",
		}
	case CodeMalformedRecord:
		return []string{
			"Pick the distance column:   --metric <model>_<distance>",
		}
	case "":
		return nil
	default:
		return []string{
			"Retry with debug logs:      morphinspector --debug <command>",
		}
	}
}
