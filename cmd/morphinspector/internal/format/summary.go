// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/morphinspector/morphinspector/pkg/analysis"
	"github.com/morphinspector/morphinspector/pkg/dump"
	"github.com/morphinspector/morphinspector/pkg/stringutil"
)

// Summary represents the inputs an operation used and the ones it skipped
type Summary struct {
	Operation   string        // Operation name: "curve det", "details", "mmpmr", etc.
	Processed   int           // Dump files that contributed
	Skipped     int           // Dump files left out
	Errors      []ErrorDetail // Skip reasons, one per file
	TotalErrors int           // Total skip count (for truncation message)
}

// ErrorDetail represents a single skipped file with context
type ErrorDetail struct {
	File      string `json:"file"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}

const (
	maxErrorsToShow = 5   // Maximum errors to display before truncating
	maxReasonLength = 160 // Longer skip reasons are cut in table output
)

var (
	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")) // Yellow

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")) // Gray
)

// SummaryFromSkips builds a Summary from the skips of a run.
func SummaryFromSkips(operation string, processed int, skips []dump.Skip) Summary {
	s := Summary{
		Operation:   operation,
		Processed:   processed,
		Skipped:     len(skips),
		TotalErrors: len(skips),
	}
	for _, sk := range skips {
		code := sk.Code
		if code == "" {
			code = analysis.ErrorCode(sk.Err)
		}
		s.Errors = append(s.Errors, ErrorDetail{
			File:      sk.File,
			Error:     sk.Reason,
			ErrorCode: code,
		})
	}
	return s
}

// PrintPartialFailureSummary prints skip counts, skipped files, and suggestions.
// Nothing is printed when no file was skipped. In JSON mode the result
// document already carries the skips and nothing is printed either.
//
// Example output:
//
//	Summary:
//	  ✓ Processed: 41
//	  ⚠ Skipped: 2
//
//	Skipped files:
//	  - 03_0-07_0.png.csv: missing comparison: 03_0-07_0.png.csv has no candidate of identity 07
//
//	💡 Suggestions:
//	  → Keep NaN rows out instead:  --nan-policy omit
func (f *formatter) PrintPartialFailureSummary(summary Summary) error {
	if f.quiet || summary.Skipped == 0 || f.mode == ModeJSON {
		return nil
	}

	var sb strings.Builder

	sb.WriteString("\nSummary:\n")
	processed := fmt.Sprintf("  ✓ Processed: %d\n", summary.Processed)
	skipped := fmt.Sprintf("  ⚠ Skipped: %d\n", summary.Skipped)
	if f.color {
		sb.WriteString(color.GreenString("%s", processed))
		sb.WriteString(skipStyle.Render(strings.TrimSuffix(skipped, "\n")) + "\n")
	} else {
		sb.WriteString(processed)
		sb.WriteString(skipped)
	}

	if len(summary.Errors) > 0 {
		sb.WriteString("\nSkipped files:\n")
		for i, e := range summary.Errors {
			if i >= maxErrorsToShow {
				remaining := summary.TotalErrors - maxErrorsToShow
				line := fmt.Sprintf("  ... and %d more (use --output json for full list)", remaining)
				if f.color {
					line = dimStyle.Render(line)
				}
				sb.WriteString(line + "\n")
				break
			}
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", e.File, stringutil.Ellipsis(e.Error, maxReasonLength)))
		}

		suggestions := collectSuggestions(summary.Errors)
		if len(suggestions) > 0 {
			sb.WriteString("\n💡 Suggestions:\n")
			for _, s := range suggestions {
				sb.WriteString(fmt.Sprintf("  → %s\n", s))
			}
		}
	}

	_, err := f.stdout.Write([]byte(sb.String()))
	return err
}

// PrintTotalFailureSummary prints total failure with error and suggestions
// Example output:
//
//	✗ Failed to curve det: load morph dumps: no comparison dumps found in ./morphs
//
//	💡 Suggestions:
//	  → Check the dump directory:   ls <morphs-dir>
func (f *formatter) PrintTotalFailureSummary(operation string, err error, errorCode string) error {
	if f.quiet {
		return nil
	}

	if f.mode == ModeJSON {
		return f.PrintJSON(map[string]any{
			"success":    false,
			"operation":  operation,
			"error":      err.Error(),
			"error_code": errorCode,
		})
	}

	var sb strings.Builder

	errorMsg := fmt.Sprintf("✗ Failed to %s: %v", operation, err)
	if f.color {
		sb.WriteString(color.RedString("%s\n", errorMsg))
	} else {
		sb.WriteString(fmt.Sprintf("%s\n", errorMsg))
	}

	suggestions := GetSuggestions(errorCode)
	if len(suggestions) > 0 {
		sb.WriteString("\n💡 Suggestions:\n")
		for _, s := range suggestions {
			sb.WriteString(fmt.Sprintf("  → %s\n", s))
		}
	}

	_, writeErr := f.stderr.Write([]byte(sb.String()))
	return writeErr
}

// GetSuggestions returns actionable hints based on error code
func GetSuggestions(errorCode string) []string {
	return analysis.SuggestionsFor(errorCode)
}

// collectSuggestions gathers unique suggestions from multiple errors
func collectSuggestions(errors []ErrorDetail) []string {
	seen := make(map[string]bool)
	var suggestions []string

	for _, err := range errors {
		for _, hint := range GetSuggestions(err.ErrorCode) {
			if !seen[hint] {
				seen[hint] = true
				suggestions = append(suggestions, hint)
			}
		}
	}

	return suggestions
}
