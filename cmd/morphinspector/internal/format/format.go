// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/morphinspector/morphinspector/pkg/analysis"
)

// OutputMode selects how command results are rendered.
type OutputMode string

const (
	// ModeJSON writes result documents as indented JSON on stdout.
	ModeJSON OutputMode = "json"
	// ModeTable writes aligned columns and summary lines.
	ModeTable OutputMode = "table"
)

// Formatter renders command results, summaries and errors.
type Formatter interface {
	// PrintJSON writes data as indented JSON to stdout.
	PrintJSON(data any) error

	// PrintTable writes aligned columns, or one JSON object per row in JSON mode.
	PrintTable(headers []string, rows [][]string) error

	// PrintResult writes data in JSON mode and calls table otherwise.
	PrintResult(data any, table func() error) error

	// PrintSummary writes a status line unless quiet. JSON mode sends it to stderr.
	PrintSummary(message string) error

	// PrintError reports err with its error code.
	PrintError(err error) error

	// PrintPartialFailureSummary lists skipped dump files after a run that still produced a result.
	PrintPartialFailureSummary(summary Summary) error

	// PrintTotalFailureSummary reports a failed operation with suggestions for its error code.
	PrintTotalFailureSummary(operation string, err error, errorCode string) error

	// IsJSON reports whether results are rendered as JSON.
	IsJSON() bool
}

var headerStyle = lipgloss.NewStyle().Bold(true)

type formatter struct {
	stdout io.Writer
	stderr io.Writer
	mode   OutputMode
	quiet  bool
	color  bool
}

// New creates a Formatter writing results to stdout and diagnostics to stderr.
func New(stdout, stderr io.Writer, mode OutputMode, quiet, color bool) Formatter {
	return &formatter{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
		color:  color,
	}
}

func (f *formatter) IsJSON() bool { return f.mode == ModeJSON }

func (f *formatter) PrintJSON(data any) error {
	enc := json.NewEncoder(f.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *formatter) PrintResult(data any, table func() error) error {
	if f.IsJSON() {
		return f.PrintJSON(data)
	}
	return table()
}

func (f *formatter) PrintTable(headers []string, rows [][]string) error {
	if f.IsJSON() {
		return f.PrintJSON(records(headers, rows))
	}

	head := headers
	if f.color {
		head = make([]string, len(headers))
		for i, h := range headers {
			head[i] = headerStyle.Render(strings.ToUpper(h))
		}
	}

	w := tabwriter.NewWriter(f.stdout, 0, 0, 2, ' ', 0)
	for _, line := range append([][]string{head}, rows...) {
		if _, err := fmt.Fprintln(w, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// records keys each row by the table headers. Cells beyond the headers are dropped.
func records(headers []string, rows [][]string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

func (f *formatter) PrintSummary(message string) error {
	switch {
	case f.quiet:
		return nil
	case f.IsJSON():
		_, err := fmt.Fprintln(f.stderr, message)
		return err
	case f.color:
		_, err := color.New(color.FgGreen).Fprintln(f.stdout, message)
		return err
	default:
		_, err := fmt.Fprintln(f.stdout, message)
		return err
	}
}

// PrintError writes {"success": false, "error": ..., "error_code": ...} to
// stdout in JSON mode and an "Error:" line on stderr otherwise.
func (f *formatter) PrintError(err error) error {
	if err == nil {
		return nil
	}
	code := analysis.ErrorCode(err)

	if f.IsJSON() {
		doc := map[string]any{"success": false, "error": err.Error()}
		if code != "" {
			doc["error_code"] = code
		}
		return f.PrintJSON(doc)
	}

	msg := "Error: " + err.Error()
	if code != "" && code != analysis.CodeAnalysisError {
		msg += " (" + code + ")"
	}
	if f.color {
		_, werr := color.New(color.FgRed).Fprintln(f.stderr, msg)
		return werr
	}
	_, werr := fmt.Fprintln(f.stderr, msg)
	return werr
}

// ParseMode maps an --output value to a mode. Unknown values fall back to
// table; use ValidateMode to reject them.
func ParseMode(mode string) OutputMode {
	if OutputMode(strings.ToLower(mode)) == ModeJSON {
		return ModeJSON
	}
	return ModeTable
}

// ValidateMode checks an --output value.
func ValidateMode(mode string) error {
	switch OutputMode(strings.ToLower(mode)) {
	case ModeJSON, ModeTable:
		return nil
	default:
		return fmt.Errorf("invalid output mode %q (must be 'json' or 'table')", mode)
	}
}

// Float renders a statistic the way tables show them.
func Float(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
