// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package dump

import (
	"errors"
	"fmt"
)

// Common errors returned while reading comparison dumps.
var (
	// ErrMissingComparison is returned when a morph has no candidate for one of its identities.
	ErrMissingComparison = errors.New("missing comparison")

	// ErrMalformedRecord is returned when a dump file breaks the naming convention or lacks columns.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNoInput is returned when a dump directory holds no files at all.
	ErrNoInput = errors.New("no comparison dumps found")
)

// Codes of skipped dump files. They are stored with the skip so that batches
// read back from the cache keep them.
const (
	CodeMissingComparison = "MISSING_COMPARISON"
	CodeMalformedRecord   = "MALFORMED_RECORD"
)

// MissingComparisonError wraps ErrMissingComparison with the probe and identity involved.
type MissingComparisonError struct {
	Probe    string
	Identity string
}

// Error implements the error interface.
func (e *MissingComparisonError) Error() string {
	return fmt.Sprintf("no comparison for identity %q in %s", e.Identity, e.Probe)
}

// Unwrap returns the underlying error.
func (e *MissingComparisonError) Unwrap() error {
	return ErrMissingComparison
}

// Is checks if the error matches ErrMissingComparison.
func (e *MissingComparisonError) Is(target error) bool {
	return target == ErrMissingComparison
}

// MalformedRecordError wraps ErrMalformedRecord with details.
type MalformedRecordError struct {
	File   string
	Reason string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("malformed dump %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("malformed dump: %s", e.Reason)
}

// Unwrap returns the underlying error.
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Is checks if the error matches ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewMissingComparisonError creates a MissingComparisonError.
func NewMissingComparisonError(probe, identity string) error {
	return &MissingComparisonError{Probe: probe, Identity: identity}
}

// NewMalformedRecordError creates a MalformedRecordError.
func NewMalformedRecordError(file, reason string) error {
	return &MalformedRecordError{File: file, Reason: reason}
}

// IsMissingComparison checks if an error is or wraps ErrMissingComparison.
func IsMissingComparison(err error) bool {
	return errors.Is(err, ErrMissingComparison)
}

// IsMalformedRecord checks if an error is or wraps ErrMalformedRecord.
func IsMalformedRecord(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}

// IsSkippable reports whether err only invalidates a single dump file.
// Skippable errors are recorded and the batch continues.
func IsSkippable(err error) bool {
	return IsMissingComparison(err) || IsMalformedRecord(err)
}

// SkipCode classifies a per-file error. Other errors have no code.
func SkipCode(err error) string {
	switch {
	case IsMissingComparison(err):
		return CodeMissingComparison
	case IsMalformedRecord(err):
		return CodeMalformedRecord
	default:
		return ""
	}
}
