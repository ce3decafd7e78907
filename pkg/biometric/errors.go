// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package biometric

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateRate is returned when a rate's denominator is zero.
	ErrDegenerateRate = errors.New("degenerate rate")

	// ErrProtocolMismatch is returned when merging results of different protocols.
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrThresholdMismatch is returned when merging sweeps over different thresholds.
	ErrThresholdMismatch = errors.New("threshold mismatch")
)

// DegenerateRateError wraps ErrDegenerateRate with the rate and threshold involved.
type DegenerateRateError struct {
	Rate      string
	Threshold float64
}

// Error implements the error interface.
func (e *DegenerateRateError) Error() string {
	return fmt.Sprintf("%s undefined at threshold %g: empty class", e.Rate, e.Threshold)
}

// Unwrap returns the underlying error.
func (e *DegenerateRateError) Unwrap() error {
	return ErrDegenerateRate
}

// Is checks if the error matches ErrDegenerateRate.
func (e *DegenerateRateError) Is(target error) bool {
	return target == ErrDegenerateRate
}

// IsDegenerateRate checks if an error is or wraps ErrDegenerateRate.
func IsDegenerateRate(err error) bool {
	return errors.Is(err, ErrDegenerateRate)
}
