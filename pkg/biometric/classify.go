// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package biometric sweeps a recognition threshold over comparison distances
// and accumulates the confusion counts behind DET and ROC curves.
package biometric

import (
	"fmt"
	"math"
)

// Classify reports whether a face recognition system accepts a comparison:
// distance strictly below threshold. Equality rejects, and so does NaN.
func Classify(distance, threshold float64) bool {
	return distance < threshold
}

// MaxThresholds caps the number of points in a gamma sweep.
const MaxThresholds = 10_000_000

// ThresholdCount returns the number of points Thresholds produces for step
// and max, or an error when the pair is invalid or the sweep exceeds
// MaxThresholds.
func ThresholdCount(step, max float64) (int, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return 0, fmt.Errorf("gamma step must be positive, got %v", step)
	}
	if !(max >= 0) || math.IsInf(max, 0) {
		return 0, fmt.Errorf("gamma max must be non-negative, got %v", max)
	}

	// Tolerance absorbs representation error in (max+step)/step, e.g. 2.001/0.001.
	n := math.Ceil((max+step)/step - 1e-9)
	if n > MaxThresholds {
		return 0, fmt.Errorf("gamma sweep of %.0f points exceeds the limit of %d; raise gamma step or lower gamma max", n, MaxThresholds)
	}
	return int(n), nil
}

// Thresholds returns the gamma sweep 0, step, 2*step, ... with every value
// strictly below max+step. Values are computed as i*step rather than by
// repeated addition so the sequence is reproducible.
func Thresholds(step, max float64) ([]float64, error) {
	n, err := ThresholdCount(step, max)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out, nil
}
