// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package mmpmr estimates the Mated Morph Presentation Match Rate of a morph set.
package mmpmr

import (
	"errors"
	"fmt"
	"math"

	"github.com/morphinspector/morphinspector/pkg/dump"
)

// ErrNoMorphs is returned when the morph total is not positive.
var ErrNoMorphs = errors.New("morph total must be positive")

// Sample holds the first-listed distance of a morph to each of its identities.
type Sample struct {
	Morph  string  `json:"morph"`
	FirstA float64 `json:"first_a"`
	FirstB float64 `json:"first_b"`
}

// Max returns the larger of the two first-listed distances.
func (s Sample) Max() float64 { return math.Max(s.FirstA, s.FirstB) }

// Result is the MMPMR at one threshold.
type Result struct {
	Tau  float64 `json:"tau"`
	Rate float64 `json:"rate"`
}

// SamplesFrom takes the first-listed candidate distance per identity of each
// morph. Morphs without a candidate for either identity are returned as skips.
func SamplesFrom(morphs []*dump.MorphComparison) ([]Sample, []dump.Skip) {
	samples := make([]Sample, 0, len(morphs))
	var skipped []dump.Skip
	for _, mc := range morphs {
		a, b, err := mc.First()
		if err != nil {
			skipped = append(skipped, dump.NewSkip(mc.Probe, err))
			continue
		}
		samples = append(samples, Sample{Morph: mc.Probe, FirstA: a, FirstB: b})
	}
	return samples, skipped
}

// Compute returns one result per tau, in tau order. For each tau the maximum
// first-listed distances greater than tau are summed and divided by total.
//
// total is the number of morph files, skipped ones included, so skips lower
// the rate rather than being excluded from it.
func Compute(samples []Sample, taus []float64, total int) ([]Result, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrNoMorphs, total)
	}
	out := make([]Result, len(taus))
	for i, tau := range taus {
		var sum float64
		for _, s := range samples {
			if m := s.Max(); m > tau {
				sum += m
			}
		}
		out[i] = Result{Tau: tau, Rate: sum / float64(total)}
	}
	return out, nil
}
