// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package biometric

import (
	"fmt"
	"math"
	"sort"

	"github.com/morphinspector/morphinspector/pkg/dump"
)

// Accumulator collects trial distances for one protocol.
//
// Trials are kept as raw distances; counts for a threshold are the number of
// distances strictly below it, found by binary search over the sorted trials.
// A looser threshold therefore accepts a superset of a stricter one.
type Accumulator struct {
	protocol    Protocol
	morph       []float64
	still       []float64
	morphProbes int
	stillProbes int
	sorted      bool
}

// NewAccumulator creates an empty accumulator for protocol.
func NewAccumulator(protocol Protocol) *Accumulator {
	return &Accumulator{protocol: protocol, sorted: true}
}

// Protocol returns the protocol the accumulator counts for.
func (a *Accumulator) Protocol() Protocol { return a.protocol }

// MorphProbes returns the number of morph comparison sets added.
func (a *Accumulator) MorphProbes() int { return a.morphProbes }

// StillProbes returns the number of still comparison sets added.
func (a *Accumulator) StillProbes() int { return a.stillProbes }

// MorphTrials returns the number of morph trials collected.
func (a *Accumulator) MorphTrials() int { return len(a.morph) }

// StillTrials returns the number of still trials collected.
func (a *Accumulator) StillTrials() int { return len(a.still) }

// AddMorph adds the trials of one morph.
//
// DET contributes exactly two trials, the mean distance to each identity.
// ROC contributes every individual candidate distance of both identities.
func (a *Accumulator) AddMorph(mc *dump.MorphComparison) error {
	switch a.protocol {
	case ProtocolDET:
		meanA, meanB, err := mc.Means()
		if err != nil {
			return err
		}
		if math.IsNaN(meanA) {
			return dump.NewMissingComparisonError(mc.Probe, mc.IdentityA)
		}
		if math.IsNaN(meanB) {
			return dump.NewMissingComparisonError(mc.Probe, mc.IdentityB)
		}
		a.morph = append(a.morph, meanA, meanB)
	case ProtocolROC:
		if len(mc.ToA) == 0 {
			return dump.NewMissingComparisonError(mc.Probe, mc.IdentityA)
		}
		if len(mc.ToB) == 0 {
			return dump.NewMissingComparisonError(mc.Probe, mc.IdentityB)
		}
		for _, r := range mc.ToA {
			a.addMorphDistance(r.Distance)
		}
		for _, r := range mc.ToB {
			a.addMorphDistance(r.Distance)
		}
	default:
		return fmt.Errorf("unknown protocol %q", a.protocol)
	}
	a.morphProbes++
	a.sorted = false
	return nil
}

func (a *Accumulator) addMorphDistance(d float64) {
	if math.IsNaN(d) {
		return
	}
	a.morph = append(a.morph, d)
}

// AddStill adds the informative distances of one still. Self comparisons
// (distance exactly zero) are excluded.
func (a *Accumulator) AddStill(sc *dump.StillComparison) {
	for _, d := range sc.Informative() {
		if math.IsNaN(d) {
			continue
		}
		a.still = append(a.still, d)
	}
	a.stillProbes++
	a.sorted = false
}

// Merge folds the trials of other into a. Merging is commutative and
// associative, so per-shard accumulators can be combined in any order.
func (a *Accumulator) Merge(other *Accumulator) error {
	if other == nil {
		return nil
	}
	if other.protocol != a.protocol {
		return fmt.Errorf("%w: %s vs %s", ErrProtocolMismatch, a.protocol, other.protocol)
	}
	a.morph = append(a.morph, other.morph...)
	a.still = append(a.still, other.still...)
	a.morphProbes += other.morphProbes
	a.stillProbes += other.stillProbes
	a.sorted = false
	return nil
}

// Sweep counts the tuple for every threshold.
func (a *Accumulator) Sweep(thresholds []float64) *Sweep {
	if !a.sorted {
		sort.Float64s(a.morph)
		sort.Float64s(a.still)
		a.sorted = true
	}

	s := &Sweep{
		Protocol:   a.protocol,
		Thresholds: append([]float64(nil), thresholds...),
		Counts:     make([]Confusion, len(thresholds)),
	}
	for i, t := range thresholds {
		morphAccepted := acceptedBelow(a.morph, t)
		stillAccepted := acceptedBelow(a.still, t)
		s.Counts[i] = a.protocol.tally(
			morphAccepted, len(a.morph)-morphAccepted,
			stillAccepted, len(a.still)-stillAccepted,
		)
	}
	return s
}

// acceptedBelow returns how many sorted distances Classify accepts at threshold.
func acceptedBelow(sorted []float64, threshold float64) int {
	return sort.SearchFloat64s(sorted, threshold)
}
