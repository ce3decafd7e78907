// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package biometric

import "fmt"

// Sweep is the confusion tuple at each threshold of a gamma sweep.
type Sweep struct {
	Protocol   Protocol    `json:"protocol"`
	Thresholds []float64   `json:"thresholds"`
	Counts     []Confusion `json:"counts"`
}

// Len returns the number of thresholds in the sweep.
func (s *Sweep) Len() int { return len(s.Thresholds) }

// Merge adds the counts of other into s. Both sweeps must share protocol and
// thresholds.
func (s *Sweep) Merge(other *Sweep) error {
	if other == nil {
		return nil
	}
	if s.Protocol != other.Protocol {
		return fmt.Errorf("%w: %s vs %s", ErrProtocolMismatch, s.Protocol, other.Protocol)
	}
	if len(s.Thresholds) != len(other.Thresholds) {
		return fmt.Errorf("%w: %d vs %d thresholds", ErrThresholdMismatch, len(s.Thresholds), len(other.Thresholds))
	}
	for i, t := range s.Thresholds {
		if other.Thresholds[i] != t {
			return fmt.Errorf("%w: index %d is %g vs %g", ErrThresholdMismatch, i, t, other.Thresholds[i])
		}
	}
	for i := range s.Counts {
		s.Counts[i] = s.Counts[i].Add(other.Counts[i])
	}
	return nil
}

// AttackTrials returns the number of attack presentations counted at each
// threshold: TP+FN under DET, FP+TN under ROC.
func (s *Sweep) AttackTrials() int {
	if len(s.Counts) == 0 {
		return 0
	}
	c := s.Counts[0]
	if s.Protocol == ProtocolROC {
		return c.FP + c.TN
	}
	return c.TP + c.FN
}

// BonaFideTrials returns the number of bona fide presentations counted at each
// threshold.
func (s *Sweep) BonaFideTrials() int {
	if len(s.Counts) == 0 {
		return 0
	}
	c := s.Counts[0]
	if s.Protocol == ProtocolROC {
		return c.TP + c.FN
	}
	return c.TN + c.FP
}
