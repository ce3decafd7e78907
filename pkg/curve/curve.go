// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package curve turns threshold sweeps into rate curves and derives summary
// statistics from them.
package curve

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/morphinspector/morphinspector/pkg/biometric"
)

var (
	// ErrEmptyCurve is returned when a statistic is requested from a curve without points.
	ErrEmptyCurve = errors.New("curve has no points")

	// ErrMalformedCurve is returned when curve JSON is not two equal-length arrays.
	ErrMalformedCurve = errors.New("malformed curve")
)

// DegeneratePolicy decides what happens to a threshold whose rate is undefined.
type DegeneratePolicy string

const (
	// DegenerateError aborts curve synthesis with the DegenerateRateError.
	DegenerateError DegeneratePolicy = "error"
	// DegenerateOmit drops the point and keeps going.
	DegenerateOmit DegeneratePolicy = "omit"
)

// ParseDegeneratePolicy converts a name to a DegeneratePolicy. Empty means error.
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch p := DegeneratePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", DegenerateError:
		return DegenerateError, nil
	case DegenerateOmit:
		return p, nil
	default:
		return "", fmt.Errorf("unknown degenerate policy %q (must be 'error' or 'omit')", s)
	}
}

// Point is one (x, y) rate pair.
type Point struct {
	X float64
	Y float64
}

// Curve is an ordered sequence of points, in ascending threshold order when
// built from a sweep.
//
// On disk a curve is the pair of coordinate arrays [[x...], [y...]].
type Curve []Point

// MarshalJSON encodes the curve as [[x...], [y...]].
func (c Curve) MarshalJSON() ([]byte, error) {
	xs, ys := c.XY()
	return json.Marshal([2][]float64{xs, ys})
}

// UnmarshalJSON decodes [[x...], [y...]].
func (c *Curve) UnmarshalJSON(data []byte) error {
	var raw [][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCurve, err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("%w: expected 2 coordinate arrays, got %d", ErrMalformedCurve, len(raw))
	}
	if len(raw[0]) != len(raw[1]) {
		return fmt.Errorf("%w: %d x values vs %d y values", ErrMalformedCurve, len(raw[0]), len(raw[1]))
	}
	out := make(Curve, len(raw[0]))
	for i := range out {
		out[i] = Point{X: raw[0][i], Y: raw[1][i]}
	}
	*c = out
	return nil
}

// XY splits the curve into its coordinate arrays. Both are non-nil.
func (c Curve) XY() (xs, ys []float64) {
	xs = make([]float64, len(c))
	ys = make([]float64, len(c))
	for i, p := range c {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

// FromSweep converts a sweep to a curve: (APCER, BPCER) for DET and (FPR, TPR)
// for ROC. With DegenerateOmit, undefined points are dropped and counted in
// omitted.
func FromSweep(s *biometric.Sweep, policy DegeneratePolicy) (c Curve, omitted int, err error) {
	c = make(Curve, 0, s.Len())
	for i, t := range s.Thresholds {
		x, y, err := s.Protocol.Rates(s.Counts[i], t)
		if err != nil {
			if policy == DegenerateOmit && biometric.IsDegenerateRate(err) {
				omitted++
				continue
			}
			return nil, omitted, err
		}
		c = append(c, Point{X: x, Y: y})
	}
	return c, omitted, nil
}

// NearestStatistic returns the x whose y is closest to targetY. Ties go to the
// earliest point.
func NearestStatistic(c Curve, targetY float64) (float64, error) {
	if len(c) == 0 {
		return 0, ErrEmptyCurve
	}
	if math.IsNaN(targetY) {
		return 0, fmt.Errorf("target must be a number")
	}
	best := 0
	bestDiff := math.Abs(c[0].Y - targetY)
	for i := 1; i < len(c); i++ {
		if d := math.Abs(c[i].Y - targetY); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return c[best].X, nil
}

// AreaUnderCurve integrates the curve with the trapezoid rule after a stable
// sort by x. A single point has zero area.
func AreaUnderCurve(c Curve) (float64, error) {
	if len(c) == 0 {
		return 0, ErrEmptyCurve
	}
	pts := append(Curve(nil), c...)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })

	var area float64
	for i := 1; i < len(pts); i++ {
		area += (pts[i].X - pts[i-1].X) * (pts[i].Y + pts[i-1].Y) / 2
	}
	return area, nil
}

// DefaultDETTargets are the BPCER operating points reported for a DET curve.
var DefaultDETTargets = []float64{1.0, 0.1, 0.05, 0.01}

// Statistic is the x value read off a curve at a target y.
type Statistic struct {
	Target float64 `json:"target"`
	Value  float64 `json:"value"`
}

// Statistics reads NearestStatistic at each target, in target order.
func Statistics(c Curve, targets []float64) ([]Statistic, error) {
	out := make([]Statistic, 0, len(targets))
	for _, t := range targets {
		v, err := NearestStatistic(c, t)
		if err != nil {
			return nil, err
		}
		out = append(out, Statistic{Target: t, Value: v})
	}
	return out, nil
}

// DETStatistics reports APCER at each BPCER target, DefaultDETTargets when
// targets is empty.
func DETStatistics(c Curve, targets []float64) ([]Statistic, error) {
	if len(targets) == 0 {
		targets = DefaultDETTargets
	}
	return Statistics(c, targets)
}
