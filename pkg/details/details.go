// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package details derives per-morph quality metrics from morph dumps.
package details

import (
	"errors"
	"fmt"
	"sort"

	"github.com/morphinspector/morphinspector/pkg/dump"
)

// ErrZeroDistance is returned when both mean distances are zero and the
// morph score is undefined.
var ErrZeroDistance = errors.New("mean distances sum to zero")

// Details are the metrics of one morph.
type Details struct {
	MorphScore  float64 `json:"morphscore"`
	AvgDist     float64 `json:"avgdist"`
	DistanceA   float64 `json:"distanceA"`
	DistanceB   float64 `json:"distanceB"`
	Wasserstein float64 `json:"1-wasserstein"`
}

// Set maps a morph dump file name to its details.
type Set map[string]Details

// Names returns the keys of s in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute derives the details of one morph.
//
//	MorphScore = 2 / (meanA + meanB)
//	AvgDist    = (meanA + meanB) / 2
func Compute(mc *dump.MorphComparison) (Details, error) {
	meanA, meanB, err := mc.Means()
	if err != nil {
		return Details{}, err
	}
	sum := meanA + meanB
	if sum == 0 {
		return Details{}, fmt.Errorf("%s: %w", mc.Probe, ErrZeroDistance)
	}

	w, err := Wasserstein(mc.ValuesA(), mc.ValuesB())
	if err != nil {
		return Details{}, fmt.Errorf("%s: %w", mc.Probe, err)
	}

	return Details{
		MorphScore:  2 / sum,
		AvgDist:     sum / 2,
		DistanceA:   meanA,
		DistanceB:   meanB,
		Wasserstein: w,
	}, nil
}

// Build computes details for every comparison of batch. Morphs whose details
// are undefined are returned as skips next to the batch's own skips.
func Build(batch *dump.MorphBatch) (Set, []dump.Skip) {
	set := make(Set, len(batch.Comparisons))
	skipped := append([]dump.Skip(nil), batch.Skipped...)
	for _, mc := range batch.Comparisons {
		d, err := Compute(mc)
		if err != nil {
			skipped = append(skipped, dump.NewSkip(mc.Probe, err))
			continue
		}
		set[mc.Probe] = d
	}
	return set, skipped
}

// Wasserstein returns the 1-Wasserstein distance between the empirical
// distributions of u and v, the area between their CDFs.
func Wasserstein(u, v []float64) (float64, error) {
	if len(u) == 0 || len(v) == 0 {
		return 0, errors.New("wasserstein distance needs two non-empty samples")
	}
	us := append([]float64(nil), u...)
	vs := append([]float64(nil), v...)
	sort.Float64s(us)
	sort.Float64s(vs)

	all := make([]float64, 0, len(us)+len(vs))
	all = append(all, us...)
	all = append(all, vs...)
	sort.Float64s(all)

	var dist float64
	for i := 0; i < len(all)-1; i++ {
		delta := all[i+1] - all[i]
		if delta == 0 {
			continue
		}
		cu := float64(countAtMost(us, all[i])) / float64(len(us))
		cv := float64(countAtMost(vs, all[i])) / float64(len(vs))
		diff := cu - cv
		if diff < 0 {
			diff = -diff
		}
		dist += diff * delta
	}
	return dist, nil
}

func countAtMost(sorted []float64, x float64) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
}
