// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package ranking sorts morphs into tiers by how many of their constituent
// identities they fool.
package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/morphinspector/morphinspector/pkg/details"
	"github.com/morphinspector/morphinspector/pkg/dump"
)

// Rank is a morph quality tier.
type Rank string

const (
	// RankA morphs are accepted as both identities.
	RankA Rank = "A"
	// RankB morphs are accepted as exactly one identity.
	RankB Rank = "B"
	// RankC morphs are accepted as neither identity.
	RankC Rank = "C"
)

// Ranks lists the tiers from best to worst.
var Ranks = []Rank{RankA, RankB, RankC}

// Label returns the tier name used in exported files, e.g. "Rank A".
func (r Rank) Label() string { return "Rank " + string(r) }

// Dir returns the directory name artifacts of the tier are copied into.
func (r Rank) Dir() string {
	switch r {
	case RankA:
		return "rank_a"
	case RankB:
		return "rank_b"
	default:
		return "rank_c"
	}
}

// RankOf classifies a morph by its mean distances to identity A and B.
// Acceptance is distance strictly below threshold.
func RankOf(distanceA, distanceB, threshold float64) Rank {
	acceptedA := distanceA < threshold
	acceptedB := distanceB < threshold
	switch {
	case acceptedA && acceptedB:
		return RankA
	case acceptedA != acceptedB:
		return RankB
	default:
		return RankC
	}
}

// Ranking groups morph identifiers by tier. Each list is sorted.
type Ranking struct {
	A []string `json:"Rank A"`
	B []string `json:"Rank B"`
	C []string `json:"Rank C"`
}

// Tier returns the morphs of rank r.
func (rk Ranking) Tier(r Rank) []string {
	switch r {
	case RankA:
		return rk.A
	case RankB:
		return rk.B
	default:
		return rk.C
	}
}

// Len returns the number of ranked morphs.
func (rk Ranking) Len() int { return len(rk.A) + len(rk.B) + len(rk.C) }

// FromDetails ranks every morph of set. A morph is identified by its file name
// up to the first dot.
func FromDetails(set details.Set, threshold float64) Ranking {
	rk := Ranking{A: []string{}, B: []string{}, C: []string{}}
	for name, d := range set {
		id := dump.Stem(name)
		switch RankOf(d.DistanceA, d.DistanceB, threshold) {
		case RankA:
			rk.A = append(rk.A, id)
		case RankB:
			rk.B = append(rk.B, id)
		default:
			rk.C = append(rk.C, id)
		}
	}
	sort.Strings(rk.A)
	sort.Strings(rk.B)
	sort.Strings(rk.C)
	return rk
}

// Export writes rk as {"Rank A": [...], "Rank B": [...], "Rank C": [...]}.
func Export(path string, rk Ranking) error {
	data, err := json.Marshal(rk)
	if err != nil {
		return fmt.Errorf("encode ranking: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create ranking directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write ranking: %w", err)
	}
	return nil
}

// Import reads a ranking written by Export.
func Import(path string) (Ranking, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Ranking{}, fmt.Errorf("read ranking: %w", err)
	}
	var rk Ranking
	if err := json.Unmarshal(data, &rk); err != nil {
		return Ranking{}, fmt.Errorf("decode ranking %s: %w", path, err)
	}
	return rk, nil
}
