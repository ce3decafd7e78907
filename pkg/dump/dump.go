// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package dump reads the per-probe comparison dumps produced by the face
// recognition layer and turns them into comparison sets.
//
// A morph dump (00_0-01_0.png.csv) lists distances from the morph to every
// candidate still; only candidates of the two constituent identities are kept.
// A still dump (00_1.jpg.csv) lists distances from one still to the candidates
// of the same identity pool.
package dump

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// NaNPolicy decides what happens to NaN distances found in a dump.
type NaNPolicy string

const (
	// NaNRaise treats NaN distances as missing comparisons (morphs) or malformed dumps (stills).
	NaNRaise NaNPolicy = "raise"
	// NaNOmit drops NaN distances before averaging.
	NaNOmit NaNPolicy = "omit"
)

// ParseNaNPolicy converts a configuration value to a NaNPolicy.
func ParseNaNPolicy(s string) (NaNPolicy, error) {
	switch NaNPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", NaNRaise:
		return NaNRaise, nil
	case NaNOmit:
		return NaNOmit, nil
	default:
		return "", fmt.Errorf("invalid nan policy %q (must be 'raise' or 'omit')", s)
	}
}

// Options control how dumps are parsed.
type Options struct {
	// Metric is the distance column name. Empty selects the first known metric column.
	Metric    string
	NaNPolicy NaNPolicy
}

func (o Options) nanPolicy() NaNPolicy {
	if o.NaNPolicy == "" {
		return NaNRaise
	}
	return o.NaNPolicy
}

// MorphComparison holds the distances from one morph to the stills of its two identities.
// Records keep the dump row order.
type MorphComparison struct {
	Probe     string   `json:"probe"`
	IdentityA string   `json:"identity_a"`
	IdentityB string   `json:"identity_b"`
	ToA       []Record `json:"to_a"`
	ToB       []Record `json:"to_b"`
}

// DistancesA returns the candidate -> distance mapping for identity A.
func (m *MorphComparison) DistancesA() map[string]float64 { return toMap(m.ToA) }

// DistancesB returns the candidate -> distance mapping for identity B.
func (m *MorphComparison) DistancesB() map[string]float64 { return toMap(m.ToB) }

// ValuesA returns the distances to identity A in dump row order.
func (m *MorphComparison) ValuesA() []float64 { return values(m.ToA) }

// ValuesB returns the distances to identity B in dump row order.
func (m *MorphComparison) ValuesB() []float64 { return values(m.ToB) }

// Means returns the mean distance to identity A and to identity B.
func (m *MorphComparison) Means() (float64, float64, error) {
	a, err := meanOf(m.ToA)
	if err != nil {
		return 0, 0, NewMissingComparisonError(m.Probe, m.IdentityA)
	}
	b, err := meanOf(m.ToB)
	if err != nil {
		return 0, 0, NewMissingComparisonError(m.Probe, m.IdentityB)
	}
	return a, b, nil
}

// First returns the first-listed distance to identity A and to identity B.
func (m *MorphComparison) First() (float64, float64, error) {
	if len(m.ToA) == 0 {
		return 0, 0, NewMissingComparisonError(m.Probe, m.IdentityA)
	}
	if len(m.ToB) == 0 {
		return 0, 0, NewMissingComparisonError(m.Probe, m.IdentityB)
	}
	return m.ToA[0].Distance, m.ToB[0].Distance, nil
}

// StillComparison holds the distances from one still to its candidates.
type StillComparison struct {
	Probe    string   `json:"probe"`
	Identity string   `json:"identity"`
	Records  []Record `json:"records"`
}

// Distances returns the candidate -> distance mapping.
func (s *StillComparison) Distances() map[string]float64 { return toMap(s.Records) }

// Informative returns the distances that carry signal. Exact zeros are the
// still compared against itself and are excluded.
func (s *StillComparison) Informative() []float64 {
	out := make([]float64, 0, len(s.Records))
	for _, r := range s.Records {
		if r.Distance == 0 {
			continue
		}
		out = append(out, r.Distance)
	}
	return out
}

// ParseMorph reads a morph dump and partitions its candidates by identity.
func ParseMorph(path string, opts Options) (*MorphComparison, error) {
	name, err := ParseMorphName(path)
	if err != nil {
		return nil, err
	}

	table, err := readTableFile(path, opts.Metric)
	if err != nil {
		return nil, err
	}

	return PartitionMorph(name, table.Records, opts.nanPolicy())
}

// PartitionMorph splits records between the two identities encoded in name.
// Candidates of any other identity are discarded.
func PartitionMorph(name MorphName, records []Record, policy NaNPolicy) (*MorphComparison, error) {
	mc := &MorphComparison{
		Probe:     name.File,
		IdentityA: name.IdentityA,
		IdentityB: name.IdentityB,
	}

	for _, r := range records {
		var identity string
		switch IdentityToken(r.Candidate) {
		case name.IdentityA:
			identity = name.IdentityA
		case name.IdentityB:
			identity = name.IdentityB
		default:
			continue
		}

		if math.IsNaN(r.Distance) {
			if policy == NaNOmit {
				continue
			}
			return nil, NewMissingComparisonError(name.File, identity)
		}

		if identity == name.IdentityA {
			mc.ToA = append(mc.ToA, r)
		} else {
			mc.ToB = append(mc.ToB, r)
		}
	}

	if len(mc.ToA) == 0 {
		return nil, NewMissingComparisonError(name.File, name.IdentityA)
	}
	if len(mc.ToB) == 0 {
		return nil, NewMissingComparisonError(name.File, name.IdentityB)
	}
	return mc, nil
}

// ParseStill reads a still dump.
func ParseStill(path string, opts Options) (*StillComparison, error) {
	identity, err := ParseStillName(path)
	if err != nil {
		return nil, err
	}

	table, err := readTableFile(path, opts.Metric)
	if err != nil {
		return nil, err
	}

	sc := &StillComparison{Probe: filepath.Base(path), Identity: identity}
	for _, r := range table.Records {
		if math.IsNaN(r.Distance) {
			if opts.nanPolicy() == NaNOmit {
				continue
			}
			return nil, NewMalformedRecordError(sc.Probe, fmt.Sprintf("NaN distance for candidate %s", r.Candidate))
		}
		sc.Records = append(sc.Records, r)
	}
	return sc, nil
}

func readTableFile(path, metric string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadTable(f, filepath.Base(path), metric)
}

func toMap(records []Record) map[string]float64 {
	out := make(map[string]float64, len(records))
	for _, r := range records {
		out[r.Candidate] = r.Distance
	}
	return out
}

func values(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Distance
	}
	return out
}

func meanOf(records []Record) (float64, error) {
	if len(records) == 0 {
		return 0, ErrMissingComparison
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Distance
	}
	return sum / float64(len(records)), nil
}
