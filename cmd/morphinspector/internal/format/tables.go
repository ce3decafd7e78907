// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"time"

	"github.com/morphinspector/morphinspector/pkg/analysis"
	"github.com/morphinspector/morphinspector/pkg/biometric"
	"github.com/morphinspector/morphinspector/pkg/cache"
	"github.com/morphinspector/morphinspector/pkg/ranking"
	"github.com/morphinspector/morphinspector/pkg/stringutil"
)

// MaxRankMembers caps the members listed per rank.
const MaxRankMembers = 10

// Table is a header row and its data rows, ready for PrintTable.
type Table struct {
	Headers []string
	Rows    [][]string
}

// PrintWith renders t through f.
func (t Table) PrintWith(f Formatter) error {
	return f.PrintTable(t.Headers, t.Rows)
}

// CurveTable lists the AUC of a curve and, for DET, APCER at each target BPCER.
func CurveTable(res *analysis.CurveResult) Table {
	t := Table{
		Headers: []string{"Statistic", "Value"},
		Rows:    [][]string{{"AUC", Float(res.AUC)}},
	}
	if res.Protocol != biometric.ProtocolDET {
		return t
	}
	for _, s := range res.Statistics {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("APCER @ %s=%s", res.YAxis, Float(s.Target)),
			Float(s.Value),
		})
	}
	return t
}

// StatsTable has one row per curve file and one column per target. Columns
// follow the targets of the first curve; every curve is read at the same ones.
func StatsTable(res *analysis.StatsResult, protocol biometric.Protocol) Table {
	xAxis, yAxis := protocol.Axes()
	t := Table{Headers: []string{"Curve", "Points", "AUC"}}
	if len(res.Curves) > 0 {
		for _, s := range res.Curves[0].Statistics {
			t.Headers = append(t.Headers, fmt.Sprintf("%s @ %s=%s", xAxis, yAxis, Float(s.Target)))
		}
	}
	t.Rows = make([][]string, 0, len(res.Curves))
	for _, c := range res.Curves {
		row := []string{c.Path, fmt.Sprint(c.Points), Float(c.AUC)}
		for _, s := range c.Statistics {
			row = append(row, Float(s.Value))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// DetailsTable lists the per-morph details sorted by morph name.
func DetailsTable(res *analysis.DetailsResult) Table {
	names := res.Details.Names()
	t := Table{
		Headers: []string{"Morph", "MorphScore", "Distance A", "Distance B", "1-Wasserstein"},
		Rows:    make([][]string, 0, len(names)),
	}
	for _, name := range names {
		d := res.Details[name]
		t.Rows = append(t.Rows, []string{
			name,
			Float(d.MorphScore),
			Float(d.DistanceA),
			Float(d.DistanceB),
			Float(d.Wasserstein),
		})
	}
	return t
}

// RankTable has a row per rank with its size and up to MaxRankMembers members.
func RankTable(res *analysis.RankResult) Table {
	t := Table{
		Headers: []string{"Rank", "Morphs", "Members"},
		Rows:    make([][]string, 0, len(ranking.Ranks)),
	}
	for _, r := range ranking.Ranks {
		tier := res.Ranking.Tier(r)
		t.Rows = append(t.Rows, []string{r.Label(), fmt.Sprint(len(tier)), stringutil.JoinLimited(tier, ", ", MaxRankMembers)})
	}
	return t
}

// MMPMRTable has a row per tau.
func MMPMRTable(res *analysis.MMPMRResult) Table {
	t := Table{
		Headers: []string{"Tau", "MMPMR"},
		Rows:    make([][]string, 0, len(res.Results)),
	}
	for _, r := range res.Results {
		t.Rows = append(t.Rows, []string{Float(r.Tau), Float(r.Rate)})
	}
	return t
}

// CacheTable lists cache entries with their creation time in local time.
func CacheTable(entries []cache.Header) Table {
	t := Table{
		Headers: []string{"Source", "Kind", "Created", "Format"},
		Rows:    make([][]string, 0, len(entries)),
	}
	for _, h := range entries {
		t.Rows = append(t.Rows, []string{h.Source, h.Kind, h.CreatedAt.Local().Format(time.DateTime), h.FormatVersion})
	}
	return t
}
