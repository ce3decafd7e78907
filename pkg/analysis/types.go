// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package analysis

import (
	"time"

	"github.com/morphinspector/morphinspector/pkg/biometric"
	"github.com/morphinspector/morphinspector/pkg/curve"
	"github.com/morphinspector/morphinspector/pkg/details"
	"github.com/morphinspector/morphinspector/pkg/dump"
	"github.com/morphinspector/morphinspector/pkg/mmpmr"
	"github.com/morphinspector/morphinspector/pkg/ranking"
)

// ProgressSink receives step notifications of an analysis run.
type ProgressSink interface {
	OnEvent(ProgressEvent)
}

// ProgressEvent describes one step of a run.
type ProgressEvent struct {
	RunID     string
	Operation string
	Phase     string
	Status    string
	Message   string
	Timestamp time.Time
}

// CurveParams selects the inputs of a DET or ROC curve.
type CurveParams struct {
	Protocol biometric.Protocol
	MorphDir string
	StillDir string
	// Output is the curve JSON path. Empty skips writing.
	Output    string
	Overwrite bool
}

// CurveResult is a synthesized curve with its bookkeeping.
type CurveResult struct {
	RunID          string             `json:"run_id"`
	Protocol       biometric.Protocol `json:"protocol"`
	XAxis          string             `json:"x_axis"`
	YAxis          string             `json:"y_axis"`
	Curve          curve.Curve        `json:"curve"`
	Thresholds     int                `json:"thresholds"`
	Omitted        int                `json:"omitted"`
	MorphFiles     int                `json:"morph_files"`
	StillFiles     int                `json:"still_files"`
	MorphProbes    int                `json:"morph_probes"`
	StillProbes    int                `json:"still_probes"`
	AttackTrials   int                `json:"attack_trials"`
	BonaFideTrials int                `json:"bona_fide_trials"`
	AUC            float64            `json:"auc"`
	Statistics     []curve.Statistic  `json:"statistics,omitempty"`
	Skipped        []dump.Skip        `json:"skipped,omitempty"`
	Output         string             `json:"output,omitempty"`
}

// StatsParams names curve files to summarize.
type StatsParams struct {
	Paths    []string
	Protocol biometric.Protocol
	// Targets override the configured DET targets.
	Targets []float64
}

// CurveStats summarizes one curve file.
type CurveStats struct {
	Path       string            `json:"path"`
	Points     int               `json:"points"`
	AUC        float64           `json:"auc"`
	Statistics []curve.Statistic `json:"statistics"`
}

// StatsResult holds the summaries of every requested curve.
type StatsResult struct {
	RunID  string       `json:"run_id"`
	Curves []CurveStats `json:"curves"`
}

// DetailsParams selects the morph dumps to describe.
type DetailsParams struct {
	MorphDir string
	// Output is the details JSON path. Empty skips writing.
	Output string
	// CSVOutput is the details CSV path. Empty skips writing.
	CSVOutput string
}

// DetailsResult holds the per-morph details.
type DetailsResult struct {
	RunID     string      `json:"run_id"`
	Files     int         `json:"files"`
	Details   details.Set `json:"details"`
	Skipped   []dump.Skip `json:"skipped,omitempty"`
	Output    string      `json:"output,omitempty"`
	CSVOutput string      `json:"csv_output,omitempty"`
}

// RankParams selects the details to rank and what to do with the ranking.
type RankParams struct {
	// DetailsPath is a details JSON file. Ignored when Details is set.
	DetailsPath string
	Details     details.Set
	// Export is the ranking JSON path. Empty skips writing.
	Export string
	// CopyFrom and CopyDest enable copying the ranked artifacts into per-rank folders.
	CopyFrom string
	CopyDest string
}

// RankResult is a ranking and, when requested, the copy report.
type RankResult struct {
	RunID     string              `json:"run_id"`
	Threshold float64             `json:"threshold"`
	Ranking   ranking.Ranking     `json:"ranking"`
	Export    string              `json:"export,omitempty"`
	Copy      *ranking.CopyReport `json:"copy,omitempty"`
}

// MMPMRParams selects the morph dumps to score.
type MMPMRParams struct {
	MorphDir string
}

// MMPMRResult holds one rate per configured tau.
type MMPMRResult struct {
	RunID   string         `json:"run_id"`
	Total   int            `json:"total"`
	Samples int            `json:"samples"`
	Results []mmpmr.Result `json:"results"`
	Skipped []dump.Skip    `json:"skipped,omitempty"`
}
