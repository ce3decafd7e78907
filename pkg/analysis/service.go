// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package analysis runs the morph attack analyses over directories of
// comparison dumps: DET and ROC curves, curve statistics, morph details,
// rankings and MMPMR.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/morphinspector/morphinspector/pkg/biometric"
	"github.com/morphinspector/morphinspector/pkg/cache"
	"github.com/morphinspector/morphinspector/pkg/config"
	"github.com/morphinspector/morphinspector/pkg/curve"
	"github.com/morphinspector/morphinspector/pkg/details"
	"github.com/morphinspector/morphinspector/pkg/dump"
	"github.com/morphinspector/morphinspector/pkg/mmpmr"
	"github.com/morphinspector/morphinspector/pkg/ranking"
)

// Cache entry kinds.
const (
	KindMorphs = "morphs"
	KindStills = "stills"
)

// Service runs analyses with one configuration. A nil cache disables caching.
type Service struct {
	cfg          config.AnalysisConfig
	cache        *cache.Store
	logger       zerolog.Logger
	progressSink ProgressSink
	newRunID     func() string
}

// NewService builds a Service.
func NewService(cfg config.AnalysisConfig, store *cache.Store, logger zerolog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		cache:    store,
		logger:   logger.With().Str("component", "analysis").Logger(),
		newRunID: func() string { return uuid.NewString() },
	}
}

// WithProgressSink attaches a sink to receive progress notifications.
func (s *Service) WithProgressSink(sink ProgressSink) *Service {
	s.progressSink = sink
	return s
}

// WithRunIDFactory replaces run ID generation (useful for tests).
func (s *Service) WithRunIDFactory(fn func() string) *Service {
	s.newRunID = fn
	return s
}

// Config returns the analysis configuration of s.
func (s *Service) Config() config.AnalysisConfig {
	return s.cfg
}

// Cache returns the comparison cache, nil when caching is disabled.
func (s *Service) Cache() *cache.Store {
	return s.cache
}

// run carries the identity of one operation.
type run struct {
	id     string
	op     string
	logger zerolog.Logger
	svc    *Service
}

func (s *Service) begin(ctx context.Context, op string) (context.Context, *run) {
	id := s.newRunID()
	logger := s.logger.With().Str("run_id", id).Str("op", op).Logger()
	r := &run{id: id, op: op, logger: logger, svc: s}
	r.emit("start", "started", "")
	return logger.WithContext(ctx), r
}

func (r *run) emit(phase, status, msg string) {
	r.logger.Debug().Str("phase", phase).Str("status", status).Msg(msg)
	if r.svc.progressSink == nil {
		return
	}
	r.svc.progressSink.OnEvent(ProgressEvent{
		RunID:     r.id,
		Operation: r.op,
		Phase:     phase,
		Status:    status,
		Message:   msg,
		Timestamp: time.Now(),
	})
}

func (r *run) finish(err error) {
	if err != nil {
		r.emit("done", "failed", err.Error())
		return
	}
	r.emit("done", "completed", "")
}

func (s *Service) dumpOptions() (dump.Options, error) {
	policy, err := dump.ParseNaNPolicy(s.cfg.NaNPolicy)
	if err != nil {
		return dump.Options{}, WithErrorCode(err, CodeInvalidConfig)
	}
	return dump.Options{Metric: s.cfg.Metric, NaNPolicy: policy}, nil
}

func (s *Service) cacheKey(dir, kind string, opts dump.Options) cache.Key {
	return cache.Key{Dir: dir, Kind: kind, Metric: opts.Metric, NaNPolicy: string(opts.NaNPolicy)}
}

// LoadMorphs parses the morph dumps of dir, through the cache when enabled.
func (s *Service) LoadMorphs(ctx context.Context, dir string) (*dump.MorphBatch, error) {
	opts, err := s.dumpOptions()
	if err != nil {
		return nil, err
	}
	key := s.cacheKey(dir, KindMorphs, opts)

	var cached dump.MorphBatch
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	batch, err := dump.LoadMorphs(ctx, dir, opts)
	if err != nil {
		return nil, fmt.Errorf("load morph dumps: %w", err)
	}
	s.store(ctx, key, batch)
	return batch, nil
}

// LoadStills parses the still dumps of dir, through the cache when enabled.
func (s *Service) LoadStills(ctx context.Context, dir string) (*dump.StillBatch, error) {
	opts, err := s.dumpOptions()
	if err != nil {
		return nil, err
	}
	key := s.cacheKey(dir, KindStills, opts)

	var cached dump.StillBatch
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	batch, err := dump.LoadStills(ctx, dir, opts)
	if err != nil {
		return nil, fmt.Errorf("load still dumps: %w", err)
	}
	s.store(ctx, key, batch)
	return batch, nil
}

// lookup reports a cache hit. Cache failures degrade to a miss.
func (s *Service) lookup(ctx context.Context, key cache.Key, v any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, v)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", key.Dir).Str("kind", key.Kind).Msg("cache lookup failed")
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, key cache.Key, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, v); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("dir", key.Dir).Str("kind", key.Kind).Msg("cache write failed")
	}
}

// Curve builds a DET or ROC curve from a morph and a still dump directory.
func (s *Service) Curve(ctx context.Context, params CurveParams) (res *CurveResult, err error) {
	ctx, r := s.begin(ctx, "curve."+string(params.Protocol))
	defer func() { r.finish(err) }()

	protocol, err := biometric.ParseProtocol(string(params.Protocol))
	if err != nil {
		return nil, WithErrorCode(err, CodeInvalidConfig)
	}
	thresholds, err := biometric.Thresholds(s.cfg.GammaStep, s.cfg.GammaMax)
	if err != nil {
		return nil, WithErrorCode(err, CodeInvalidConfig)
	}
	policy, err := curve.ParseDegeneratePolicy(s.cfg.DegeneratePolicy)
	if err != nil {
		return nil, WithErrorCode(err, CodeInvalidConfig)
	}

	r.emit("load", "running", params.MorphDir)
	morphs, err := s.LoadMorphs(ctx, params.MorphDir)
	if err != nil {
		return nil, err
	}
	r.emit("load", "running", params.StillDir)
	stills, err := s.LoadStills(ctx, params.StillDir)
	if err != nil {
		return nil, err
	}

	acc := biometric.NewAccumulator(protocol)
	skipped := append([]dump.Skip(nil), morphs.Skipped...)
	for _, mc := range morphs.Comparisons {
		if err := acc.AddMorph(mc); err != nil {
			r.logger.Warn().Err(err).Str("file", mc.Probe).Msg("skipping morph")
			skipped = append(skipped, dump.NewSkip(mc.Probe, err))
		}
	}
	for _, sc := range stills.Comparisons {
		acc.AddStill(sc)
	}
	skipped = append(skipped, stills.Skipped...)

	r.emit("sweep", "running", fmt.Sprintf("thresholds=%d", len(thresholds)))
	sweep := acc.Sweep(thresholds)
	c, omitted, err := curve.FromSweep(sweep, policy)
	if err != nil {
		return nil, fmt.Errorf("synthesize %s curve: %w", protocol, err)
	}
	if len(c) == 0 {
		return nil, WithErrorCode(fmt.Errorf("%s curve: every point is undefined: %w", protocol, curve.ErrEmptyCurve), CodeDegenerateRate)
	}

	xAxis, yAxis := protocol.Axes()
	res = &CurveResult{
		RunID:          r.id,
		Protocol:       protocol,
		XAxis:          xAxis,
		YAxis:          yAxis,
		Curve:          c,
		Thresholds:     len(thresholds),
		Omitted:        omitted,
		MorphFiles:     morphs.Files,
		StillFiles:     stills.Files,
		MorphProbes:    acc.MorphProbes(),
		StillProbes:    acc.StillProbes(),
		AttackTrials:   sweep.AttackTrials(),
		BonaFideTrials: sweep.BonaFideTrials(),
		Skipped:        skipped,
	}
	if res.AUC, err = curve.AreaUnderCurve(c); err != nil {
		return nil, err
	}
	if protocol == biometric.ProtocolDET {
		if res.Statistics, err = curve.DETStatistics(c, s.cfg.DETTargets); err != nil {
			return nil, err
		}
	}

	if params.Output != "" {
		if err := curve.WriteFile(params.Output, c, params.Overwrite); err != nil {
			return nil, err
		}
		res.Output = params.Output
		r.emit("write", "completed", params.Output)
	}

	r.logger.Info().
		Int("points", len(c)).
		Int("omitted", omitted).
		Int("skipped", len(skipped)).
		Float64("auc", res.AUC).
		Msg("curve synthesized")
	return res, nil
}

// Stats reads curve files and reports their area and operating points.
func (s *Service) Stats(ctx context.Context, params StatsParams) (res *StatsResult, err error) {
	_, r := s.begin(ctx, "stats")
	defer func() { r.finish(err) }()

	if len(params.Paths) == 0 {
		return nil, WithErrorCode(fmt.Errorf("no curve files given"), CodeNoInput)
	}
	protocol := params.Protocol
	if protocol == "" {
		protocol = biometric.ProtocolDET
	}
	if _, err := biometric.ParseProtocol(string(protocol)); err != nil {
		return nil, WithErrorCode(err, CodeInvalidConfig)
	}
	targets := params.Targets
	if len(targets) == 0 {
		targets = s.cfg.DETTargets
	}

	res = &StatsResult{RunID: r.id, Curves: make([]CurveStats, 0, len(params.Paths))}
	for _, path := range params.Paths {
		c, err := curve.ReadFile(path)
		if err != nil {
			return nil, err
		}
		cs := CurveStats{Path: path, Points: len(c)}
		if cs.AUC, err = curve.AreaUnderCurve(c); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if protocol == biometric.ProtocolDET {
			cs.Statistics, err = curve.DETStatistics(c, targets)
		} else {
			cs.Statistics, err = curve.Statistics(c, targets)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		res.Curves = append(res.Curves, cs)
	}
	return res, nil
}

// Details computes morph details for every dump of a directory.
func (s *Service) Details(ctx context.Context, params DetailsParams) (res *DetailsResult, err error) {
	ctx, r := s.begin(ctx, "details")
	defer func() { r.finish(err) }()

	morphs, err := s.LoadMorphs(ctx, params.MorphDir)
	if err != nil {
		return nil, err
	}

	set, skipped := details.Build(morphs)
	for _, sk := range skipped[len(morphs.Skipped):] {
		r.logger.Warn().Str("file", sk.File).Str("reason", sk.Reason).Msg("skipping morph details")
	}
	res = &DetailsResult{
		RunID:   r.id,
		Files:   morphs.Files,
		Details: set,
		Skipped: skipped,
	}

	if params.Output != "" {
		if err := details.WriteFile(params.Output, set); err != nil {
			return nil, err
		}
		res.Output = params.Output
	}
	if params.CSVOutput != "" {
		if err := details.WriteCSVFile(params.CSVOutput, set); err != nil {
			return nil, err
		}
		res.CSVOutput = params.CSVOutput
	}

	r.logger.Info().Int("morphs", len(set)).Int("skipped", len(skipped)).Msg("details computed")
	return res, nil
}

// Rank sorts morphs into Rank A, B and C at the configured threshold.
func (s *Service) Rank(ctx context.Context, params RankParams) (res *RankResult, err error) {
	ctx, r := s.begin(ctx, "rank")
	defer func() { r.finish(err) }()

	set := params.Details
	if set == nil {
		if params.DetailsPath == "" {
			return nil, WithErrorCode(fmt.Errorf("no details given"), CodeNoInput)
		}
		if set, err = details.ReadFile(params.DetailsPath); err != nil {
			return nil, err
		}
	}
	if len(set) == 0 {
		return nil, WithErrorCode(fmt.Errorf("details hold no morphs"), CodeNoInput)
	}

	rk := ranking.FromDetails(set, s.cfg.RankThreshold)
	res = &RankResult{RunID: r.id, Threshold: s.cfg.RankThreshold, Ranking: rk}

	if params.Export != "" {
		if err := ranking.Export(params.Export, rk); err != nil {
			return nil, err
		}
		res.Export = params.Export
	}

	if params.CopyFrom != "" {
		if params.CopyDest == "" {
			return nil, WithErrorCode(fmt.Errorf("copying ranked artifacts needs a destination"), CodeInvalidConfig)
		}
		report, err := ranking.CopyArtifacts(ctx, params.CopyFrom, params.CopyDest, rk)
		if err != nil {
			return nil, err
		}
		res.Copy = &report
	}

	r.logger.Info().
		Int("rank_a", len(rk.A)).
		Int("rank_b", len(rk.B)).
		Int("rank_c", len(rk.C)).
		Msg("morphs ranked")
	return res, nil
}

// MMPMR computes the mated morph presentation match rate at each configured tau.
func (s *Service) MMPMR(ctx context.Context, params MMPMRParams) (res *MMPMRResult, err error) {
	ctx, r := s.begin(ctx, "mmpmr")
	defer func() { r.finish(err) }()

	morphs, err := s.LoadMorphs(ctx, params.MorphDir)
	if err != nil {
		return nil, err
	}

	samples, dropped := mmpmr.SamplesFrom(morphs.Comparisons)
	results, err := mmpmr.Compute(samples, s.cfg.MMPMRTaus, morphs.Files)
	if err != nil {
		return nil, err
	}

	res = &MMPMRResult{
		RunID:   r.id,
		Total:   morphs.Files,
		Samples: len(samples),
		Results: results,
		Skipped: append(append([]dump.Skip(nil), morphs.Skipped...), dropped...),
	}
	r.logger.Info().Int("total", res.Total).Int("samples", res.Samples).Msg("mmpmr computed")
	return res, nil
}
