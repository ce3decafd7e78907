// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Skip records a dump file left out of a batch and why.
type Skip struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
	Code   string `json:"code,omitempty"`
	Err    error  `json:"-"`
}

// NewSkip records file as skipped because of err.
func NewSkip(file string, err error) Skip {
	return Skip{File: file, Reason: err.Error(), Code: SkipCode(err), Err: err}
}

// MorphBatch is the result of loading a directory of morph dumps.
type MorphBatch struct {
	Dir         string             `json:"dir"`
	Files       int                `json:"files"`
	Comparisons []*MorphComparison `json:"comparisons"`
	Skipped     []Skip             `json:"skipped,omitempty"`
}

// StillBatch is the result of loading a directory of still dumps.
type StillBatch struct {
	Dir         string             `json:"dir"`
	Files       int                `json:"files"`
	Comparisons []*StillComparison `json:"comparisons"`
	Skipped     []Skip             `json:"skipped,omitempty"`
}

// ListDir returns the dump files of dir in name order. Subdirectories and
// hidden files are not dumps.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dump directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, dir)
	}
	return files, nil
}

// LoadMorphs parses every morph dump in dir. Files that fail to parse are
// skipped and logged; only an empty directory fails the batch.
func LoadMorphs(ctx context.Context, dir string, opts Options) (*MorphBatch, error) {
	files, err := ListDir(dir)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	batch := &MorphBatch{Dir: dir, Files: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mc, err := ParseMorph(path, opts)
		if err != nil {
			batch.Skipped = append(batch.Skipped, newSkip(path, err))
			logger.Warn().Err(err).Str("file", filepath.Base(path)).Msg("skipping morph dump")
			continue
		}
		batch.Comparisons = append(batch.Comparisons, mc)
	}

	logger.Debug().
		Str("dir", dir).
		Int("files", batch.Files).
		Int("parsed", len(batch.Comparisons)).
		Int("skipped", len(batch.Skipped)).
		Msg("morph dumps loaded")
	return batch, nil
}

// LoadStills parses every still dump in dir. Files that fail to parse are
// skipped and logged; only an empty directory fails the batch.
func LoadStills(ctx context.Context, dir string, opts Options) (*StillBatch, error) {
	files, err := ListDir(dir)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	batch := &StillBatch{Dir: dir, Files: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sc, err := ParseStill(path, opts)
		if err != nil {
			batch.Skipped = append(batch.Skipped, newSkip(path, err))
			logger.Warn().Err(err).Str("file", filepath.Base(path)).Msg("skipping still dump")
			continue
		}
		batch.Comparisons = append(batch.Comparisons, sc)
	}

	logger.Debug().
		Str("dir", dir).
		Int("files", batch.Files).
		Int("parsed", len(batch.Comparisons)).
		Int("skipped", len(batch.Skipped)).
		Msg("still dumps loaded")
	return batch, nil
}

func newSkip(path string, err error) Skip {
	return NewSkip(filepath.Base(path), err)
}
