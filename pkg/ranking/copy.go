// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package ranking

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/morphinspector/morphinspector/pkg/dump"
)

// CopyReport summarizes a CopyArtifacts run.
type CopyReport struct {
	Copied  map[Rank]int `json:"copied"`
	Missing []string     `json:"missing,omitempty"`
}

// Total returns the number of copied artifacts.
func (r CopyReport) Total() int {
	n := 0
	for _, c := range r.Copied {
		n += c
	}
	return n
}

// CopyArtifacts copies each ranked morph's artifact from srcDir into
// destDir/rank_a, rank_b or rank_c. Artifacts are matched by file stem; when
// several files share a stem the first in name order wins. Morphs without an
// artifact are reported, not fatal.
func CopyArtifacts(ctx context.Context, srcDir, destDir string, rk Ranking) (CopyReport, error) {
	logger := zerolog.Ctx(ctx)
	report := CopyReport{Copied: make(map[Rank]int, len(Ranks))}

	files, err := dump.ListDir(srcDir)
	if err != nil {
		return report, err
	}
	byStem := make(map[string]string, len(files))
	for _, f := range files {
		stem := dump.Stem(f)
		if _, ok := byStem[stem]; !ok {
			byStem[stem] = f
		}
	}

	for _, r := range Ranks {
		dir := filepath.Join(destDir, r.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return report, fmt.Errorf("create %s: %w", dir, err)
		}

		for _, id := range rk.Tier(r) {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			src, ok := byStem[id]
			if !ok {
				report.Missing = append(report.Missing, id)
				logger.Warn().Str("morph", id).Str("rank", string(r)).Msg("no artifact to copy")
				continue
			}
			if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
				return report, err
			}
			report.Copied[r]++
		}
	}

	logger.Debug().
		Int("copied", report.Total()).
		Int("missing", len(report.Missing)).
		Str("dest", destDir).
		Msg("ranked artifacts copied")
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create artifact copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}
