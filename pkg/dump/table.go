// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package dump

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// IdentityColumn is the dump column naming the candidate image.
const IdentityColumn = "identity"

// metricSuffixes are tried in order when no metric column is configured.
var metricSuffixes = []string{"_euclidean_l2", "_cosine", "_euclidean"}

// Record is a single probe-to-candidate comparison.
type Record struct {
	Candidate string  `json:"candidate"`
	Distance  float64 `json:"distance"`
}

// Table is the parsed content of one dump file.
type Table struct {
	Metric  string
	Records []Record
}

// ReadTable parses a tab-separated comparison dump.
//
// The header must name an identity column and a distance column. metric selects the
// distance column by name; when empty, the first column ending in a known metric
// suffix is used. The unnamed index column written by dataframe exports is ignored.
func ReadTable(r io.Reader, file, metric string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, NewMalformedRecordError(file, "empty dump")
		}
		return nil, NewMalformedRecordError(file, fmt.Sprintf("read header: %v", err))
	}

	identityIdx, metricIdx, metricName := resolveColumns(header, metric)
	if identityIdx < 0 {
		return nil, NewMalformedRecordError(file, "missing identity column")
	}
	if metricIdx < 0 {
		if metric != "" {
			return nil, NewMalformedRecordError(file, fmt.Sprintf("missing distance column %q", metric))
		}
		return nil, NewMalformedRecordError(file, "no recognized distance column")
	}

	table := &Table{Metric: metricName}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, NewMalformedRecordError(file, fmt.Sprintf("line %d: %v", line, err))
		}
		if identityIdx >= len(row) || metricIdx >= len(row) {
			return nil, NewMalformedRecordError(file, fmt.Sprintf("line %d: short row", line))
		}

		candidate := candidateBase(strings.TrimSpace(row[identityIdx]))
		if candidate == "" {
			continue
		}
		distance, err := parseDistance(row[metricIdx])
		if err != nil {
			return nil, NewMalformedRecordError(file, fmt.Sprintf("line %d: %v", line, err))
		}
		table.Records = append(table.Records, Record{Candidate: candidate, Distance: distance})
	}

	return table, nil
}

func resolveColumns(header []string, metric string) (identityIdx, metricIdx int, metricName string) {
	identityIdx, metricIdx = -1, -1
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue // index column
		}
		if h == IdentityColumn && identityIdx < 0 {
			identityIdx = i
			continue
		}
		if metric != "" && h == metric && metricIdx < 0 {
			metricIdx, metricName = i, h
		}
	}
	if metric != "" {
		return identityIdx, metricIdx, metricName
	}

	for _, suffix := range metricSuffixes {
		for i, h := range header {
			h = strings.TrimSpace(h)
			if strings.HasSuffix(h, suffix) {
				return identityIdx, i, h
			}
		}
	}
	return identityIdx, -1, ""
}

// parseDistance converts a dump cell. Empty and NaN cells become NaN;
// infinite distances are malformed.
func parseDistance(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return math.NaN(), nil
	}
	d, err := cast.ToFloat64E(cell)
	if err != nil {
		return 0, fmt.Errorf("invalid distance %q", cell)
	}
	if math.IsInf(d, 0) {
		return 0, fmt.Errorf("distance %q is not finite", cell)
	}
	return d, nil
}
