// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package details

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// CSVHeader is the first line written by WriteCSV.
const CSVHeader = "File Name, MorphScore, distance A, distance B, 1-wasserstein"

// WriteFile writes s as a JSON object keyed by morph file name.
func WriteFile(path string, s Set) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create details directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write details: %w", err)
	}
	return nil
}

// ReadFile loads a details file written by WriteFile.
func ReadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read details: %w", err)
	}
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode details %s: %w", path, err)
	}
	return s, nil
}

// WriteCSV writes one comma separated row per morph, sorted by file name.
func WriteCSV(w io.Writer, s Set) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, CSVHeader); err != nil {
		return err
	}
	for _, name := range s.Names() {
		d := s[name]
		_, err := fmt.Fprintf(bw, "%s,%s,%s,%s,%s\n",
			name,
			formatFloat(d.MorphScore),
			formatFloat(d.DistanceA),
			formatFloat(d.DistanceB),
			formatFloat(d.Wasserstein),
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCSVFile writes the CSV rendering of s to path.
func WriteCSVFile(path string, s Set) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create csv directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := WriteCSV(f, s); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
