// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package dump

import (
	"path/filepath"
	"strings"
)

// MorphName holds the identities encoded in a morph dump file name.
//
//	00_0-01_0.png.csv -> IdentityA "00", IdentityB "01"
type MorphName struct {
	File      string
	IdentityA string
	IdentityB string
}

// ParseMorphName extracts both constituent identities from a morph file name.
func ParseMorphName(name string) (MorphName, error) {
	base := filepath.Base(name)
	left, right, ok := strings.Cut(base, "-")
	if !ok {
		return MorphName{}, NewMalformedRecordError(base, "morph name must contain '-' between the two stills")
	}

	// The second still runs up to the first extension dot.
	right, _, _ = strings.Cut(right, ".")

	a := IdentityToken(left)
	b := IdentityToken(right)
	if a == "" || b == "" {
		return MorphName{}, NewMalformedRecordError(base, "morph name has an empty identity token")
	}

	return MorphName{File: base, IdentityA: a, IdentityB: b}, nil
}

// ParseStillName extracts the identity encoded in a still dump file name.
func ParseStillName(name string) (string, error) {
	base := filepath.Base(name)
	if !strings.Contains(base, "_") {
		return "", NewMalformedRecordError(base, "still name must be identity_imagenum")
	}
	id := IdentityToken(base)
	if id == "" {
		return "", NewMalformedRecordError(base, "still name has an empty identity token")
	}
	return id, nil
}

// IdentityToken returns the identity part of an image name: everything before the first underscore.
func IdentityToken(name string) string {
	token, _, _ := strings.Cut(filepath.Base(name), "_")
	return token
}

// Stem returns a file name up to its first dot.
func Stem(name string) string {
	stem, _, _ := strings.Cut(filepath.Base(name), ".")
	return stem
}

// candidateBase reduces a candidate identity path to its basename.
// Dumps are written on either platform, so both separators are honoured.
func candidateBase(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
