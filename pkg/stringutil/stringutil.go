// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package stringutil shortens strings for table cells.
package stringutil

import (
	"fmt"
	"strings"
)

// Ellipsis shortens s to at most maxLength runes, replacing the tail with
// "..." when it is cut. Surrounding space is trimmed and line breaks become
// spaces. When maxLength is 3 or less the cut has no ellipsis.
func Ellipsis(s string, maxLength int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")

	if maxLength <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

// JoinLimited joins at most limit items with sep and notes how many were left
// out, e.g. "a, b (+3 more)". A limit of zero or less joins everything.
func JoinLimited(items []string, sep string, limit int) string {
	if limit <= 0 || len(items) <= limit {
		return strings.Join(items, sep)
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(items[:limit], sep), len(items)-limit)
}
