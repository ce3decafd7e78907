// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/morphinspector/morphinspector/pkg/analysis"
)

// Level is a diagnostic verbosity.
type Level int

const (
	// LevelQuiet shows nothing.
	LevelQuiet Level = iota
	// LevelVerbose (-v) shows when runs start and finish.
	LevelVerbose
	// LevelDebug (-vv) also shows every phase of a run.
	LevelDebug
)

var (
	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")) // Gray

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")) // Green

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")) // Red
)

// LevelOf returns the verbosity an event needs to be shown.
func LevelOf(event analysis.ProgressEvent) Level {
	switch event.Phase {
	case "start", "done":
		return LevelVerbose
	default:
		return LevelDebug
	}
}

// DiagnosticSubscriber renders progress events as lines on a writer,
// typically stderr.
type DiagnosticSubscriber struct {
	level        Level
	writer       io.Writer
	colorEnabled bool
	mu           sync.Mutex
}

// NewDiagnosticSubscriber creates a subscriber showing events up to level.
func NewDiagnosticSubscriber(level Level, writer io.Writer, colorEnabled bool) *DiagnosticSubscriber {
	return &DiagnosticSubscriber{
		level:        level,
		writer:       writer,
		colorEnabled: colorEnabled,
	}
}

// Name returns the subscriber identifier.
func (s *DiagnosticSubscriber) Name() string {
	return "diagnostic-subscriber"
}

// ShouldHandle reports whether the event is within the subscriber's verbosity.
func (s *DiagnosticSubscriber) ShouldHandle(event analysis.ProgressEvent) bool {
	return s.level > LevelQuiet && LevelOf(event) <= s.level
}

// Handle writes one line per event.
func (s *DiagnosticSubscriber) Handle(event analysis.ProgressEvent) {
	line := fmt.Sprintf("%s %s %s/%s %s", prefix(LevelOf(event)), event.Timestamp.Format("15:04:05"),
		event.Operation, event.Phase, event.Status)
	if event.Message != "" {
		line += ": " + event.Message
	}

	if s.colorEnabled {
		switch event.Status {
		case "completed":
			line = completedStyle.Render(line)
		case "failed":
			line = failedStyle.Render(line)
		default:
			line = runningStyle.Render(line)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, line)
}

func prefix(level Level) string {
	if level == LevelDebug {
		return "[DEBUG]"
	}
	return "[VERBOSE]"
}
