// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package watch reruns work when dump directories change.
package watch

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long a directory must stay quiet before the callback runs.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called with the watched directories that changed, sorted.
type ChangeFunc func(ctx context.Context, dirs []string) error

// DirWatcher watches dump directories and calls a ChangeFunc once changes
// settle. Bursts of writes (a dump export rewriting many files) are coalesced
// into a single call, and calls never overlap.
type DirWatcher struct {
	dirs     []string
	onChange ChangeFunc
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   zerolog.Logger

	// mu protects pending and timer
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fire    chan struct{}
}

// NewDirWatcher creates a watcher for dirs.
func NewDirWatcher(dirs []string, onChange ChangeFunc, logger zerolog.Logger) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs := make([]string, 0, len(dirs))
	for _, d := range dirs {
		a, err := filepath.Abs(d)
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
		abs = append(abs, a)
	}

	return &DirWatcher{
		dirs:     abs,
		onChange: onChange,
		watcher:  watcher,
		debounce: DefaultDebounce,
		logger:   logger.With().Str("component", "watch").Logger(),
		pending:  make(map[string]struct{}),
		fire:     make(chan struct{}, 1),
	}, nil
}

// SetDebounce overrides the quiet period. Call before Start.
func (w *DirWatcher) SetDebounce(d time.Duration) { w.debounce = d }

// Start watches until ctx is canceled. It should be run in its own goroutine
// or as the last step of a command. A failing ChangeFunc is logged and the
// watcher keeps going.
func (w *DirWatcher) Start(ctx context.Context) error {
	for _, d := range w.dirs {
		if err := w.watcher.Add(d); err != nil {
			w.logger.Error().Err(err).Str("dir", d).Msg("Failed to watch directory")
			_ = w.watcher.Close()
			return err
		}
	}

	w.logger.Info().
		Strs("dirs", w.dirs).
		Dur("debounce", w.debounce).
		Msg("Watching dump directories")

	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
		w.logger.Info().Msg("Stopped watching dump directories")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug().
				Str("op", event.Op.String()).
				Str("file", event.Name).
				Msg("Detected dump change")
			w.schedule(filepath.Dir(event.Name))

		case <-w.fire:
			dirs := w.takePending()
			if len(dirs) == 0 {
				continue
			}
			if err := w.onChange(ctx, dirs); err != nil {
				w.logger.Error().Err(err).Strs("dirs", dirs).Msg("Rerun after change failed")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("File watcher error")
		}
	}
}

// Close stops the watcher and releases resources.
func (w *DirWatcher) Close() error {
	return w.watcher.Close()
}

func relevant(event fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// schedule records dir as changed and restarts the debounce timer.
func (w *DirWatcher) schedule(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[dir] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *DirWatcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	dirs := make([]string, 0, len(w.pending))
	for d := range w.pending {
		dirs = append(dirs, d)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(dirs)
	return dirs
}
