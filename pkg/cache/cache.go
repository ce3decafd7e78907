// Copyright 2025 Morphinspector Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package cache stores parsed dump batches keyed by the content of their
// source directory, so unchanged inputs are not parsed twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// FormatVersion is written into every entry header.
const FormatVersion = "1.0.0"

// compatibleFormats accepts entries this build can decode.
var compatibleFormats = mustConstraint("^1")

const (
	entryExt    = ".json"
	lockExt     = ".lock"
	lockRetry   = 25 * time.Millisecond
	listingSep  = "|"
	fingerprint = "morphinspector-cache"
)

// Key identifies what was parsed: the source directory and the options that
// change the parse result.
type Key struct {
	Dir       string
	Kind      string
	Metric    string
	NaNPolicy string
}

// Header precedes every cached payload.
type Header struct {
	FormatVersion string    `json:"format_version"`
	Key           string    `json:"key"`
	Source        string    `json:"source"`
	Kind          string    `json:"kind"`
	CreatedAt     time.Time `json:"created_at"`
}

type entry struct {
	Header
	Payload json.RawMessage `json:"payload"`
}

// Store is a directory of cache entries.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// NewStore opens (creating if needed) a cache in dir.
func NewStore(dir string, logger zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger.With().Str("component", "cache").Logger(),
	}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// Fingerprint computes the content address of k: a SHA-256 over the absolute
// source path, the parse options, and the name, size and modification time of
// every file in the source directory.
func (s *Store) Fingerprint(k Key) (string, error) {
	abs, err := filepath.Abs(k.Dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", k.Dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", abs, err)
	}

	listing := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		listing = append(listing, strings.Join([]string{
			e.Name(),
			fmt.Sprint(info.Size()),
			fmt.Sprint(info.ModTime().UnixNano()),
		}, listingSep))
	}
	sort.Strings(listing)

	h := sha256.New()
	for _, part := range []string{fingerprint, abs, k.Kind, k.Metric, k.NaNPolicy} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for _, line := range listing {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get decodes the entry for k into v. It reports false on a miss, including
// entries written in an incompatible format, which are removed.
func (s *Store) Get(ctx context.Context, k Key, v any) (bool, error) {
	key, err := s.Fingerprint(k)
	if err != nil {
		return false, err
	}

	lock := flock.New(s.path(key, lockExt))
	ok, err := lock.TryRLockContext(ctx, lockRetry)
	if err != nil {
		return false, fmt.Errorf("lock cache entry: %w", err)
	}
	if !ok {
		return false, nil
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(s.path(key, entryExt))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache entry: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
		_ = os.Remove(s.path(key, entryExt))
		return false, nil
	}
	if !compatible(e.FormatVersion) {
		s.logger.Debug().Str("key", key).Str("format_version", e.FormatVersion).Msg("discarding incompatible cache entry")
		_ = os.Remove(s.path(key, entryExt))
		return false, nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return false, fmt.Errorf("decode cache payload: %w", err)
	}

	s.logger.Debug().Str("key", key).Str("source", e.Source).Str("kind", e.Kind).Msg("cache hit")
	return true, nil
}

// Put stores v as the entry for k.
func (s *Store) Put(ctx context.Context, k Key, v any) error {
	key, err := s.Fingerprint(k)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(k.Dir)

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}
	data, err := json.Marshal(entry{
		Header: Header{
			FormatVersion: FormatVersion,
			Key:           key,
			Source:        abs,
			Kind:          k.Kind,
			CreatedAt:     time.Now().UTC(),
		},
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	lock := flock.New(s.path(key, lockExt))
	if _, err := lock.TryLockContext(ctx, lockRetry); err != nil {
		return fmt.Errorf("lock cache entry: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp := s.path(key, entryExt+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, s.path(key, entryExt)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit cache entry: %w", err)
	}

	s.logger.Debug().Str("key", key).Str("source", abs).Str("kind", k.Kind).Msg("cache entry written")
	return nil
}

// Invalidate removes every entry whose source is dir and returns how many
// were removed.
func (s *Store) Invalidate(dir string) (int, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", dir, err)
	}
	return s.remove(func(h Header) bool { return h.Source == abs })
}

// Clear removes every entry.
func (s *Store) Clear() (int, error) {
	return s.remove(func(Header) bool { return true })
}

// Entries returns the headers of all readable entries.
func (s *Store) Entries() ([]Header, error) {
	var out []Header
	err := s.walk(func(path string, h Header) error {
		out = append(out, h)
		return nil
	})
	return out, err
}

func (s *Store) remove(match func(Header) bool) (int, error) {
	removed := 0
	err := s.walk(func(path string, h Header) error {
		if !match(h) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove cache entry: %w", err)
		}
		_ = os.Remove(strings.TrimSuffix(path, entryExt) + lockExt)
		removed++
		return nil
	})
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("cache entries removed")
	}
	return removed, err
}

func (s *Store) walk(fn func(path string, h Header) error) error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+entryExt))
	if err != nil {
		return err
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var h Header
		if err := json.Unmarshal(data, &h); err != nil {
			s.logger.Debug().Err(err).Str("file", filepath.Base(path)).Msg("skipping unreadable cache entry")
			continue
		}
		if err := fn(path, h); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) path(key, ext string) string {
	return filepath.Join(s.dir, key+ext)
}

func compatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return compatibleFormats.Check(v)
}

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}
