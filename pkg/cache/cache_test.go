package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Files int      `json:"files"`
	Names []string `json:"names"`
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "cache"), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func sourceDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte(f), 0o644))
	}
	return dir
}

func TestPutGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	key := Key{Dir: sourceDir(t, "a_1.csv", "b_1.csv"), Kind: "stills", NaNPolicy: "raise"}

	var got payload
	hit, err := s.Get(ctx, key, &got)
	require.NoError(t, err)
	require.False(t, hit)

	want := payload{Files: 2, Names: []string{"a_1.csv", "b_1.csv"}}
	require.NoError(t, s.Put(ctx, key, want))

	hit, err = s.Get(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, want, got)
}

func TestFingerprintTracksContentAndOptions(t *testing.T) {
	s := newStore(t)
	dir := sourceDir(t, "a_1.csv")
	base := Key{Dir: dir, Kind: "stills", Metric: "", NaNPolicy: "raise"}

	k1, err := s.Fingerprint(base)
	require.NoError(t, err)
	again, err := s.Fingerprint(base)
	require.NoError(t, err)
	assert.Equal(t, k1, again)

	omit := base
	omit.NaNPolicy = "omit"
	k2, err := s.Fingerprint(omit)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	kind := base
	kind.Kind = "morphs"
	k3, err := s.Fingerprint(kind)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_1.csv"), []byte("x"), 0o644))
	k4, err := s.Fingerprint(base)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)

	// Hidden files are not dumps and do not change the key.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o644))
	k5, err := s.Fingerprint(base)
	require.NoError(t, err)
	assert.Equal(t, k4, k5)
}

func TestChangedInputIsMiss(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	dir := sourceDir(t, "a_1.csv")
	key := Key{Dir: dir, Kind: "stills"}

	require.NoError(t, s.Put(ctx, key, payload{Files: 1}))

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a_1.csv"), later, later))

	var got payload
	hit, err := s.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestIncompatibleFormatIsDiscarded(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	key := Key{Dir: sourceDir(t, "a_1.csv"), Kind: "stills"}
	require.NoError(t, s.Put(ctx, key, payload{Files: 1}))

	fp, err := s.Fingerprint(key)
	require.NoError(t, err)
	path := filepath.Join(s.Dir(), fp+".json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["format_version"] = "2.0.0"
	data, err = json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	var got payload
	hit, err := s.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoFileExists(t, path)
}

func TestCompatible(t *testing.T) {
	assert.True(t, compatible("1.0.0"))
	assert.True(t, compatible("1.4.2"))
	assert.False(t, compatible("2.0.0"))
	assert.False(t, compatible("0.9.0"))
	assert.False(t, compatible("not-a-version"))
}

func TestInvalidateAndClear(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	morphs := sourceDir(t, "a_1-b_1.png.csv")
	stills := sourceDir(t, "a_1.csv")

	require.NoError(t, s.Put(ctx, Key{Dir: morphs, Kind: "morphs"}, payload{Files: 1}))
	require.NoError(t, s.Put(ctx, Key{Dir: stills, Kind: "stills"}, payload{Files: 1}))

	entries, err := s.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	n, err := s.Invalidate(morphs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got payload
	hit, err := s.Get(ctx, Key{Dir: morphs, Kind: "morphs"}, &got)
	require.NoError(t, err)
	assert.False(t, hit)
	hit, err = s.Get(ctx, Key{Dir: stills, Kind: "stills"}, &got)
	require.NoError(t, err)
	assert.True(t, hit)

	n, err = s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err = s.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewStoreRequiresDir(t *testing.T) {
	_, err := NewStore("", zerolog.Nop())
	require.Error(t, err)
}
