package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSource_Priority(t *testing.T) {
	src := &DefaultSource{}
	assert.Equal(t, 10, src.Priority())
	assert.Equal(t, "defaults", src.Name())
}

func TestDefaultSource_Load(t *testing.T) {
	k := koanf.New(".")
	src := &DefaultSource{}

	err := src.Load(k)
	require.NoError(t, err)

	assert.Equal(t, "info", k.String("log.level"))
	assert.Equal(t, "text", k.String("log.format"))
	assert.Equal(t, 0.001, k.Float64("analysis.gamma_step"))
	assert.Equal(t, "raise", k.String("analysis.nan_policy"))
}

func TestFileSource_Priority(t *testing.T) {
	src := &FileSource{Path: "/tmp/test.yaml"}
	assert.Equal(t, 20, src.Priority())
	assert.Equal(t, "file:/tmp/test.yaml", src.Name())
}

func TestFileSource_Load_EmptyPath(t *testing.T) {
	k := koanf.New(".")
	src := &FileSource{Path: ""}

	err := src.Load(k)
	require.NoError(t, err, "Empty path should skip silently")
}

func TestFileSource_Load_NonExistentFile(t *testing.T) {
	k := koanf.New(".")
	src := &FileSource{Path: "/nonexistent/path/config.yaml"}

	err := src.Load(k)
	require.NoError(t, err, "Non-existent file should skip silently")
}

func TestFileSource_Load_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `
log:
  level: warn
  format: json
analysis:
  gamma_step: 0.01
  metric: VGG-Face_cosine
`
	err := os.WriteFile(configPath, []byte(configContent), 0o644)
	require.NoError(t, err)

	k := koanf.New(".")
	src := &FileSource{Path: configPath}

	err = src.Load(k)
	require.NoError(t, err)

	assert.Equal(t, "warn", k.String("log.level"))
	assert.Equal(t, "json", k.String("log.format"))
	assert.Equal(t, 0.01, k.Float64("analysis.gamma_step"))
	assert.Equal(t, "VGG-Face_cosine", k.String("analysis.metric"))
}

func TestFileSource_Load_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log: [unterminated"), 0o644))

	err := (&FileSource{Path: configPath}).Load(koanf.New("."))
	require.Error(t, err)
}

func TestEnvSource_Priority(t *testing.T) {
	src := &EnvSource{}
	assert.Equal(t, 30, src.Priority())
	assert.Equal(t, "env", src.Name())
}

func TestEnvSource_Load(t *testing.T) {
	t.Setenv("MORPHINSPECTOR_LOG__LEVEL", "error")
	t.Setenv("MORPHINSPECTOR_ANALYSIS__GAMMA_STEP", "0.05")

	k := koanf.New(".")
	src := &EnvSource{Prefix: "MORPHINSPECTOR_"}

	err := src.Load(k)
	require.NoError(t, err)

	assert.Equal(t, "error", k.String("log.level"))
	assert.Equal(t, 0.05, k.Float64("analysis.gamma_step"))
}

func TestEnvSource_Load_DefaultPrefix(t *testing.T) {
	t.Setenv("MORPHINSPECTOR_LOG__FORMAT", "json")

	k := koanf.New(".")
	src := &EnvSource{}

	err := src.Load(k)
	require.NoError(t, err)

	assert.Equal(t, "json", k.String("log.format"))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "analysis.nan_policy", EnvKey(EnvPrefix, "MORPHINSPECTOR_ANALYSIS__NAN_POLICY"))
	assert.Equal(t, "cache.dir", EnvKey(EnvPrefix, "MORPHINSPECTOR_CACHE__DIR"))
}

func TestFlagSource_Priority(t *testing.T) {
	src := &FlagSource{}
	assert.Equal(t, 40, src.Priority())
	assert.Equal(t, "flags", src.Name())
}

func TestFlagSource_Load_NilFlags(t *testing.T) {
	k := koanf.New(".")
	src := &FlagSource{Flags: nil}

	err := src.Load(k)
	require.NoError(t, err, "Nil flags should skip silently")
}

func TestFlagSource_Load_MapsFlagNames(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("gamma-step", 0.001, "")
	flags.Float64("gamma-max", 2, "")
	flags.Bool("omit-degenerate", false, "")
	flags.Bool("no-cache", false, "")
	flags.Float64Slice("tau", nil, "")
	flags.String("output", "table", "")
	require.NoError(t, flags.Parse([]string{"--gamma-step=0.01", "--omit-degenerate", "--no-cache", "--tau=0.4,0.6", "--output=json"}))

	k := koanf.New(".")
	require.NoError(t, (&DefaultSource{}).Load(k))
	require.NoError(t, (&FlagSource{Flags: flags}).Load(k))

	assert.Equal(t, 0.01, k.Float64("analysis.gamma_step"))
	assert.Equal(t, 2.0, k.Float64("analysis.gamma_max"), "unchanged flags keep the lower layer")
	assert.Equal(t, "omit", k.String("analysis.degenerate_policy"))
	assert.False(t, k.Bool("cache.enabled"))
	assert.Equal(t, []float64{0.4, 0.6}, k.Float64s("analysis.mmpmr_taus"))
	assert.False(t, k.Exists("output"), "flags without a key are ignored")
}

func TestFlagSource_Load_DebugFlag(t *testing.T) {
	k := koanf.New(".")

	src := &FlagSource{Flags: nil, Debug: true}
	err := src.Load(k)
	require.NoError(t, err)

	assert.Equal(t, "debug", k.String("log.level"))
}

func TestDefaultSources_Order(t *testing.T) {
	sources := DefaultSources("/tmp/config.yaml", nil, false)

	require.Len(t, sources, 4)
	assert.Equal(t, "defaults", sources[0].Name())
	assert.Equal(t, "file:/tmp/config.yaml", sources[1].Name())
	assert.Equal(t, "env", sources[2].Name())
	assert.Equal(t, "flags", sources[3].Name())
}

func TestDefaultSources_Priorities(t *testing.T) {
	sources := DefaultSources("", nil, false)

	for i := 1; i < len(sources); i++ {
		assert.Greater(t, sources[i].Priority(), sources[i-1].Priority(),
			"Source %s should have higher priority than %s",
			sources[i].Name(), sources[i-1].Name())
	}
}

func TestLoadWithSources_CustomSource(t *testing.T) {
	// A custom source between file (20) and env (30)
	customSource := &mockConfigSource{
		name:     "custom",
		priority: 25,
		loadFunc: func(k *koanf.Koanf) error {
			return k.Set("analysis.metric", "ArcFace_cosine")
		},
	}

	manager := NewManager()
	sources := []ConfigSource{
		&DefaultSource{},
		customSource,
		&EnvSource{Prefix: "MORPHINSPECTOR_"},
	}

	err := manager.LoadWithSources(sources)
	require.NoError(t, err)

	assert.Equal(t, "ArcFace_cosine", manager.Get().Analysis.Metric)
}

func TestLoadWithSources_PriorityOrdering(t *testing.T) {
	t.Setenv("MORPHINSPECTOR_LOG__LEVEL", "warn")

	manager := NewManager()
	sources := []ConfigSource{
		&EnvSource{Prefix: "MORPHINSPECTOR_"}, // priority 30
		&DefaultSource{},                      // priority 10, loaded first despite order
	}

	err := manager.LoadWithSources(sources)
	require.NoError(t, err)

	assert.Equal(t, "warn", manager.Get().Log.Level)
}

// mockConfigSource is a test helper for custom config sources
type mockConfigSource struct {
	name     string
	priority int
	loadFunc func(k *koanf.Koanf) error
}

func (m *mockConfigSource) Name() string  { return m.name }
func (m *mockConfigSource) Priority() int { return m.priority }
func (m *mockConfigSource) Load(k *koanf.Koanf) error {
	if m.loadFunc != nil {
		return m.loadFunc(k)
	}
	return nil
}
