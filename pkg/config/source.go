// pkg/config/source.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by EnvSource.
const EnvPrefix = "MORPHINSPECTOR_"

// ConfigSource represents a configuration source that can load values into koanf.
// Sources are loaded in priority order (lowest first), with higher priority sources
// overriding lower priority values.
//
// Built-in sources and their priorities:
//   - DefaultSource (10): Hardcoded default values
//   - FileSource (20): Config file (e.g., ~/.config/morphinspector/config.yaml)
//   - EnvSource (30): Environment variables (MORPHINSPECTOR_*)
//   - FlagSource (40): Command-line flags
type ConfigSource interface {
	// Name returns a human-readable name for this source (for logging/debugging)
	Name() string

	// Priority returns the load priority. Lower values are loaded first,
	// higher values override lower ones.
	Priority() int

	// Load loads configuration values into the provided koanf instance.
	Load(k *koanf.Koanf) error
}

// DefaultSource provides hardcoded default configuration values.
// Priority: 10 (lowest, loaded first)
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading defaults: %w", err)
	}
	return nil
}

// FileSource loads configuration from a YAML file.
// Priority: 20
type FileSource struct {
	Path string // Path to config file (optional, silently skipped if empty or missing)
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}

	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error checking config file %s: %w", s.Path, err)
	}

	if err := k.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", s.Path, err)
	}
	return nil
}

// EnvSource loads configuration from environment variables.
// Variables must have the MORPHINSPECTOR_ prefix. A double underscore
// separates keys so that single underscores survive in key names:
//
//	MORPHINSPECTOR_LOG__LEVEL           -> log.level
//	MORPHINSPECTOR_ANALYSIS__GAMMA_STEP -> analysis.gamma_step
//
// Priority: 30
type EnvSource struct {
	Prefix string // Environment variable prefix (default: "MORPHINSPECTOR_")
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Priority() int { return 30 }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}

	if err := k.Load(env.Provider(prefix, ".", func(key string) string {
		return EnvKey(prefix, key)
	}), nil); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	return nil
}

// EnvKey maps an environment variable name to a configuration key.
func EnvKey(prefix, name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, prefix)), "__", ".")
}

// FlagKeys maps command-line flag names to configuration keys.
// Flags not listed here do not feed configuration.
var FlagKeys = map[string]string{
	"log-format":      "log.format",
	"no-color":        "log.no_color",
	"metric":          "analysis.metric",
	"gamma-step":      "analysis.gamma_step",
	"gamma-max":       "analysis.gamma_max",
	"nan-policy":      "analysis.nan_policy",
	"threshold":       "analysis.rank_threshold",
	"tau":             "analysis.mmpmr_taus",
	"target":          "analysis.det_targets",
	"no-cache":        "cache.enabled",
	"cache-dir":       "cache.dir",
	"omit-degenerate": "analysis.degenerate_policy",
}

// FlagSource loads configuration from command-line flags.
// Priority: 40 (highest, overrides all other sources)
type FlagSource struct {
	Flags *pflag.FlagSet
	Debug bool // If true, set log.level to "debug"
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(s.Flags, ".", k, flagValue(s.Flags)), nil); err != nil {
			return fmt.Errorf("error loading command-line flags: %w", err)
		}
	}

	// Handle --debug flag specially (can be set even without flags)
	if s.Debug {
		_ = k.Set("log.level", "debug")
	}

	return nil
}

// flagValue translates a flag into its configuration key and value. Boolean
// switches whose meaning is inverted or enum-valued are converted here.
func flagValue(fs *pflag.FlagSet) func(f *pflag.Flag) (string, interface{}) {
	return func(f *pflag.Flag) (string, interface{}) {
		key, ok := FlagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		switch f.Name {
		case "no-cache":
			return key, f.Value.String() != "true"
		case "omit-degenerate":
			if f.Value.String() == "true" {
				return key, "omit"
			}
			return key, "error"
		}
		if f.Value.Type() == "float64Slice" {
			v, err := fs.GetFloat64Slice(f.Name)
			if err != nil {
				return "", nil
			}
			return key, v
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// DefaultSources returns the standard configuration sources.
// Order: defaults -> file -> env -> flags
func DefaultSources(configPath string, flags *pflag.FlagSet, debug bool) []ConfigSource {
	return []ConfigSource{
		&DefaultSource{},
		&FileSource{Path: configPath},
		&EnvSource{Prefix: EnvPrefix},
		&FlagSource{Flags: flags, Debug: debug},
	}
}
