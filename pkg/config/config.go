// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/morphinspector/morphinspector/pkg/biometric"
)

// ErrInvalidConfig is returned when the merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// ValidationError names the offending key of an invalid configuration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Field + ": invalid"
	}
	return e.Field + ": " + e.Reason
}

// Unwrap returns ErrInvalidConfig.
func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex // protects currentConfig
}

// NewManager creates a Manager with an empty koanf instance.
func NewManager() *Manager {
	return &Manager{koanfInstance: koanf.New(".")}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
// These serve as the baseline configuration if no other sources override them.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Analysis: AnalysisConfig{
			GammaStep:        0.001,
			GammaMax:         2,
			NaNPolicy:        "raise",
			DegeneratePolicy: "error",
			RankThreshold:    0.8,
			MMPMRTaus:        []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8},
			DETTargets:       []float64{1.0, 0.1, 0.05, 0.01},
		},
		Cache: CacheConfig{
			Enabled: true,
		},
	}
}

// Load merges the sources returned by DefaultSources and validates the result.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadWithSources(DefaultSources(customConfigFilePath, flags, debug))
}

// LoadWithSources merges sources in priority order into a fresh configuration.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := append([]ConfigSource(nil), sources...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })

	k := koanf.New(".")
	for _, src := range sorted {
		if err := src.Load(k); err != nil {
			return err
		}
	}

	var newCfg Config
	if err := k.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	postProcessConfig(&newCfg)
	if err := Validate(newCfg); err != nil {
		return err
	}

	m.koanfInstance = k
	m.currentConfig = newCfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := m.currentConfig
	cfg.Analysis.MMPMRTaus = append([]float64(nil), cfg.Analysis.MMPMRTaus...)
	cfg.Analysis.DETTargets = append([]float64(nil), cfg.Analysis.DETTargets...)
	return cfg
}

// postProcessConfig normalizes enum-like values before validation.
func postProcessConfig(cfg *Config) {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Analysis.NaNPolicy = strings.ToLower(strings.TrimSpace(cfg.Analysis.NaNPolicy))
	cfg.Analysis.DegeneratePolicy = strings.ToLower(strings.TrimSpace(cfg.Analysis.DegeneratePolicy))
}

// Validate checks cfg against its struct tags and bounds the size of the
// gamma sweep.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		if _, err := biometric.ThresholdCount(cfg.Analysis.GammaStep, cfg.Analysis.GammaMax); err != nil {
			return &ValidationError{Field: "analysis.gamma_step", Reason: err.Error()}
		}
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:  keyOf(fe.Namespace()),
			Reason: fmt.Sprintf("failed '%s' check (value %v)", describeTag(fe), fe.Value()),
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// keyOf maps a validator namespace such as Config.Analysis.GammaStep to the
// configuration key analysis.gamma_step.
func keyOf(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

var keyOverrides = map[string]string{
	"NaNPolicy":  "nan_policy",
	"MMPMRTaus":  "mmpmr_taus",
	"DETTargets": "det_targets",
}

func snake(s string) string {
	idx := ""
	if i := strings.IndexByte(s, '['); i >= 0 {
		s, idx = s[:i], s[i:]
	}
	if v, ok := keyOverrides[s]; ok {
		return v + idx
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String() + idx
}

// DefaultConfigAsMap converts the DefaultConfig struct to a map[string]interface{}
// for Koanf's confmap.Provider, so Koanf knows all keys.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		// Log configuration
		"log.level":    def.Log.Level,
		"log.format":   def.Log.Format,
		"log.no_color": def.Log.NoColor,

		// Analysis configuration
		"analysis.metric":            def.Analysis.Metric,
		"analysis.gamma_step":        def.Analysis.GammaStep,
		"analysis.gamma_max":         def.Analysis.GammaMax,
		"analysis.nan_policy":        def.Analysis.NaNPolicy,
		"analysis.degenerate_policy": def.Analysis.DegeneratePolicy,
		"analysis.rank_threshold":    def.Analysis.RankThreshold,
		"analysis.mmpmr_taus":        def.Analysis.MMPMRTaus,
		"analysis.det_targets":       def.Analysis.DETTargets,

		// Cache configuration
		"cache.enabled": def.Cache.Enabled,
		"cache.dir":     def.Cache.Dir,
	}
}

// BindFlags defines the global flags that feed configuration.
// Command specific flags are mapped by FlagKeys.
func BindFlags(flags *pflag.FlagSet) {
	var debug bool
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.String("log-format", "", "Log format (text, json)")
	flags.String("nan-policy", "", "NaN distances: raise | omit")
}
