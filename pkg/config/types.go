// pkg/config/types.go
package config

// Config is the root configuration structure for morphinspector.
// It aggregates all other specific configuration structs.
type Config struct {
	Log      LogConfig      `description:"Logging configuration" koanf:"log" yaml:"log"`
	Analysis AnalysisConfig `description:"Analysis configuration" koanf:"analysis" yaml:"analysis"`
	Cache    CacheConfig    `description:"Parsed dump cache" koanf:"cache" yaml:"cache"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level   string `description:"Log level: trace | debug | info | warn | error" koanf:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format  string `description:"Log format: json | text" koanf:"format" yaml:"format" validate:"oneof=text json"`
	NoColor bool   `description:"Disable colored console logs" koanf:"no_color" yaml:"no_color"`
}

// AnalysisConfig holds the parameters of the statistics core.
type AnalysisConfig struct {
	// Distance column; empty picks the first *_euclidean_l2, *_cosine or *_euclidean column.
	Metric string `description:"Distance column of the dumps" koanf:"metric" yaml:"metric"`

	// Gamma sweep
	GammaStep float64 `description:"Threshold sweep step" koanf:"gamma_step" yaml:"gamma_step" validate:"gt=0"`
	GammaMax  float64 `description:"Threshold sweep maximum" koanf:"gamma_max" yaml:"gamma_max" validate:"gte=0"`

	// Policies
	NaNPolicy        string `description:"NaN distances: raise | omit" koanf:"nan_policy" yaml:"nan_policy" validate:"oneof=raise omit"`
	DegeneratePolicy string `description:"Undefined rates: error | omit" koanf:"degenerate_policy" yaml:"degenerate_policy" validate:"oneof=error omit"`

	RankThreshold float64   `description:"Recognition threshold for morph ranking" koanf:"rank_threshold" yaml:"rank_threshold" validate:"gte=0"`
	MMPMRTaus     []float64 `description:"Thresholds MMPMR is computed at" koanf:"mmpmr_taus" yaml:"mmpmr_taus" validate:"min=1"`
	DETTargets    []float64 `description:"BPCER targets reported for DET curves" koanf:"det_targets" yaml:"det_targets" validate:"min=1,dive,gte=0,lte=1"`
}

// CacheConfig holds parsed dump cache configuration.
type CacheConfig struct {
	Enabled bool   `description:"Cache parsed dump directories" koanf:"enabled" yaml:"enabled"`
	Dir     string `description:"Cache directory (default: <workspace>/cache)" koanf:"dir" yaml:"dir"`
}
