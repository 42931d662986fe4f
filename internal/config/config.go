package config

import "runtime"

// Config is the root pipeline configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Extract ExtractConfig `yaml:"extract"`
	Build   BuildConfig   `yaml:"build"`
	Format  FormatConfig  `yaml:"format"`
	Store   StoreConfig   `yaml:"store"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// ExtractConfig holds sense extractor settings.
type ExtractConfig struct {
	SensePolicy  string   `yaml:"sense_policy"  env-default:"exact"`
	SkipPOS      []string `yaml:"skip_pos"      env-default:"character,symbol,punct"`
	SkipSynonyms bool     `yaml:"skip_synonyms"`
	DedupWindow  int      `yaml:"dedup_window"  env-default:"65536"`
	MaxLineSize  int      `yaml:"max_line_size" env-default:"16777216"`
}

// BuildConfig holds graph builder settings.
type BuildConfig struct {
	// SenseCutoff is the minimum number of languages a sense node must be
	// attested in before it takes part in any edge.
	SenseCutoff int `yaml:"sense_cutoff" env-default:"1"`
	// EdgeCutoff is the minimum weight of an emitted edge.
	EdgeCutoff int `yaml:"edge_cutoff"  env-default:"1"`
	// Workers bounds the per-language reduction; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"      env-default:"0"`
}

// FormatConfig holds graph formatter settings.
type FormatConfig struct {
	NodeIDs string `yaml:"node_ids" env-default:"concept"`
	Indent  bool   `yaml:"indent"   env-default:"false"`
}

// StoreConfig holds SQL graph store settings.
type StoreConfig struct {
	Driver    string `yaml:"driver"     env-default:"sqlite"`
	DSN       string `yaml:"dsn"        env-default:"colexification.db"`
	BatchSize int    `yaml:"batch_size" env-default:"500"`
}

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Supported node ID schemes.
const (
	NodeIDsConcept    = "concept"
	NodeIDsSequential = "sequential"
)

// EffectiveWorkers resolves Workers to a positive goroutine limit.
func (c BuildConfig) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
