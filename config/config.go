package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ncdc tool.
type Config struct {
	Compressor CompressorConfig `yaml:"compressor"`
	Classify   ClassifyConfig   `yaml:"classify"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Cache      CacheConfig      `yaml:"cache"`
	Workers    int              `yaml:"workers"` // 0 = one worker per CPU
	Logging    LoggingConfig    `yaml:"logging"`
}

// CompressorConfig selects the compression backend used for all lengths.
type CompressorConfig struct {
	Name  string `yaml:"name"`  // "gzip", "flate", "zlib", "zstd", "lz4", "s2"
	Level int    `yaml:"level"` // -1 = library default
}

// ClassifyConfig holds voting configuration.
type ClassifyConfig struct {
	K        int    `yaml:"k"`
	TieBreak string `yaml:"tie_break"` // "random", "decrement", "min_total"
	Seed     int64  `yaml:"seed"`      // for the random tie-break; 0 = time-seeded
}

// DatasetConfig holds corpus loading configuration. Column settings apply to
// CSV datasets, include/exclude patterns to labeled directories, the rest to
// both.
type DatasetConfig struct {
	LabelColumn int      `yaml:"label_column"`
	TextColumns []int    `yaml:"text_columns"`
	Header      bool     `yaml:"header"`
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
	Lowercase   bool     `yaml:"lowercase"`
	MaxChars    int      `yaml:"max_chars"`   // 0 = unlimited
	PerLabel    int      `yaml:"per_label"`   // 0 = keep all samples
	SampleSeed  int64    `yaml:"sample_seed"` // per-label sampling shuffle
}

// CacheConfig holds the persistent length cache configuration.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty = <dir>/.ncdc/cache.db
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Compressor: CompressorConfig{
			Name:  "gzip",
			Level: -1,
		},
		Classify: ClassifyConfig{
			K:        2,
			TieBreak: "decrement",
			Seed:     0,
		},
		Dataset: DatasetConfig{
			LabelColumn: 0,
			TextColumns: []int{1, 2},
			Header:      false,
			Includes:    []string{"**/*.txt"},
			Excludes:    nil,
			Lowercase:   false,
			MaxChars:    0,
			PerLabel:    0,
			SampleSeed:  42,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    "",
		},
		Workers: 0,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ncdc.yaml).
func LoadFromDir(dir string) (*Config, error) {
	// Try ncdc.yaml in the directory
	path := filepath.Join(dir, "ncdc.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .ncdc/config.yaml
	path = filepath.Join(dir, ".ncdc", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath returns the path to the length cache database, honoring an
// explicit override from the config.
func (c *Config) CacheDBPath(dir string) string {
	if c.Cache.Path != "" {
		return c.Cache.Path
	}
	return filepath.Join(dir, ".ncdc", "cache.db")
}

// EnsureWorkDir ensures the .ncdc directory exists.
func EnsureWorkDir(dir string) error {
	workDir := filepath.Join(dir, ".ncdc")
	return os.MkdirAll(workDir, 0755)
}
