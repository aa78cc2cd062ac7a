// Package config handles configuration loading, validation, and defaults for
// kaiser.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/64/kaiser/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete kaiser configuration. Command-line flags
// override it, and KAISER_* environment variables override the file.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Search configures the key search engines.
	Search SearchConfig `toml:"search" json:"search" yaml:"search"`

	// Score configures candidate scoring.
	Score ScoreConfig `toml:"score" json:"score" yaml:"score"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// Storage configures the crack history database.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Metrics configures the Prometheus exposition written after a crack.
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// SearchConfig holds key search configuration.
type SearchConfig struct {
	// Engine is "brute" or "hillclimb". Empty uses the cipher's default.
	Engine string `toml:"engine" json:"engine" yaml:"engine"`

	// Results is the number of candidates kept in the frontier.
	Results int `toml:"results" json:"results" yaml:"results"`

	// StopAfter is the number of consecutive non-improving tweaks that ends
	// a hill climb.
	StopAfter int `toml:"stop_after" json:"stop_after" yaml:"stop_after"`

	// Restarts is the number of extra climbs from fresh random keys.
	Restarts int `toml:"restarts" json:"restarts" yaml:"restarts"`

	// Seed fixes the random source. Zero draws a seed from the OS.
	Seed uint64 `toml:"seed" json:"seed" yaml:"seed"`

	// Parallel is the number of independent hill climbs run at once.
	Parallel int `toml:"parallel" json:"parallel" yaml:"parallel"`
}

// ScoreConfig holds scoring configuration.
type ScoreConfig struct {
	// Method is "quadgrams", "chi" or "ioc".
	Method string `toml:"method" json:"method" yaml:"method"`

	// QuadgramTable is the path to a binary quadgram table. Empty trains
	// the builtin table from the embedded corpus.
	QuadgramTable string `toml:"quadgram_table" json:"quadgram_table" yaml:"quadgram_table"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log destination: stdout, stderr, file or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file path when Output is file or both.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// StorageConfig holds crack history configuration.
type StorageConfig struct {
	// Enabled records every crack run and its frontier.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the SQLite database path.
	Path string `toml:"path" json:"path" yaml:"path"`

	// BusyTimeoutMs is the SQLite busy timeout in milliseconds.
	BusyTimeoutMs int `toml:"busy_timeout_ms" json:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// File receives the Prometheus text exposition after each crack.
	// Empty disables it.
	File string `toml:"file" json:"file" yaml:"file"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Search: SearchConfig{
			Results:   10,
			StopAfter: 1000,
			Restarts:  5,
			Parallel:  1,
		},
		Score: ScoreConfig{
			Method: "quadgrams",
		},
		Logging: LoggingConfig{
			Level:    "warn",
			Format:   "text",
			Output:   "stderr",
			FilePath: logging.DefaultLogPath(),
		},
		Storage: StorageConfig{
			Enabled:       false,
			Path:          filepath.Join(PlatformDataDir(), "history.db"),
			BusyTimeoutMs: 5000,
		},
	}
}

// ConfigPath returns the configuration file path, honouring KAISER_CONFIG.
func ConfigPath() string {
	if v := os.Getenv("KAISER_CONFIG"); v != "" {
		return v
	}
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// ApplyEnvOverrides applies KAISER_* environment variables to the
// configuration.
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidationErrors

	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	integer := func(name, field string, dst *int) {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("%s=%q is not an integer", name, v)})
				return
			}
			*dst = n
		}
	}

	str("KAISER_SEARCH_ENGINE", &c.Search.Engine)
	integer("KAISER_RESULTS", "search.results", &c.Search.Results)
	integer("KAISER_PARALLEL", "search.parallel", &c.Search.Parallel)
	if v := os.Getenv("KAISER_SEED"); v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, ValidationError{Field: "search.seed", Message: fmt.Sprintf("KAISER_SEED=%q is not an unsigned integer", v)})
		} else {
			c.Search.Seed = seed
		}
	}

	str("KAISER_SCORE_METHOD", &c.Score.Method)
	str("KAISER_QUADGRAM_TABLE", &c.Score.QuadgramTable)

	str("KAISER_LOG_LEVEL", &c.Logging.Level)
	str("KAISER_LOG_FORMAT", &c.Logging.Format)
	str("KAISER_LOG_PATH", &c.Logging.FilePath)

	if v := os.Getenv("KAISER_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
		c.Storage.Enabled = true
	}
	str("KAISER_METRICS_FILE", &c.Metrics.File)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LoggerConfig converts the logging section into a logging.Config.
func (c *Config) LoggerConfig() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = format
	cfg.Output = c.Logging.Output
	if c.Logging.FilePath != "" {
		cfg.FilePath = c.Logging.FilePath
	}
	return cfg, nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
