// Package config loads sweep settings for the epibox tools from YAML files and
// environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"epibox/internal/percolation"
)

// Config contains all tool settings.
type Config struct {
	// Seed drives every random stream. Zero asks the tool to pick one.
	Seed int64 `yaml:"seed"`

	// Workers bounds parallel realizations; zero means one per CPU.
	Workers int `yaml:"workers"`

	// Database is the SQLite file sweep results are written to. Empty
	// disables persistence.
	Database string `yaml:"database"`

	Sweep   SweepConfig   `yaml:"sweep"`
	Logging LoggingConfig `yaml:"logging"`
}

// SweepConfig lists the grid sizes and densities to estimate.
type SweepConfig struct {
	GridSizes []int     `yaml:"grid_sizes"`
	Densities []float64 `yaml:"densities"`
	Trials    int       `yaml:"trials"`
	Mode      string    `yaml:"mode"`
}

// LoggingConfig configures operational logging.
type LoggingConfig struct {
	// Level is one of "info" (default), "debug" or "trace".
	Level string `yaml:"level"`
}

// Default returns the lab assignment sweep: L ∈ {20,50,100},
// p ∈ {0.1..0.9}, 20 realizations per point.
func Default() *Config {
	return &Config{
		Seed: 1337,
		Sweep: SweepConfig{
			GridSizes: []int{20, 50, 100},
			Densities: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
			Trials:    20,
			Mode:      string(percolation.ModeFire),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load returns defaults overlaid with the YAML file at path (if path is not
// empty) and then with environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration describes a runnable sweep.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.Sweep.Trials <= 0 {
		return fmt.Errorf("sweep.trials must be positive, got %d", c.Sweep.Trials)
	}
	if len(c.Sweep.GridSizes) == 0 || len(c.Sweep.Densities) == 0 {
		return fmt.Errorf("sweep needs at least one grid size and one density")
	}
	for _, n := range c.Sweep.GridSizes {
		if n <= 0 {
			return fmt.Errorf("sweep.grid_sizes must be positive, got %d", n)
		}
	}
	for _, p := range c.Sweep.Densities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("sweep.densities must lie within [0,1], got %v", p)
		}
	}
	switch percolation.Mode(c.Sweep.Mode) {
	case "", percolation.ModeFire, percolation.ModeCluster:
	default:
		return fmt.Errorf("invalid sweep.mode: %s (valid: fire, cluster)", c.Sweep.Mode)
	}
	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

// PercolationSweep converts the file settings into estimator input.
func (c *Config) PercolationSweep() percolation.SweepConfig {
	return percolation.SweepConfig{
		GridSizes: c.Sweep.GridSizes,
		Densities: c.Sweep.Densities,
		Trials:    c.Sweep.Trials,
		Mode:      percolation.Mode(c.Sweep.Mode),
		Workers:   c.Workers,
		Seed:      c.Seed,
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EPIBOX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EPIBOX_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("EPIBOX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("EPIBOX_DB"); v != "" {
		cfg.Database = v
	}
}
