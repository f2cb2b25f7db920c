// Package config loads the YAML + .env configuration of a backlab
// run: which data feed to read, how Cerebro should execute it, where
// results get persisted, and how logging is set up.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of a backlab run.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Cerebro  CerebroConfig  `yaml:"cerebro"`
	Broker   BrokerConfig   `yaml:"broker"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig points at the feed to backtest against.
type DataConfig struct {
	CSVPath     string `yaml:"csv_path"`
	TimeFrame   string `yaml:"timeframe"`   // seconds|minutes|hours|days|weeks|months|years
	Compression int    `yaml:"compression"` // bars per unit, e.g. 5 with minutes = 5-minute bars
}

// CerebroConfig mirrors the engine's own Config (spec §6), so a run
// can be fully driven from one YAML file.
type CerebroConfig struct {
	Preload     bool   `yaml:"preload"`
	RunOnce     bool   `yaml:"run_once"`
	Live        bool   `yaml:"live"`
	ExactBars   bool   `yaml:"exact_bars"`
	CheatOnOpen bool   `yaml:"cheat_on_open"`
	StdStats    bool   `yaml:"std_stats"`
	WriterCSV   string `yaml:"writer_csv"`
	MaxCPUs     int    `yaml:"max_cpus"` // optimization fan-out width; 0 = serial
}

// BrokerConfig seeds the SimulatedBroker.
type BrokerConfig struct {
	Cash           float64 `yaml:"cash"`
	FuturesMode    bool    `yaml:"futures_mode"`
	Margin         float64 `yaml:"margin"`
	Multiplier     float64 `yaml:"multiplier"`
	CommissionRate float64 `yaml:"commission_rate"`
}

// StorageConfig controls where run results are persisted.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // sqlite file path, or ":memory:"
}

// LogConfig controls logging format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads path as YAML, applies any LOG_LEVEL/LOG_FORMAT overrides
// from the environment (and from a .env file, if present), then fills
// in defaults for anything still unset.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BACKLAB_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Data.TimeFrame == "" {
		cfg.Data.TimeFrame = "days"
	}
	if cfg.Data.Compression <= 0 {
		cfg.Data.Compression = 1
	}
	if cfg.Broker.Cash <= 0 {
		cfg.Broker.Cash = 100000
	}
	if cfg.Broker.Multiplier <= 0 {
		cfg.Broker.Multiplier = 1.0
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "backlab.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
