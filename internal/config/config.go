// Package config is the single source of truth for the rule engine's
// tunable policy constants: resolver thresholds, concurrency limits,
// per-evaluation/per-rule timeouts, the snapshot row cap, logging, and
// storage paths. Adapted from the teacher's YAML-first UserConfig/Config
// split (one struct per concern, loaded once, overridable by environment
// variables).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ResolverConfig holds the Warehouse Context Resolver's policy constants
// (spec §4.C / §9: "resolver thresholds... are policy; expose as
// configuration").
type ResolverConfig struct {
	MinScore       float64 `yaml:"min_score"`
	MinMatchedRows int     `yaml:"min_matched_rows"`
}

// ConcurrencyConfig bounds evaluation concurrency and per-evaluation
// timeouts (spec §5).
type ConcurrencyConfig struct {
	MaxConcurrentEvaluations int           `yaml:"max_concurrent_evaluations"`
	TotalTimeout             time.Duration `yaml:"total_timeout"`
	RuleTimeout              time.Duration `yaml:"rule_timeout"`
	CancellationCheckRows    int           `yaml:"cancellation_check_rows"`
	MaxSnapshotRows          int           `yaml:"max_snapshot_rows"`
}

// StorageConfig points at the SQLite-backed catalog/rule stores.
type StorageConfig struct {
	CatalogDSN string `yaml:"catalog_dsn"`
	RulesDSN   string `yaml:"rules_dsn"`
	// RulesDir, when set, is watched for rule definition YAML files
	// (spec SPEC_FULL §4.D / component L).
	RulesDir string `yaml:"rules_dir"`
}

// LoggingConfig selects verbosity and output shape.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the complete, loaded configuration.
type Config struct {
	Resolver    ResolverConfig    `yaml:"resolver"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Storage     StorageConfig     `yaml:"storage"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// Default returns the out-of-the-box configuration: resolver thresholds
// exactly as spec §4.C.3 states them (≥0.30, ≥5), generous but finite
// timeouts, and JSON logging at info level.
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{
			MinScore:       0.30,
			MinMatchedRows: 5,
		},
		Concurrency: ConcurrencyConfig{
			MaxConcurrentEvaluations: 8,
			TotalTimeout:             30 * time.Second,
			RuleTimeout:              5 * time.Second,
			CancellationCheckRows:    500,
			MaxSnapshotRows:          200000,
		},
		Storage: StorageConfig{
			CatalogDSN: "waredge_catalog.db",
			RulesDSN:   "waredge_rules.db",
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
	}
}

// Load reads YAML configuration from path (if non-empty and the file
// exists), starting from Default(), then applies WAREDGE_* environment
// variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WAREDGE_RESOLVER_MIN_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Resolver.MinScore = f
		}
	}
	if v := os.Getenv("WAREDGE_RESOLVER_MIN_MATCHED_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Resolver.MinMatchedRows = n
		}
	}
	if v := os.Getenv("WAREDGE_MAX_CONCURRENT_EVALUATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency.MaxConcurrentEvaluations = n
		}
	}
	if v := os.Getenv("WAREDGE_TOTAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Concurrency.TotalTimeout = d
		}
	}
	if v := os.Getenv("WAREDGE_RULE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Concurrency.RuleTimeout = d
		}
	}
	if v := os.Getenv("WAREDGE_MAX_SNAPSHOT_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency.MaxSnapshotRows = n
		}
	}
	if v := os.Getenv("WAREDGE_CATALOG_DSN"); v != "" {
		c.Storage.CatalogDSN = v
	}
	if v := os.Getenv("WAREDGE_RULES_DSN"); v != "" {
		c.Storage.RulesDSN = v
	}
	if v := os.Getenv("WAREDGE_RULES_DIR"); v != "" {
		c.Storage.RulesDir = v
	}
	if v := os.Getenv("WAREDGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}
