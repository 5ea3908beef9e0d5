// Package config holds the mailflow configuration model. The root Config
// aggregates per-concern sections; each section applies its own defaults so a
// zero value is always usable. Configuration is loaded from YAML with
// MAILFLOW_* environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the pipeline.
type Config struct {
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Queue      QueueConfig      `yaml:"queue"`
	Store      StoreConfig      `yaml:"store"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// QueueConfig configures the workflow coordinator.
type QueueConfig struct {
	// BatchSize is the default maximum items per ProcessBatch call.
	BatchSize int `yaml:"batch_size"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	// Path is the SQLite database file. Empty selects the in-memory store.
	Path string `yaml:"path"`
}

// LoggingConfig configures the zap logger built in cmd.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Default returns a fully populated configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file, fills defaults for anything unset, and
// applies environment overrides. A missing file is not an error: defaults
// plus environment apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Vocabulary.applyDefaults()
	c.Templates.applyDefaults()
	if c.Queue.BatchSize <= 0 {
		c.Queue.BatchSize = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// applyEnvOverrides lets deployment environments override file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MAILFLOW_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("MAILFLOW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("MAILFLOW_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.JSON = b
		}
	}
	if v := os.Getenv("MAILFLOW_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Queue.BatchSize = n
		}
	}
}
