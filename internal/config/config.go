// Package config holds the settings of a balancing session and loads them
// from YAML or HCL files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/balance"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor HCL.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the session configuration. Zero-valued fields in a file keep
// their defaults.
type Config struct {
	TimeLimit      string  `yaml:"time_limit" hcl:"time_limit,optional" validate:"required"`
	ProgressEvery  int     `yaml:"progress_every" hcl:"progress_every,optional" validate:"gte=1"`
	ToleranceRatio float64 `yaml:"tolerance_ratio" hcl:"tolerance_ratio,optional" validate:"gt=0,lt=1"`
	DatasetDir     string  `yaml:"dataset_dir" hcl:"dataset_dir,optional"`
	OutputDir      string  `yaml:"output_dir" hcl:"output_dir,optional" validate:"required"`
	LogLevel       string  `yaml:"log_level" hcl:"log_level,optional" validate:"oneof=debug info warn error"`
	LogFormat      string  `yaml:"log_format" hcl:"log_format,optional" validate:"oneof=text json"`
	Transcript     string  `yaml:"transcript" hcl:"transcript,optional"`
	PlanOut        string  `yaml:"plan_out" hcl:"plan_out,optional"`
	MetricsFile    string  `yaml:"metrics_file" hcl:"metrics_file,optional"`
	Color          string  `yaml:"color" hcl:"color,optional" validate:"oneof=auto always never"`

	timeLimit time.Duration
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TimeLimit:      balance.DefaultTimeLimit.String(),
		ProgressEvery:  balance.DefaultProgressEvery,
		ToleranceRatio: balance.DefaultToleranceRatio,
		DatasetDir:     filepath.Join("..", "Dataset"),
		OutputDir:      "Output",
		LogLevel:       "info",
		LogFormat:      "text",
		Color:          "auto",
		timeLimit:      balance.DefaultTimeLimit,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Files ending in .yaml or .yml are YAML; .hcl and .json are decoded as HCL.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	case ".hcl", ".json":
		if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Normalize lowercases enumerated fields.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.Color = strings.ToLower(strings.TrimSpace(c.Color))
}

// Validate normalizes c, checks every field and parses the time limit.
func (c *Config) Validate() error {
	c.Normalize()
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return err
	}
	d, err := time.ParseDuration(c.TimeLimit)
	if err != nil {
		return fmt.Errorf("time_limit: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("time_limit: must be positive, got %s", d)
	}
	c.timeLimit = d
	return nil
}

// Limit returns the parsed time limit. It is valid after Validate.
func (c Config) Limit() time.Duration {
	return c.timeLimit
}

// SetLimit overrides the time limit.
func (c *Config) SetLimit(d time.Duration) {
	c.timeLimit = d
	c.TimeLimit = d.String()
}
