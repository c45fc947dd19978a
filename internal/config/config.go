// Package config loads the YAML run configuration shared by every sitbench
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gzhole/sitbench/internal/corpus"
	"github.com/gzhole/sitbench/internal/plan"
	"github.com/gzhole/sitbench/internal/sit"
)

const (
	DefaultConfigDir  = ".sitbench"
	DefaultConfigFile = "config.yaml"
	DefaultLogFile    = "run.jsonl"
	DefaultPacksDir   = "packs"
	DefaultOutputDir  = "out"

	DefaultSeed        = 42
	DefaultPerSITCount = 100
	DefaultSampleCap   = 10
)

// Config is the on-disk run configuration. The planning policy fields sit at
// the top level of the file.
type Config struct {
	Seed          uint64         `yaml:"seed"`
	PerSITCount   int            `yaml:"per_sit_count"`
	Targets       map[string]int `yaml:"targets,omitempty"`
	RenderFormats []string       `yaml:"render_formats"`
	Workers       int            `yaml:"workers"`
	OnError       corpus.OnError `yaml:"on_error"`
	SampleCap     int            `yaml:"sample_cap"`
	PacksDir      string         `yaml:"packs_dir"`
	OutputDir     string         `yaml:"output_dir"`
	LogPath       string         `yaml:"log_path"`
	// IgnorePlaceholders drops false-positive matches on masked or dummy
	// values when scoring.
	IgnorePlaceholders bool `yaml:"ignore_placeholders"`

	plan.Policy `yaml:",inline"`
}

// Dir returns ~/.sitbench.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir), nil
}

// DefaultPath returns ~/.sitbench/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{Policy: plan.DefaultPolicy()}
	cfg.fillDefaults()
	return cfg
}

// Load reads path. A missing file yields Default(); fields left out of the
// file take their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &sit.ConfigError{Key: path, Reason: "invalid YAML", Err: err}
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) fillDefaults() {
	def := plan.DefaultPolicy()
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.PerSITCount == 0 {
		c.PerSITCount = DefaultPerSITCount
	}
	if len(c.RenderFormats) == 0 {
		c.RenderFormats = []string{"txt"}
	}
	if c.OnError == "" {
		c.OnError = corpus.OnErrorSkip
	}
	if c.SampleCap == 0 {
		c.SampleCap = DefaultSampleCap
	}
	if c.Spread == "" {
		c.Spread = def.Spread
	}
	if c.PerDoc == 0 {
		c.PerDoc = def.PerDoc
	}
	if len(c.Instances) == 0 {
		c.Instances = def.Instances
	}
	if len(c.SITsPerDoc) == 0 {
		c.SITsPerDoc = def.SITsPerDoc
	}
	if len(c.Formats) == 0 {
		c.Formats = def.Formats
	}
	if c.Size == (plan.SizeDistribution{}) {
		c.Size = def.Size
	}
	if c.TPRatio == 0 {
		c.TPRatio = def.TPRatio
	}
	if c.Confidence.HighMinInstances == 0 {
		c.Confidence = def.Confidence
	}

	dir, err := Dir()
	if err != nil {
		dir = DefaultConfigDir
	}
	if c.PacksDir == "" {
		c.PacksDir = filepath.Join(dir, DefaultPacksDir)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(dir, DefaultOutputDir)
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(dir, DefaultLogFile)
	}
}

// Validate checks the fields the planner does not. Policy fields are checked
// when the plan is built.
func (c *Config) Validate() error {
	if c.PerSITCount < 0 {
		return &sit.ConfigError{Key: "per_sit_count", Reason: fmt.Sprintf("must be >= 0, got %d", c.PerSITCount)}
	}
	for id, n := range c.Targets {
		if n < 0 {
			return &sit.ConfigError{Key: "targets." + id, Reason: fmt.Sprintf("must be >= 0, got %d", n)}
		}
	}
	if c.Workers < 0 {
		return &sit.ConfigError{Key: "workers", Reason: fmt.Sprintf("must be >= 0, got %d", c.Workers)}
	}
	if c.SampleCap < 0 {
		return &sit.ConfigError{Key: "sample_cap", Reason: fmt.Sprintf("must be >= 0, got %d", c.SampleCap)}
	}
	switch c.OnError {
	case corpus.OnErrorSkip, corpus.OnErrorAbort:
	default:
		return &sit.ConfigError{Key: "on_error", Reason: fmt.Sprintf("unknown mode %q (want skip or abort)", c.OnError)}
	}
	return nil
}

// ResolveTargets expands per_sit_count over every registered SIT and applies the
// per-SIT overrides. An override naming an unknown SIT is a ConfigError.
func (c *Config) ResolveTargets(reg *sit.Registry) (map[string]int, error) {
	out := make(map[string]int, reg.Len())
	for _, id := range reg.IDs() {
		out[id] = c.PerSITCount
	}

	ids := make([]string, 0, len(c.Targets))
	for id := range c.Targets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		if !reg.Has(id) {
			errs = append(errs, &sit.ConfigError{Key: "targets." + id, Reason: "unknown SIT"})
			continue
		}
		out[id] = c.Targets[id]
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Options returns the runner options; the run log is attached by the caller.
func (c *Config) Options() corpus.Options {
	return corpus.Options{Workers: c.Workers, OnError: c.OnError}
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
