package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTileSize       = 10
	DefaultGridSize       = 60
	DefaultStepsPerSecond = 60
	MinStepsPerSecond     = 1
	MaxStepsPerSecond     = 1000
	DefaultJoinTimeoutMs  = 2000
	DefaultAlgorithm      = "dfs"
	DefaultNeighbours     = "cross"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s=%d %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidConfig }

// Size is a positive width/height pair.
type Size struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// GraphConfig is the immutable snapshot a session builds its grid and cadence from.
type GraphConfig struct {
	TileSize       Size `yaml:"tile_size"`
	GridSize       Size `yaml:"grid_size"`
	StepsPerSecond int  `yaml:"steps_per_second"`
}

type SearchConfig struct {
	Algorithm  string `yaml:"algorithm"`
	Neighbours string `yaml:"neighbours"`
	Randomise  bool   `yaml:"randomise"`
	Seed       int64  `yaml:"seed"`
}

type SessionConfig struct {
	JoinTimeoutMs int `yaml:"join_timeout_ms"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Config struct {
	Graph   GraphConfig   `yaml:"graph"`
	Search  SearchConfig  `yaml:"search"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
	Theme   string        `yaml:"theme"`
}

func DefaultGraphConfig() GraphConfig {
	return GraphConfig{
		TileSize:       Size{X: DefaultTileSize, Y: DefaultTileSize},
		GridSize:       Size{X: DefaultGridSize, Y: DefaultGridSize},
		StepsPerSecond: DefaultStepsPerSecond,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Graph: DefaultGraphConfig(),
		Search: SearchConfig{
			Algorithm:  DefaultAlgorithm,
			Neighbours: DefaultNeighbours,
			Randomise:  true,
		},
		Session: SessionConfig{JoinTimeoutMs: DefaultJoinTimeoutMs},
		Log:     LogConfig{Level: "info", Format: "text"},
		Theme:   "classic",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks dimensions and rate. It never mutates g.
func (g GraphConfig) Validate() error {
	checks := []struct {
		field string
		value int
	}{
		{"tile_size.x", g.TileSize.X},
		{"tile_size.y", g.TileSize.Y},
		{"grid_size.x", g.GridSize.X},
		{"grid_size.y", g.GridSize.Y},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return &ValidationError{Field: c.field, Value: c.value, Reason: "must be positive"}
		}
	}
	return ValidateRate(g.StepsPerSecond)
}

// ValidateRate checks that steps per second lies in [MinStepsPerSecond, MaxStepsPerSecond].
func ValidateRate(stepsPerSecond int) error {
	if stepsPerSecond < MinStepsPerSecond || stepsPerSecond > MaxStepsPerSecond {
		return &ValidationError{
			Field:  "steps_per_second",
			Value:  stepsPerSecond,
			Reason: fmt.Sprintf("must be in [%d,%d]", MinStepsPerSecond, MaxStepsPerSecond),
		}
	}
	return nil
}

// WithRate returns a copy of g with a new rate.
func (g GraphConfig) WithRate(stepsPerSecond int) GraphConfig {
	g.StepsPerSecond = stepsPerSecond
	return g
}

func (c *Config) Validate() error {
	if err := c.Graph.Validate(); err != nil {
		return err
	}
	if c.Session.JoinTimeoutMs < 0 {
		return &ValidationError{Field: "session.join_timeout_ms", Value: c.Session.JoinTimeoutMs, Reason: "must not be negative"}
	}
	return nil
}

// JoinTimeout is the bound on waiting for a cancelled worker. Zero waits forever.
func (c *Config) JoinTimeout() time.Duration {
	return time.Duration(c.Session.JoinTimeoutMs) * time.Millisecond
}
