// Package config provides configuration loading and management.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/orchestrator"
	"github.com/user/twopass/pkg/ports"
)

// Config represents the full configuration for an encode.
type Config struct {
	// Input/Output
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`

	// Video parameters
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`

	// Pass selection: single, first, or last.
	Pass string `yaml:"pass"`

	// StatsPath is where the first pass writes its stats buffer and
	// where the last pass reads it from. Required when pass is last.
	StatsPath string `yaml:"stats"`

	// Encoding
	LookaheadDepth   int  `yaml:"lookahead_depth"`
	TargetBitrate    int  `yaml:"target_bitrate"` // kbps, 0 = quality only
	Quality          int  `yaml:"quality"`
	KeyframeInterval int  `yaml:"keyframe_interval"`
	StrictStats      bool `yaml:"strict_stats"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		FPS:              30.0,
		Pass:             "single",
		LookaheadDepth:   8,
		Quality:          32,
		KeyframeInterval: 120,
		DebugDir:         "./debug",
	}
}

// Load reads a yaml config file and overlays it on the defaults.
func Load(fs ports.FileSystem, path string) (Config, error) {
	cfg := Defaults()

	data, err := fs.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for combinations that can never
// encode. It fails fast, before any session is constructed.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: dimensions %dx%d are invalid", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("config: dimensions %dx%d must be even for I420", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("config: fps %v is invalid", c.FPS)
	}

	pass, err := codec.ParsePass(c.Pass)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if pass == codec.PassLast && c.StatsPath == "" {
		return fmt.Errorf("config: pass=last requires a stats file")
	}
	if pass == codec.PassFirst && c.StatsPath == "" {
		return fmt.Errorf("config: pass=first requires a stats file to write")
	}

	if c.LookaheadDepth < 0 {
		return fmt.Errorf("config: lookahead_depth %d is invalid", c.LookaheadDepth)
	}
	if c.Quality < 0 || c.Quality > 63 {
		return fmt.Errorf("config: quality %d is out of range 0-63", c.Quality)
	}
	if c.TargetBitrate < 0 {
		return fmt.Errorf("config: target_bitrate %d is invalid", c.TargetBitrate)
	}
	return nil
}

// ParsedPass returns the pass enum for a validated config.
func (c *Config) ParsedPass() codec.Pass {
	pass, _ := codec.ParsePass(c.Pass)
	return pass
}

// ToOrchestrator converts to the orchestrator's config for a one-shot
// two-pass or single-pass run.
func (c *Config) ToOrchestrator(twoPass bool, statsInput []byte) orchestrator.Config {
	return orchestrator.Config{
		OutputPath:       c.OutputPath,
		Width:            c.Width,
		Height:           c.Height,
		FPS:              c.FPS,
		TwoPass:          twoPass,
		StatsInput:       statsInput,
		LookaheadDepth:   c.LookaheadDepth,
		TargetBitrate:    c.TargetBitrate,
		Quality:          c.Quality,
		KeyframeInterval: c.KeyframeInterval,
		StrictStats:      c.StrictStats,
	}
}
