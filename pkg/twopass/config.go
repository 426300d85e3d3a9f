// Package twopass provides a high-level API for two-pass block video encoding.
package twopass

import (
	"github.com/user/twopass/pkg/orchestrator"
)

// QualityPreset represents an encoding quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// QualitySettings contains quality parameters for encoding.
type QualitySettings struct {
	Quality       int // Base quantizer (0-63, lower is better)
	TargetBitrate int // Target bitrate in kbps (0 = quality only)
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{
			Quality:       44,
			TargetBitrate: 400,
		}
	case QualityHigh:
		return QualitySettings{
			Quality:       20,
			TargetBitrate: 2000,
		}
	default: // medium
		return QualitySettings{
			Quality:       32,
			TargetBitrate: 800,
		}
	}
}

// Config represents the configuration for two-pass video generation.
type Config struct {
	// Video size
	Width  int // Frame width in pixels (must be even)
	Height int // Frame height in pixels (must be even)

	// Timing
	FPS float64 // Frames per second

	// Encoding
	Quality          int  // Base quantizer (0-63, lower is better)
	TargetBitrate    int  // Target bitrate in kbps (0 = quality only)
	LookaheadDepth   int  // Frames buffered before emission
	KeyframeInterval int  // Maximum frames between keyframes
	TwoPass          bool // Run an analysis pass before the output pass
	StrictStats      bool // Reject malformed stats instead of degrading
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with two-pass defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: twoPassDefaults(),
	}
}

// NewSinglePassConfigBuilder creates a new ConfigBuilder tuned for a
// single-pass encode with no analysis pass.
func NewSinglePassConfigBuilder() *ConfigBuilder {
	cfg := twoPassDefaults()
	cfg.TwoPass = false
	cfg.TargetBitrate = 0
	return &ConfigBuilder{config: cfg}
}

func twoPassDefaults() Config {
	return Config{
		Width:  640,
		Height: 360,
		FPS:    30.0,

		// Encoding (medium quality preset)
		Quality:          32,
		TargetBitrate:    800,
		LookaheadDepth:   8,
		KeyframeInterval: 120,
		TwoPass:          true,
		StrictStats:      false,
	}
}

// Build returns the final Config, applying validation and constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	// Dimensions must be even for I420 subsampling
	if cfg.Width%2 != 0 {
		cfg.Width++
	}
	if cfg.Height%2 != 0 {
		cfg.Height++
	}

	if cfg.FPS <= 0 {
		cfg.FPS = 30.0
	}
	if cfg.LookaheadDepth < 0 {
		cfg.LookaheadDepth = 0
	}
	if cfg.Quality < 0 {
		cfg.Quality = 0
	}
	if cfg.Quality > 63 {
		cfg.Quality = 63
	}

	return cfg
}

// WithSize sets the frame dimensions.
func (b *ConfigBuilder) WithSize(width, height int) *ConfigBuilder {
	b.config.Width = width
	b.config.Height = height
	return b
}

// WithFPS sets the frame rate.
func (b *ConfigBuilder) WithFPS(fps float64) *ConfigBuilder {
	b.config.FPS = fps
	return b
}

// WithQuality sets the base quantizer (0-63, lower is better).
func (b *ConfigBuilder) WithQuality(quality int) *ConfigBuilder {
	b.config.Quality = quality
	return b
}

// WithTargetBitrate sets the target bitrate in kbps.
// Use 0 for quality-only encoding.
func (b *ConfigBuilder) WithTargetBitrate(kbps int) *ConfigBuilder {
	b.config.TargetBitrate = kbps
	return b
}

// WithLookaheadDepth sets how many frames the encoder buffers before
// the first packet is emitted.
func (b *ConfigBuilder) WithLookaheadDepth(depth int) *ConfigBuilder {
	b.config.LookaheadDepth = depth
	return b
}

// WithKeyframeInterval sets the maximum frames between keyframes.
func (b *ConfigBuilder) WithKeyframeInterval(interval int) *ConfigBuilder {
	b.config.KeyframeInterval = interval
	return b
}

// WithTwoPass enables or disables the analysis pass.
func (b *ConfigBuilder) WithTwoPass(enabled bool) *ConfigBuilder {
	b.config.TwoPass = enabled
	return b
}

// WithStrictStats makes malformed stats input a hard error instead of
// falling back to single-pass behavior.
func (b *ConfigBuilder) WithStrictStats(strict bool) *ConfigBuilder {
	b.config.StrictStats = strict
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	settings := GetQualitySettings(preset)
	b.config.Quality = settings.Quality
	b.config.TargetBitrate = settings.TargetBitrate
	return b
}

// toOrchestrator converts the facade config to the orchestrator's.
func (c Config) toOrchestrator(outputPath string) orchestrator.Config {
	return orchestrator.Config{
		OutputPath:       outputPath,
		Width:            c.Width,
		Height:           c.Height,
		FPS:              c.FPS,
		TwoPass:          c.TwoPass,
		LookaheadDepth:   c.LookaheadDepth,
		TargetBitrate:    c.TargetBitrate,
		Quality:          c.Quality,
		KeyframeInterval: c.KeyframeInterval,
		StrictStats:      c.StrictStats,
	}
}
