package twopass

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/twopass/pkg/adapters/patternsource"
	"github.com/user/twopass/pkg/codec"
)

func patternFrames(t *testing.T, count int) []*codec.RawFrame {
	t.Helper()
	src, err := patternsource.New(patternsource.Options{
		Width:      64,
		Height:     64,
		FPS:        30.0,
		FrameCount: count,
		SceneCutAt: count / 2,
	})
	if err != nil {
		t.Fatalf("patternsource.New failed: %v", err)
	}
	return src.Frames()
}

func TestEncode_TwoPassEndToEnd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	cfg := NewConfigBuilder().
		WithSize(64, 64).
		WithLookaheadDepth(2).
		WithQualityPreset(QualityMedium).
		Build()

	result, err := Encode(context.Background(), patternFrames(t, 20), out, cfg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if result.FrameCount != 20 {
		t.Errorf("expected 20 frames, got %d", result.FrameCount)
	}
	// The first frame plus the mid-sequence scene cut.
	if result.Keyframes < 2 {
		t.Errorf("expected at least 2 keyframes, got %d", result.Keyframes)
	}
	if result.VideoDuration <= 0 {
		t.Errorf("expected positive duration, got %d", result.VideoDuration)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if int64(len(data)) != result.VideoFileSize {
		t.Errorf("file is %d bytes, result says %d", len(data), result.VideoFileSize)
	}

	parsed, err := mp4.DecodeFile(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid MP4: %v", err)
	}
	if !parsed.IsFragmented() {
		t.Error("expected fragmented MP4 output")
	}
}

func TestEncode_SinglePassEndToEnd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	cfg := NewSinglePassConfigBuilder().
		WithSize(64, 64).
		WithLookaheadDepth(0).
		Build()

	result, err := Encode(context.Background(), patternFrames(t, 8), out, cfg)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if result.FrameCount != 8 {
		t.Errorf("expected 8 frames, got %d", result.FrameCount)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestConfigBuilder_Defaults(t *testing.T) {
	cfg := NewConfigBuilder().Build()
	if !cfg.TwoPass {
		t.Error("expected two-pass default")
	}
	if cfg.Quality != 32 || cfg.TargetBitrate != 800 {
		t.Errorf("unexpected medium defaults: quality %d, bitrate %d", cfg.Quality, cfg.TargetBitrate)
	}

	single := NewSinglePassConfigBuilder().Build()
	if single.TwoPass {
		t.Error("expected single-pass config")
	}
	if single.TargetBitrate != 0 {
		t.Errorf("expected quality-only single pass, got bitrate %d", single.TargetBitrate)
	}
}

func TestConfigBuilder_Constraints(t *testing.T) {
	cfg := NewConfigBuilder().
		WithSize(63, 37).
		WithFPS(-5).
		WithQuality(99).
		WithLookaheadDepth(-3).
		Build()

	if cfg.Width != 64 || cfg.Height != 38 {
		t.Errorf("expected even dimensions, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS != 30.0 {
		t.Errorf("expected fps fallback, got %v", cfg.FPS)
	}
	if cfg.Quality != 63 {
		t.Errorf("expected quality clamp to 63, got %d", cfg.Quality)
	}
	if cfg.LookaheadDepth != 0 {
		t.Errorf("expected lookahead clamp to 0, got %d", cfg.LookaheadDepth)
	}
}

func TestGetQualitySettings(t *testing.T) {
	low := GetQualitySettings(QualityLow)
	medium := GetQualitySettings(QualityMedium)
	high := GetQualitySettings(QualityHigh)

	if !(low.Quality > medium.Quality && medium.Quality > high.Quality) {
		t.Errorf("expected quantizers to decrease with preset quality: %d, %d, %d",
			low.Quality, medium.Quality, high.Quality)
	}
	if !(low.TargetBitrate < medium.TargetBitrate && medium.TargetBitrate < high.TargetBitrate) {
		t.Errorf("expected bitrates to increase with preset quality")
	}

	// Unknown presets fall back to medium.
	if GetQualitySettings("weird") != medium {
		t.Error("expected medium fallback for unknown preset")
	}
}
