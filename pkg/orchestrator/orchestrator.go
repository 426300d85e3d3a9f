// Package orchestrator coordinates the encoding passes.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ideamans/go-l10n"
	"golang.org/x/sync/errgroup"

	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/pipeline"
	"github.com/user/twopass/pkg/ports"
)

// Config contains all configuration for one encode.
type Config struct {
	// Input/Output
	OutputPath string

	// Video parameters
	Width  int
	Height int
	FPS    float64

	// TwoPass runs a statistics pass before the output pass. Single pass
	// encodes directly.
	TwoPass bool

	// StatsInput is a previously gathered stats buffer. When set, the
	// first pass is skipped and the output pass runs as a last pass over
	// this buffer (TwoPass is implied).
	StatsInput []byte

	// Encoding
	LookaheadDepth   int
	TargetBitrate    int // kbps, 0 = quality-driven
	Quality          int // 0-63, lower is better
	KeyframeInterval int
	StrictStats      bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		FPS:              30.0,
		TwoPass:          true,
		LookaheadDepth:   8,
		Quality:          32,
		KeyframeInterval: 120,
	}
}

// RunResult summarizes one completed encode.
type RunResult struct {
	FrameCount    int
	Keyframes     int
	StatsBytes    int
	StatsRecords  int
	VideoDuration int // ms
	VideoFileSize int64
	Width         int
	Height        int
}

// Orchestrator coordinates the execution of the encoding passes.
type Orchestrator struct {
	analyzeStage pipeline.Stage[pipeline.AnalyzeInput, pipeline.AnalyzeResult]
	encodeStage  pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	fs           ports.FileSystem
	sink         ports.DebugSink
	logger       ports.Logger
}

// New creates a new Orchestrator.
func New(
	analyzeStage pipeline.Stage[pipeline.AnalyzeInput, pipeline.AnalyzeResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		analyzeStage: analyzeStage,
		encodeStage:  encodeStage,
		fs:           fs,
		sink:         sink,
		logger:       logger,
	}
}

// Run executes the encode: an optional first pass, then the output pass,
// then the output file write.
func (o *Orchestrator) Run(ctx context.Context, config Config, frames []*codec.RawFrame) (RunResult, error) {
	stats := config.StatsInput
	records := 0

	// 1. First pass (unless stats were supplied or single pass requested)
	if config.TwoPass && len(stats) == 0 {
		o.logger.Info(l10n.T("Starting first pass"))
		analyzed, err := o.analyzeStage.Execute(ctx, o.buildAnalyzeInput(config, frames))
		if err != nil {
			o.logger.Error(l10n.F("First pass failed: %s", err))
			return RunResult{}, fmt.Errorf("analyze stage: %w", err)
		}
		stats = analyzed.Stats
		records = analyzed.Records

		if o.sink.Enabled() {
			o.sink.SaveStats(stats)
		}
	}

	// 2. Output pass
	pass := codec.PassSingle
	if len(stats) > 0 {
		pass = codec.PassLast
		o.logger.Info(l10n.T("Starting last pass"))
	} else {
		o.logger.Info(l10n.T("Starting single pass encode"))
	}
	encoded, err := o.encodeStage.Execute(ctx, o.buildEncodeInput(config, frames, pass, stats))
	if err != nil {
		o.logger.Error(l10n.F("Last pass failed: %s", err))
		return RunResult{}, fmt.Errorf("encode stage: %w", err)
	}

	// Save packet debug output
	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(packetLog(encoded.Packets), "", "  "); err == nil {
			o.sink.SavePacketLog(pass.String(), data)
		}
	}

	// 3. Write output file
	if config.OutputPath != "" {
		if err := o.fs.WriteFile(config.OutputPath, encoded.VideoData); err != nil {
			return RunResult{}, fmt.Errorf("write output: %w", err)
		}
		o.logger.Info(l10n.F("Output saved to %s", config.OutputPath))
	}

	o.logger.Info(l10n.T("Encode completed successfully"))

	result := RunResult{
		FrameCount:    len(frames),
		Keyframes:     encoded.Keyframes,
		StatsBytes:    len(stats),
		StatsRecords:  records,
		VideoDuration: encoded.DurationMs,
		VideoFileSize: int64(len(encoded.VideoData)),
		Width:         config.Width,
		Height:        config.Height,
	}

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(result, "", "  "); err == nil {
			o.sink.SaveRunJSON(data)
		}
	}

	return result, nil
}

// Job is one independent encode for RunBatch.
type Job struct {
	Config Config
	Frames []*codec.RawFrame
}

// RunBatch executes independent encode jobs concurrently. Each job gets
// its own sessions and pass state, so jobs share nothing; the first error
// cancels the remaining jobs.
func (o *Orchestrator) RunBatch(ctx context.Context, jobs []Job) ([]RunResult, error) {
	results := make([]RunResult, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			result, err := o.Run(ctx, job.Config, job.Frames)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) buildAnalyzeInput(config Config, frames []*codec.RawFrame) pipeline.AnalyzeInput {
	return pipeline.AnalyzeInput{
		Frames:           frames,
		Width:            config.Width,
		Height:           config.Height,
		FPS:              config.FPS,
		LookaheadDepth:   config.LookaheadDepth,
		KeyframeInterval: config.KeyframeInterval,
	}
}

func (o *Orchestrator) buildEncodeInput(config Config, frames []*codec.RawFrame, pass codec.Pass, stats []byte) pipeline.EncodeInput {
	return pipeline.EncodeInput{
		Frames:           frames,
		Width:            config.Width,
		Height:           config.Height,
		FPS:              config.FPS,
		Pass:             pass,
		LookaheadDepth:   config.LookaheadDepth,
		TargetBitrate:    config.TargetBitrate,
		Quality:          config.Quality,
		KeyframeInterval: config.KeyframeInterval,
		Stats:            stats,
		StrictStats:      config.StrictStats,
	}
}

// packetEntry is the per-packet debug record saved by SavePacketLog.
type packetEntry struct {
	Index       int    `json:"index"`
	Kind        string `json:"kind"`
	Bytes       int    `json:"bytes"`
	Keyframe    bool   `json:"keyframe,omitempty"`
	TimestampMs int    `json:"timestampMs"`
}

func packetLog(packets []codec.Packet) []packetEntry {
	entries := make([]packetEntry, 0, len(packets))
	for i, p := range packets {
		entries = append(entries, packetEntry{
			Index:       i,
			Kind:        p.Kind.String(),
			Bytes:       len(p.Payload),
			Keyframe:    p.Keyframe,
			TimestampMs: p.TimestampMs,
		})
	}
	return entries
}
