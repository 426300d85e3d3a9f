package twopass

import (
	"context"

	"github.com/user/twopass/pkg/adapters/blockencoder"
	"github.com/user/twopass/pkg/adapters/logger"
	"github.com/user/twopass/pkg/adapters/mp4sink"
	"github.com/user/twopass/pkg/adapters/nullsink"
	"github.com/user/twopass/pkg/adapters/osfilesystem"
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/orchestrator"
	"github.com/user/twopass/pkg/ports"
	"github.com/user/twopass/pkg/stages/analyze"
	"github.com/user/twopass/pkg/stages/encodepass"
)

// Result summarizes a completed encode.
type Result struct {
	FrameCount    int
	Keyframes     int
	VideoDuration int // ms
	VideoFileSize int64
}

// Encode runs the configured passes over frames and writes an MP4 file
// to outputPath. Frames must all match the configured dimensions.
func Encode(ctx context.Context, frames []*codec.RawFrame, outputPath string, cfg Config) (Result, error) {
	return EncodeWithLogger(ctx, frames, outputPath, cfg, logger.NewNoop())
}

// EncodeWithLogger is Encode with a caller-supplied logger.
func EncodeWithLogger(ctx context.Context, frames []*codec.RawFrame, outputPath string, cfg Config, log ports.Logger) (Result, error) {
	factory := func() ports.EncodeEngine { return blockencoder.New() }

	orch := orchestrator.New(
		analyze.NewStage(factory, log),
		encodepass.NewStage(factory, mp4sink.New(), log),
		osfilesystem.New(),
		nullsink.New(),
		log,
	)

	run, err := orch.Run(ctx, cfg.toOrchestrator(outputPath), frames)
	if err != nil {
		return Result{}, err
	}
	return Result{
		FrameCount:    run.FrameCount,
		Keyframes:     run.Keyframes,
		VideoDuration: run.VideoDuration,
		VideoFileSize: run.VideoFileSize,
	}, nil
}
