// Package analyze implements the first-pass analysis stage.
package analyze

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/pipeline"
	"github.com/user/twopass/pkg/ports"
	"github.com/user/twopass/pkg/session"
)

// Stage runs a first-pass session over a frame sequence and collects the
// statistics buffer for the last pass.
type Stage struct {
	newEngine ports.EngineFactory
	logger    ports.Logger
}

// NewStage creates a new analyze stage.
func NewStage(newEngine ports.EngineFactory, logger ports.Logger) *Stage {
	return &Stage{
		newEngine: newEngine,
		logger:    logger,
	}
}

// Execute encodes all frames in a first-pass session, draining stats
// packets between submissions and flushing to completion, and returns the
// concatenated stats buffer.
func (s *Stage) Execute(ctx context.Context, input pipeline.AnalyzeInput) (pipeline.AnalyzeResult, error) {
	result := pipeline.AnalyzeResult{}

	if len(input.Frames) == 0 {
		return result, fmt.Errorf("no frames to analyze")
	}

	s.logger.Info(l10n.F("Analyzing %d frames", len(input.Frames)))

	sess, err := session.New(s.newEngine(), session.Config{
		Width:            input.Width,
		Height:           input.Height,
		FPS:              input.FPS,
		Pass:             codec.PassFirst,
		LookaheadDepth:   input.LookaheadDepth,
		KeyframeInterval: input.KeyframeInterval,
	}, s.logger)
	if err != nil {
		return result, fmt.Errorf("create first-pass session: %w", err)
	}
	defer sess.Close()

	var stats bytes.Buffer
	records := 0

	drain := func() error {
		packets, err := sess.RetrievePackets()
		if err != nil {
			return err
		}
		for _, p := range packets {
			if p.Kind != codec.PacketStats {
				return fmt.Errorf("unexpected %s packet in first pass", p.Kind)
			}
			stats.Write(p.Payload)
			records++
		}
		return nil
	}

	for _, frame := range input.Frames {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := sess.Submit(frame); err != nil {
			return result, fmt.Errorf("analyze frame at %dms: %w", frame.TimestampMs, err)
		}
		if err := drain(); err != nil {
			return result, err
		}
	}

	if err := sess.Submit(nil); err != nil {
		return result, fmt.Errorf("signal end of stream: %w", err)
	}
	for {
		produced, err := sess.FlushStep()
		if err != nil {
			return result, fmt.Errorf("flush first pass: %w", err)
		}
		if !produced {
			break
		}
		if err := drain(); err != nil {
			return result, err
		}
	}

	if records != len(input.Frames) {
		return result, fmt.Errorf("first pass produced %d records for %d frames", records, len(input.Frames))
	}

	s.logger.Info(l10n.F("First pass produced %d records (%d bytes)", records, stats.Len()))

	result.Stats = stats.Bytes()
	result.Records = records
	return result, nil
}
