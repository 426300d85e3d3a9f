// Package encodepass implements the output pass stage: a single- or
// last-pass session over the frame sequence, muxed into an MP4.
package encodepass

import (
	"context"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/user/twopass/pkg/adapters/mp4sink"
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/pipeline"
	"github.com/user/twopass/pkg/ports"
	"github.com/user/twopass/pkg/session"
)

// Stage encodes frames into frame packets and muxes them.
type Stage struct {
	newEngine ports.EngineFactory
	sink      *mp4sink.Sink
	logger    ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(newEngine ports.EngineFactory, sink *mp4sink.Sink, logger ports.Logger) *Stage {
	return &Stage{
		newEngine: newEngine,
		sink:      sink,
		logger:    logger,
	}
}

// Execute runs the output pass over all frames: submit, drain, end of
// stream, then the flush loop until the session closes. Every submitted
// frame comes back as exactly one frame packet.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}

	if len(input.Frames) == 0 {
		return result, fmt.Errorf("no frames to encode")
	}
	if input.Pass == codec.PassFirst {
		return result, fmt.Errorf("encode stage requires a single or last pass, got %s", input.Pass)
	}

	if input.TargetBitrate > 0 {
		s.logger.Info(l10n.F("Encoding with target bitrate %d kbps", input.TargetBitrate))
	} else {
		s.logger.Info(l10n.F("Encoding with quality %d", input.Quality))
	}
	s.logger.Info(l10n.F("Encoding %d frames at %.1f fps", len(input.Frames), input.FPS))

	sess, err := session.New(s.newEngine(), session.Config{
		Width:            input.Width,
		Height:           input.Height,
		FPS:              input.FPS,
		Pass:             input.Pass,
		LookaheadDepth:   input.LookaheadDepth,
		TargetBitrate:    input.TargetBitrate,
		Quality:          input.Quality,
		KeyframeInterval: input.KeyframeInterval,
		StatsInput:       input.Stats,
		StrictStats:      input.StrictStats,
	}, s.logger)
	if err != nil {
		return result, fmt.Errorf("create %s-pass session: %w", input.Pass, err)
	}
	defer sess.Close()

	var packets []codec.Packet

	drain := func() error {
		drained, err := sess.RetrievePackets()
		if err != nil {
			return err
		}
		packets = append(packets, drained...)
		return nil
	}

	for _, frame := range input.Frames {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := sess.Submit(frame); err != nil {
			return result, fmt.Errorf("encode frame at %dms: %w", frame.TimestampMs, err)
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
			return result, fmt.Errorf("flush: %w", err)
		}
		if !produced {
			break
		}
		if err := drain(); err != nil {
			return result, err
		}
	}

	if len(packets) != len(input.Frames) {
		return result, fmt.Errorf("encoded %d packets for %d frames", len(packets), len(input.Frames))
	}

	totalBytes := 0
	for _, p := range packets {
		totalBytes += len(p.Payload)
		if p.Keyframe {
			result.Keyframes++
		}
	}
	s.logger.Info(l10n.F("Video encoded: %d packets, %d bytes", len(packets), totalBytes))

	data, err := s.sink.Build(packets, mp4sink.Config{
		Width:  input.Width,
		Height: input.Height,
		FPS:    input.FPS,
	})
	if err != nil {
		return result, fmt.Errorf("mux mp4: %w", err)
	}

	last := packets[len(packets)-1]
	result.Packets = packets
	result.VideoData = data
	result.DurationMs = last.TimestampMs + last.DurationMs
	return result, nil
}
