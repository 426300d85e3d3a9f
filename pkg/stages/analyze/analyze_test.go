package analyze

import (
	"context"
	"errors"
	"testing"

	"github.com/user/twopass/pkg/adapters/logger"
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/mocks"
	"github.com/user/twopass/pkg/pipeline"
	"github.com/user/twopass/pkg/ports"
)

func testInput(frames int) pipeline.AnalyzeInput {
	input := pipeline.AnalyzeInput{
		Width:            64,
		Height:           64,
		FPS:              30.0,
		KeyframeInterval: 120,
	}
	for i := 0; i < frames; i++ {
		input.Frames = append(input.Frames, &codec.RawFrame{
			Data:        make([]byte, codec.I420Size(64, 64)),
			Width:       64,
			Height:      64,
			TimestampMs: i * 33,
			DurationMs:  33,
		})
	}
	return input
}

func TestStage_Execute(t *testing.T) {
	engine := &mocks.EncodeEngine{}
	stage := NewStage(func() ports.EncodeEngine { return engine }, logger.NewNoop())

	result, err := stage.Execute(context.Background(), testInput(5))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Records != 5 {
		t.Errorf("expected 5 records, got %d", result.Records)
	}
	if want := 5 * engine.StatsRecordSize(); len(result.Stats) != want {
		t.Errorf("expected %d stats bytes, got %d", want, len(result.Stats))
	}
	if engine.ConfiguredWith.Pass != codec.PassFirst {
		t.Errorf("expected first pass, got %v", engine.ConfiguredWith.Pass)
	}
	if engine.CloseCalled == 0 {
		t.Error("expected engine to be closed")
	}
}

func TestStage_RejectsEmptyInput(t *testing.T) {
	stage := NewStage(func() ports.EncodeEngine { return &mocks.EncodeEngine{} }, logger.NewNoop())
	if _, err := stage.Execute(context.Background(), testInput(0)); err == nil {
		t.Error("expected error for empty frame list")
	}
}

func TestStage_RecordCountMismatch(t *testing.T) {
	// An engine that drops a record for one frame is a hard error: the
	// stats buffer would silently misalign the last pass.
	calls := 0
	engine := &mocks.EncodeEngine{
		EncodeFunc: func(frame *codec.RawFrame, rc ports.RateControl) ([]codec.Packet, error) {
			if frame == nil {
				return nil, nil
			}
			calls++
			if calls == 2 {
				return nil, nil
			}
			return []codec.Packet{{Kind: codec.PacketStats, Payload: make([]byte, 8)}}, nil
		},
	}
	stage := NewStage(func() ports.EncodeEngine { return engine }, logger.NewNoop())

	if _, err := stage.Execute(context.Background(), testInput(3)); err == nil {
		t.Error("expected error for record count mismatch")
	}
}

func TestStage_EncodeErrorPropagates(t *testing.T) {
	engine := &mocks.EncodeEngine{
		EncodeFunc: func(frame *codec.RawFrame, rc ports.RateControl) ([]codec.Packet, error) {
			return nil, errors.New("analysis failed")
		},
	}
	stage := NewStage(func() ports.EncodeEngine { return engine }, logger.NewNoop())

	if _, err := stage.Execute(context.Background(), testInput(2)); err == nil {
		t.Error("expected encode error to propagate")
	}
}

func TestStage_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := NewStage(func() ports.EncodeEngine { return &mocks.EncodeEngine{} }, logger.NewNoop())
	_, err := stage.Execute(ctx, testInput(3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
