package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/user/twopass/pkg/adapters/logger"
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/mocks"
	"github.com/user/twopass/pkg/pipeline"
)

// mockAnalyzeStage is a mock for the analyze stage.
type mockAnalyzeStage struct {
	mu     sync.Mutex
	result pipeline.AnalyzeResult
	err    error
	calls  int
	inputs []pipeline.AnalyzeInput
}

func (m *mockAnalyzeStage) Execute(ctx context.Context, input pipeline.AnalyzeInput) (pipeline.AnalyzeResult, error) {
	m.mu.Lock()
	m.calls++
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.err != nil {
		return pipeline.AnalyzeResult{}, m.err
	}
	return m.result, nil
}

// mockEncodeStage is a mock for the encode stage.
type mockEncodeStage struct {
	mu     sync.Mutex
	result pipeline.EncodeResult
	err    error
	calls  int
	inputs []pipeline.EncodeInput
}

func (m *mockEncodeStage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	m.mu.Lock()
	m.calls++
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.err != nil {
		return pipeline.EncodeResult{}, m.err
	}
	return m.result, nil
}

func testFrames(n int) []*codec.RawFrame {
	frames := make([]*codec.RawFrame, n)
	for i := range frames {
		frames[i] = &codec.RawFrame{
			Data:        make([]byte, codec.I420Size(64, 64)),
			Width:       64,
			Height:      64,
			TimestampMs: i * 33,
			DurationMs:  33,
		}
	}
	return frames
}

func testOrchConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 64
	cfg.Height = 64
	cfg.OutputPath = "/out/video.mp4"
	return cfg
}

func testStages() (*mockAnalyzeStage, *mockEncodeStage) {
	analyze := &mockAnalyzeStage{
		result: pipeline.AnalyzeResult{Stats: make([]byte, 3*40), Records: 3},
	}
	encode := &mockEncodeStage{
		result: pipeline.EncodeResult{
			Packets: []codec.Packet{
				{Kind: codec.PacketFrame, Payload: []byte{1, 2}, Keyframe: true, DurationMs: 33},
			},
			VideoData:  []byte("mp4-data"),
			DurationMs: 99,
			Keyframes:  1,
		},
	}
	return analyze, encode
}

func TestOrchestrator_RunTwoPass(t *testing.T) {
	analyze, encode := testStages()
	fs := mocks.NewFileSystem()
	sink := mocks.NewDebugSink()
	orch := New(analyze, encode, fs, sink, logger.NewNoop())

	result, err := orch.Run(context.Background(), testOrchConfig(), testFrames(3))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if analyze.calls != 1 {
		t.Errorf("expected 1 analyze call, got %d", analyze.calls)
	}
	if encode.calls != 1 {
		t.Errorf("expected 1 encode call, got %d", encode.calls)
	}

	// The encode stage runs as a last pass over the first pass's stats.
	in := encode.inputs[0]
	if in.Pass != codec.PassLast {
		t.Errorf("expected last pass, got %v", in.Pass)
	}
	if len(in.Stats) != 3*40 {
		t.Errorf("expected first-pass stats to be forwarded, got %d bytes", len(in.Stats))
	}

	// The muxed data lands at the output path.
	written, err := fs.ReadFile("/out/video.mp4")
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if string(written) != "mp4-data" {
		t.Errorf("unexpected output contents %q", written)
	}

	if result.FrameCount != 3 || result.Keyframes != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.StatsRecords != 3 {
		t.Errorf("expected 3 stats records, got %d", result.StatsRecords)
	}
	if result.VideoFileSize != int64(len("mp4-data")) {
		t.Errorf("unexpected file size %d", result.VideoFileSize)
	}

	// Debug sink captured stats, packet log, and the run summary.
	if len(sink.Stats) != 3*40 {
		t.Errorf("expected stats in debug sink, got %d bytes", len(sink.Stats))
	}
	if _, ok := sink.PacketLogs["last"]; !ok {
		t.Error("expected last-pass packet log in debug sink")
	}
	if len(sink.RunJSON) == 0 {
		t.Error("expected run summary in debug sink")
	}
}

func TestOrchestrator_RunSinglePass(t *testing.T) {
	analyze, encode := testStages()
	cfg := testOrchConfig()
	cfg.TwoPass = false

	orch := New(analyze, encode, mocks.NewFileSystem(), mocks.NewDebugSink(), logger.NewNoop())
	if _, err := orch.Run(context.Background(), cfg, testFrames(2)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if analyze.calls != 0 {
		t.Errorf("expected no analyze call in single pass, got %d", analyze.calls)
	}
	if encode.inputs[0].Pass != codec.PassSingle {
		t.Errorf("expected single pass, got %v", encode.inputs[0].Pass)
	}
}

func TestOrchestrator_RunWithSuppliedStats(t *testing.T) {
	analyze, encode := testStages()
	cfg := testOrchConfig()
	cfg.StatsInput = make([]byte, 2*40)

	orch := New(analyze, encode, mocks.NewFileSystem(), mocks.NewDebugSink(), logger.NewNoop())
	result, err := orch.Run(context.Background(), cfg, testFrames(2))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Supplied stats skip the first pass entirely.
	if analyze.calls != 0 {
		t.Errorf("expected no analyze call with supplied stats, got %d", analyze.calls)
	}
	if encode.inputs[0].Pass != codec.PassLast {
		t.Errorf("expected last pass, got %v", encode.inputs[0].Pass)
	}
	if result.StatsBytes != 2*40 {
		t.Errorf("expected 80 stats bytes, got %d", result.StatsBytes)
	}
}

func TestOrchestrator_AnalyzeErrorStopsRun(t *testing.T) {
	analyze, encode := testStages()
	analyze.err = errors.New("analysis broke")

	orch := New(analyze, encode, mocks.NewFileSystem(), mocks.NewDebugSink(), logger.NewNoop())
	if _, err := orch.Run(context.Background(), testOrchConfig(), testFrames(2)); err == nil {
		t.Fatal("expected error")
	}
	if encode.calls != 0 {
		t.Errorf("expected no encode call after analyze failure, got %d", encode.calls)
	}
}

func TestOrchestrator_EncodeErrorStopsRun(t *testing.T) {
	analyze, encode := testStages()
	encode.err = errors.New("encode broke")

	fs := mocks.NewFileSystem()
	orch := New(analyze, encode, fs, mocks.NewDebugSink(), logger.NewNoop())
	if _, err := orch.Run(context.Background(), testOrchConfig(), testFrames(2)); err == nil {
		t.Fatal("expected error")
	}
	if exists, _ := fs.Exists("/out/video.mp4"); exists {
		t.Error("expected no output file after encode failure")
	}
}

func TestOrchestrator_WriteErrorPropagates(t *testing.T) {
	analyze, encode := testStages()
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(path string, data []byte) error {
		return errors.New("disk full")
	}

	orch := New(analyze, encode, fs, mocks.NewDebugSink(), logger.NewNoop())
	if _, err := orch.Run(context.Background(), testOrchConfig(), testFrames(2)); err == nil {
		t.Fatal("expected write error to propagate")
	}
}

func TestOrchestrator_RunBatch(t *testing.T) {
	analyze, encode := testStages()
	fs := mocks.NewFileSystem()
	orch := New(analyze, encode, fs, mocks.NewDebugSink(), logger.NewNoop())

	jobs := make([]Job, 3)
	for i := range jobs {
		cfg := testOrchConfig()
		cfg.OutputPath = ""
		jobs[i] = Job{Config: cfg, Frames: testFrames(2)}
	}

	results, err := orch.RunBatch(context.Background(), jobs)
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.FrameCount != 2 {
			t.Errorf("job %d: expected 2 frames, got %d", i, r.FrameCount)
		}
	}
}

func TestOrchestrator_RunBatchFirstErrorWins(t *testing.T) {
	analyze, encode := testStages()
	encode.err = errors.New("worker broke")
	orch := New(analyze, encode, mocks.NewFileSystem(), mocks.NewDebugSink(), logger.NewNoop())

	jobs := []Job{
		{Config: testOrchConfig(), Frames: testFrames(1)},
		{Config: testOrchConfig(), Frames: testFrames(1)},
	}
	if _, err := orch.RunBatch(context.Background(), jobs); err == nil {
		t.Fatal("expected batch error")
	}
}
