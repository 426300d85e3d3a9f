// Package ports defines the interfaces between the encoding control plane
// and its collaborators: the encode engine, loggers, the filesystem, and
// debug sinks.
package ports

import "github.com/user/twopass/pkg/codec"

// EngineConfig carries the session parameters an encode engine needs before
// the first frame. A session passes it to Configure exactly once.
type EngineConfig struct {
	Width  int
	Height int
	FPS    float64

	// Pass determines which packet kinds the engine may emit: stats
	// packets in the first pass, frame packets otherwise.
	Pass codec.Pass

	// LookaheadDepth is the number of future frames the engine may buffer
	// before emitting output for an earlier frame. Zero means every frame
	// is emitted by the call that submitted it.
	LookaheadDepth int

	// TargetBitrate is the rate-control target in kbps. Zero selects
	// quality-driven encoding.
	TargetBitrate int

	// Quality is the quantizer baseline (0-63, lower is higher quality)
	// used when TargetBitrate is zero, and as the starting point for
	// rate-controlled passes.
	Quality int

	// KeyframeInterval is the maximum distance between keyframes in
	// frames. Zero leaves keyframe placement entirely to the engine.
	KeyframeInterval int
}

// RateControl is the per-session budget view a session exposes to its
// engine on every encode call. It is advanced by the session, exactly once
// per accepted frame.
type RateControl interface {
	// FrameIndex returns the zero-based index of the frame being encoded.
	FrameIndex() int

	// BitsSpent returns the total payload bits of all frame packets the
	// session has emitted so far.
	BitsSpent() int64

	// TargetBitrate returns the configured rate-control target in kbps,
	// or zero for quality-driven encoding.
	TargetBitrate() int

	// StatsWindow returns the first-pass statistics records for the
	// current frame and up to n-1 following frames, in encode order. It
	// returns nil outside the last pass or when stats input is degraded.
	StatsWindow(n int) [][]byte

	// Degraded reports whether second-pass statistics were rejected and
	// the engine should fall back to single-pass heuristics.
	Degraded() bool
}

// EngineFactory creates a fresh, unconfigured EncodeEngine. Each session
// needs its own engine instance; stages that run a session per Execute
// take a factory instead of an engine.
type EngineFactory func() EncodeEngine

// EncodeEngine turns raw frames into packets: one opaque statistics record
// per frame in the first pass, compressed frames otherwise. Implementations
// present a synchronous boundary: Encode does not return until the submitted
// frame, and any frames it forces out of the look-ahead window, have
// produced their packets or been buffered.
type EncodeEngine interface {
	// Configure prepares the engine for one encoding session. It is
	// called once, before the first Encode.
	Configure(cfg EngineConfig) error

	// Encode processes one raw frame, or performs one flush step when
	// frame is nil, returning the packets produced in emission order.
	// The engine borrows frame for the duration of the call only.
	Encode(frame *codec.RawFrame, rc RateControl) ([]codec.Packet, error)

	// StatsRecordSize returns the byte length of one first-pass
	// statistics record, or zero if the engine's records are not
	// fixed-size.
	StatsRecordSize() int

	// Close releases engine resources. It must be safe to call at any
	// time and more than once.
	Close() error
}
