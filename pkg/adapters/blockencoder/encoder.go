// Package blockencoder provides a pure-Go block-based encode engine. It
// implements the full pass protocol (first-pass statistics, look-ahead
// buffering, rate-controlled last-pass output) over a deliberately simple
// per-block coder, so the control pipeline can be exercised end to end
// without a native codec.
package blockencoder

import (
	"errors"
	"fmt"

	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/ports"
)

var (
	// ErrNotConfigured is returned when Encode is called before Configure.
	ErrNotConfigured = errors.New("blockencoder: engine not configured")

	// ErrClosed is returned when the engine is used after Close.
	ErrClosed = errors.New("blockencoder: engine closed")
)

// queuedFrame is one look-ahead entry. The luma plane is copied at submit
// time because the engine only borrows the caller's frame for the duration
// of the Encode call.
type queuedFrame struct {
	luma        []byte
	index       int
	timestampMs int
	durationMs  int
	forceKF     bool
	stats       *FrameStats // captured from the stats window at submit time
}

// Engine implements ports.EncodeEngine.
type Engine struct {
	cfg        ports.EngineConfig
	configured bool
	closed     bool

	queue    []*queuedFrame
	refLuma  []byte // luma of the last emitted frame, inter reference
	analyzed []byte // luma of the last analyzed frame, first pass only
	received int
	emitted  int
	lastKF   int
}

// New creates an unconfigured Engine.
func New() *Engine {
	return &Engine{}
}

// Configure prepares the engine for one session.
func (e *Engine) Configure(cfg ports.EngineConfig) error {
	if e.configured {
		return errors.New("blockencoder: already configured")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("blockencoder: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 {
		return fmt.Errorf("blockencoder: invalid fps %v", cfg.FPS)
	}
	e.cfg = cfg
	e.configured = true
	e.lastKF = -1
	return nil
}

// StatsRecordSize returns the fixed first-pass record size.
func (e *Engine) StatsRecordSize() int {
	return StatsRecordSize
}

// Encode processes one frame, or one flush step when frame is nil.
func (e *Engine) Encode(frame *codec.RawFrame, rc ports.RateControl) ([]codec.Packet, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if !e.configured {
		return nil, ErrNotConfigured
	}

	if frame == nil {
		return e.flushStep(rc)
	}

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if frame.Width != e.cfg.Width || frame.Height != e.cfg.Height {
		return nil, fmt.Errorf("blockencoder: frame is %dx%d, session is %dx%d",
			frame.Width, frame.Height, e.cfg.Width, e.cfg.Height)
	}

	if e.cfg.Pass == codec.PassFirst {
		return e.firstPass(frame)
	}
	return e.outputPass(frame, rc)
}

// Close releases buffered frames. Safe to call at any time and repeatedly.
func (e *Engine) Close() error {
	e.queue = nil
	e.refLuma = nil
	e.analyzed = nil
	e.closed = true
	return nil
}

// firstPass analyzes the frame against its predecessor and emits exactly
// one stats packet. The first pass never buffers: look-ahead only matters
// for output decisions, which the first pass does not make.
func (e *Engine) firstPass(frame *codec.RawFrame) ([]codec.Packet, error) {
	luma := copyLuma(frame)
	stats := analyzeFrame(e.received, luma, e.analyzed, e.cfg.Width, e.cfg.Height)
	e.analyzed = luma
	e.received++

	return []codec.Packet{{
		Kind:    codec.PacketStats,
		Payload: stats.marshal(),
	}}, nil
}

// outputPass queues the frame and emits every frame the full look-ahead
// window forces out, preserving submission order.
func (e *Engine) outputPass(frame *codec.RawFrame, rc ports.RateControl) ([]codec.Packet, error) {
	qf := &queuedFrame{
		luma:        copyLuma(frame),
		index:       e.received,
		timestampMs: frame.TimestampMs,
		durationMs:  frame.DurationMs,
		forceKF:     frame.ForceKeyframe,
	}
	if rc != nil && !rc.Degraded() {
		if window := rc.StatsWindow(1); len(window) == 1 {
			if stats, err := unmarshalStats(window[0]); err == nil {
				qf.stats = &stats
			}
		}
	}
	e.queue = append(e.queue, qf)
	e.received++

	var packets []codec.Packet
	for len(e.queue) > e.cfg.LookaheadDepth {
		packets = append(packets, e.emitNext(rc))
	}
	return packets, nil
}

// flushStep emits one buffered frame per step, so the caller-driven flush
// loop terminates after exactly len(queue)+1 steps.
func (e *Engine) flushStep(rc ports.RateControl) ([]codec.Packet, error) {
	if e.cfg.Pass == codec.PassFirst || len(e.queue) == 0 {
		return nil, nil
	}
	return []codec.Packet{e.emitNext(rc)}, nil
}

// emitNext codes and removes the oldest queued frame.
func (e *Engine) emitNext(rc ports.RateControl) codec.Packet {
	qf := e.queue[0]
	e.queue = e.queue[1:]

	keyframe := e.decideKeyframe(qf)
	prev := e.refLuma
	if keyframe {
		prev = nil
	}
	quantizer := e.selectQuantizer(rc, e.emitted, qf.stats)

	payload := encodePayload(qf.luma, prev, e.cfg.Width, e.cfg.Height, qf.index, quantizer, keyframe)
	e.refLuma = qf.luma
	e.emitted++
	if keyframe {
		e.lastKF = qf.index
	}

	return codec.Packet{
		Kind:        codec.PacketFrame,
		Payload:     payload,
		Keyframe:    keyframe,
		TimestampMs: qf.timestampMs,
		DurationMs:  qf.durationMs,
	}
}

// decideKeyframe places a keyframe on the first frame, on caller request,
// at the configured interval, and on first-pass scene-cut cues.
func (e *Engine) decideKeyframe(qf *queuedFrame) bool {
	if qf.index == 0 || qf.forceKF || e.refLuma == nil {
		return true
	}
	if e.cfg.KeyframeInterval > 0 && qf.index-e.lastKF >= e.cfg.KeyframeInterval {
		return true
	}
	return qf.stats != nil && qf.stats.KeyframeCue
}

// copyLuma copies the luma plane out of a borrowed frame.
func copyLuma(frame *codec.RawFrame) []byte {
	luma := make([]byte, frame.Width*frame.Height)
	copy(luma, frame.Data[:len(luma)])
	return luma
}
