// Package session implements the stateful encoding protocol: frames are
// submitted in order, packets are drained between submissions, end-of-stream
// is signaled with a nil frame, and the session is flushed step by step
// until the engine has nothing left to emit.
//
// A Session owns exactly one pass context and one pending packet list.
// Sessions are independent: concurrent encodes use separate sessions with
// no shared mutable state.
package session

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/ports"
	"github.com/user/twopass/pkg/stats"
)

// State is the lifecycle state of a Session.
type State int

const (
	// StateRunning accepts frames and drains packets.
	StateRunning State = iota
	// StateFlushing accepts no new frames and drains buffered output.
	StateFlushing
	// StateClosed is terminal; all further operations fail.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFlushing:
		return "flushing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config contains the per-session encoding parameters.
type Config struct {
	Width  int
	Height int
	FPS    float64

	// Pass selects single, first, or last pass. Fixed for the session.
	Pass codec.Pass

	// LookaheadDepth is the number of future frames the engine may buffer
	// before emitting output for an earlier frame.
	LookaheadDepth int

	// TargetBitrate in kbps; zero selects quality-driven encoding.
	TargetBitrate int

	// Quality is the quantizer baseline (0-63, lower is better).
	Quality int

	// KeyframeInterval is the maximum keyframe distance in frames.
	KeyframeInterval int

	// StatsInput is the full first-pass stats buffer. Required for the
	// last pass, forbidden otherwise. The session treats it as immutable.
	StatsInput []byte

	// StrictStats rejects malformed StatsInput at construction instead of
	// degrading to single-pass heuristics with a warning.
	StrictStats bool
}

// Session drives one encode engine through one pass over one frame
// sequence. Lifecycle: Running (accepting frames, draining packets) →
// Flushing (no new frames, draining until empty) → Closed (irreversible).
type Session struct {
	engine ports.EncodeEngine
	cfg    Config
	log    ports.Logger

	state   State
	ctx     *passContext
	pending []codec.Packet

	framesSubmitted int
	framePackets    int
	statsPackets    int
	shortStatsWarn  bool
}

// New creates a Session, configures the engine, and validates the
// configuration. Invalid combinations fail here, never mid-stream.
func New(engine ports.EncodeEngine, cfg Config, log ports.Logger) (*Session, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: encode engine is required", ErrInvalidConfig)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps %v", ErrInvalidConfig, cfg.FPS)
	}
	if cfg.LookaheadDepth < 0 {
		return nil, fmt.Errorf("%w: lookahead depth %d", ErrInvalidConfig, cfg.LookaheadDepth)
	}
	if cfg.Quality < 0 || cfg.Quality > 63 {
		return nil, fmt.Errorf("%w: quality %d (want 0-63)", ErrInvalidConfig, cfg.Quality)
	}
	if cfg.Pass == codec.PassLast && len(cfg.StatsInput) == 0 {
		return nil, fmt.Errorf("%w: last pass requires stats input", ErrInvalidConfig)
	}
	if cfg.Pass != codec.PassLast && len(cfg.StatsInput) > 0 {
		return nil, fmt.Errorf("%w: stats input is only valid for the last pass", ErrInvalidConfig)
	}

	s := &Session{
		engine: engine,
		cfg:    cfg,
		log:    log.WithComponent("session"),
		state:  StateRunning,
		ctx:    newPassContext(cfg.Pass, cfg.TargetBitrate),
	}

	if err := engine.Configure(ports.EngineConfig{
		Width:            cfg.Width,
		Height:           cfg.Height,
		FPS:              cfg.FPS,
		Pass:             cfg.Pass,
		LookaheadDepth:   cfg.LookaheadDepth,
		TargetBitrate:    cfg.TargetBitrate,
		Quality:          cfg.Quality,
		KeyframeInterval: cfg.KeyframeInterval,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.Pass == codec.PassLast {
		feeder, warn := stats.NewFeeder(cfg.StatsInput, engine.StatsRecordSize())
		if warn != nil {
			if cfg.StrictStats {
				return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, warn)
			}
			s.log.Warn(l10n.F("Stats input rejected, falling back to single-pass heuristics: %s", warn))
		}
		s.ctx.feeder = feeder
	}

	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Submit hands one raw frame to the engine, or signals end-of-stream when
// frame is nil. End-of-stream moves the session to Flushing; the caller
// must then repeat FlushStep and RetrievePackets until a step produces
// nothing.
//
// Packets from the previous step must be drained first; Submit with an
// undrained packet list returns ErrBackpressure, and the submission can be
// retried after RetrievePackets.
func (s *Session) Submit(frame *codec.RawFrame) error {
	if s.state != StateRunning {
		return fmt.Errorf("%w: submit in state %s", ErrInvalidState, s.state)
	}

	if frame == nil {
		s.state = StateFlushing
		s.log.Debug("End of stream after %d frames", s.framesSubmitted)
		return nil
	}

	if len(s.pending) > 0 {
		return fmt.Errorf("%w: %d packets pending", ErrBackpressure, len(s.pending))
	}

	s.checkStatsCoverage()

	packets, err := s.engine.Encode(frame, s.ctx)
	if err != nil {
		s.forceClose()
		return fmt.Errorf("%w: frame %d: %v", ErrEncodeFailure, s.ctx.FrameIndex(), err)
	}
	if err := s.accept(packets); err != nil {
		s.forceClose()
		return err
	}

	s.framesSubmitted++
	s.ctx.advance()
	return nil
}

// RetrievePackets drains and returns all packets produced by the most
// recent Submit or FlushStep, in emission order. An empty result means no
// more data for the current step; calling again without an intervening
// step returns empty again. Retrieval on a closed session is an error.
func (s *Session) RetrievePackets() ([]codec.Packet, error) {
	if s.state == StateClosed {
		return nil, fmt.Errorf("%w: retrieve on closed session", ErrInvalidState)
	}
	packets := s.pending
	s.pending = nil
	return packets, nil
}

// FlushStep drives the engine with no new input, reporting whether any
// packet was produced. Valid only while Flushing. A step that produces
// nothing closes the session: the flush loop is complete and every
// submitted frame has been emitted.
func (s *Session) FlushStep() (bool, error) {
	if s.state != StateFlushing {
		return false, fmt.Errorf("%w: flush step in state %s", ErrInvalidState, s.state)
	}

	packets, err := s.engine.Encode(nil, s.ctx)
	if err != nil {
		s.forceClose()
		return false, fmt.Errorf("%w: flush: %v", ErrEncodeFailure, err)
	}
	if err := s.accept(packets); err != nil {
		s.forceClose()
		return false, err
	}

	if len(packets) == 0 {
		s.state = StateClosed
		if err := s.engine.Close(); err != nil {
			return false, fmt.Errorf("close engine: %w", err)
		}
		s.log.Debug("Flush complete: %d frames in, %d frame packets out", s.framesSubmitted, s.framePackets)
		return false, nil
	}
	return true, nil
}

// Close releases all session resources without emitting further packets.
// It is valid in any state and idempotent. A session abandoned before the
// flush loop reached Closed has produced an incomplete, non-decodable
// bitstream; Close does not repair that.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.forceClose()
	return nil
}

// StatsBuffer returns the cumulative first-pass stats buffer, equal to the
// in-order concatenation of all stats packet payloads this session has
// emitted. It returns nil outside the first pass.
func (s *Session) StatsBuffer() []byte {
	if s.ctx.accumulator == nil {
		return nil
	}
	return s.ctx.accumulator.Bytes()
}

// FramesSubmitted returns the number of frames accepted so far.
func (s *Session) FramesSubmitted() int {
	return s.framesSubmitted
}

// FramePackets returns the number of frame packets emitted so far.
func (s *Session) FramePackets() int {
	return s.framePackets
}

// StatsPackets returns the number of stats packets emitted so far.
func (s *Session) StatsPackets() int {
	return s.statsPackets
}

// accept validates packets against the pass contract, updates rate-control
// accounting, and queues them for retrieval.
func (s *Session) accept(packets []codec.Packet) error {
	for _, p := range packets {
		switch p.Kind {
		case codec.PacketStats:
			if s.cfg.Pass != codec.PassFirst {
				return fmt.Errorf("%w: engine emitted a stats packet in %s pass", ErrEncodeFailure, s.cfg.Pass)
			}
			s.ctx.record(p.Payload)
			s.statsPackets++
		case codec.PacketFrame:
			if s.cfg.Pass == codec.PassFirst {
				return fmt.Errorf("%w: engine emitted a frame packet in first pass", ErrEncodeFailure)
			}
			s.ctx.account(p)
			s.framePackets++
		default:
			return fmt.Errorf("%w: unknown packet kind %d", ErrEncodeFailure, p.Kind)
		}
	}
	s.pending = append(s.pending, packets...)
	return nil
}

// checkStatsCoverage warns once when a last-pass session outruns its stats
// input. Quality degrades from that frame on, but the encode continues.
func (s *Session) checkStatsCoverage() {
	if s.shortStatsWarn || s.ctx.feeder == nil || s.ctx.feeder.Degraded() {
		return
	}
	if s.framesSubmitted >= s.ctx.feeder.Count() {
		s.log.Warn(l10n.F("Stats input covers %d frames but more were submitted, quality may degrade", s.ctx.feeder.Count()))
		s.shortStatsWarn = true
	}
}

// forceClose discards pending packets and releases the engine. After a
// forced close no partial packets leak to the caller.
func (s *Session) forceClose() {
	s.pending = nil
	s.state = StateClosed
	_ = s.engine.Close()
}
