package mocks

import (
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/ports"
)

// EncodeEngine is a mock implementation of ports.EncodeEngine.
//
// By default it behaves as a zero-look-ahead engine: every non-nil frame
// immediately produces one packet matching the configured pass, and flush
// steps produce nothing. Func fields override individual methods.
type EncodeEngine struct {
	ConfigureFunc func(cfg ports.EngineConfig) error
	EncodeFunc    func(frame *codec.RawFrame, rc ports.RateControl) ([]codec.Packet, error)
	CloseFunc     func() error
	RecordSize    int // StatsRecordSize result; defaults to 8

	// Recorded calls for verification
	ConfiguredWith *ports.EngineConfig
	EncodeCalls    []EncodeCall
	CloseCalled    int

	cfg ports.EngineConfig
}

// EncodeCall records one call to Encode.
type EncodeCall struct {
	Flush      bool // frame was nil
	FrameIndex int  // rc.FrameIndex() at call time, -1 when rc was nil
}

func (m *EncodeEngine) Configure(cfg ports.EngineConfig) error {
	m.cfg = cfg
	m.ConfiguredWith = &cfg
	if m.ConfigureFunc != nil {
		return m.ConfigureFunc(cfg)
	}
	return nil
}

func (m *EncodeEngine) Encode(frame *codec.RawFrame, rc ports.RateControl) ([]codec.Packet, error) {
	call := EncodeCall{Flush: frame == nil, FrameIndex: -1}
	if rc != nil {
		call.FrameIndex = rc.FrameIndex()
	}
	m.EncodeCalls = append(m.EncodeCalls, call)

	if m.EncodeFunc != nil {
		return m.EncodeFunc(frame, rc)
	}
	if frame == nil {
		return nil, nil
	}
	if m.cfg.Pass == codec.PassFirst {
		return []codec.Packet{{
			Kind:    codec.PacketStats,
			Payload: make([]byte, m.StatsRecordSize()),
		}}, nil
	}
	return []codec.Packet{{
		Kind:        codec.PacketFrame,
		Payload:     []byte{0xB5, byte(len(m.EncodeCalls))},
		Keyframe:    len(m.EncodeCalls) == 1,
		TimestampMs: frame.TimestampMs,
		DurationMs:  frame.DurationMs,
	}}, nil
}

func (m *EncodeEngine) StatsRecordSize() int {
	if m.RecordSize > 0 {
		return m.RecordSize
	}
	return 8
}

func (m *EncodeEngine) Close() error {
	m.CloseCalled++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.EncodeEngine = (*EncodeEngine)(nil)
