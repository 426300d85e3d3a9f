package mocks

import "github.com/user/twopass/pkg/ports"

// DebugSink is a mock implementation of ports.DebugSink that records
// everything saved to it.
type DebugSink struct {
	Stats      []byte
	PacketLogs map[string][]byte
	RunJSON    []byte
}

// NewDebugSink creates an enabled recording sink.
func NewDebugSink() *DebugSink {
	return &DebugSink{PacketLogs: make(map[string][]byte)}
}

func (m *DebugSink) Enabled() bool {
	return true
}

func (m *DebugSink) SaveStats(data []byte) error {
	m.Stats = append([]byte(nil), data...)
	return nil
}

func (m *DebugSink) SavePacketLog(pass string, data []byte) error {
	m.PacketLogs[pass] = append([]byte(nil), data...)
	return nil
}

func (m *DebugSink) SaveRunJSON(data []byte) error {
	m.RunJSON = append([]byte(nil), data...)
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
