package session

import (
	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/stats"
)

// passContext is the mutable per-session pass state: which pass is active,
// the stats buffer being written (first pass) or read (last pass), the
// rate-control bits-spent accumulator, and the frame index. It is created
// at session start, advanced exactly once per accepted frame, and owned
// exclusively by its session.
//
// passContext implements ports.RateControl, giving the engine a read-only
// budget view without exposing session internals.
type passContext struct {
	pass          codec.Pass
	targetBitrate int

	frameIndex int
	bitsSpent  int64

	accumulator *stats.Accumulator // first pass only
	feeder      *stats.Feeder      // last pass only
}

func newPassContext(pass codec.Pass, targetBitrate int) *passContext {
	ctx := &passContext{
		pass:          pass,
		targetBitrate: targetBitrate,
	}
	if pass == codec.PassFirst {
		ctx.accumulator = stats.NewAccumulator()
	}
	return ctx
}

// FrameIndex returns the zero-based index of the frame being encoded.
func (c *passContext) FrameIndex() int {
	return c.frameIndex
}

// BitsSpent returns total frame packet payload bits emitted so far.
func (c *passContext) BitsSpent() int64 {
	return c.bitsSpent
}

// TargetBitrate returns the configured rate-control target in kbps.
func (c *passContext) TargetBitrate() int {
	return c.targetBitrate
}

// StatsWindow returns stats records for the current frame and up to n-1
// following frames. Outside the last pass, or with degraded stats input,
// it returns nil.
func (c *passContext) StatsWindow(n int) [][]byte {
	if c.feeder == nil {
		return nil
	}
	return c.feeder.Window(c.frameIndex, n)
}

// Degraded reports whether last-pass stats input was rejected.
func (c *passContext) Degraded() bool {
	return c.feeder != nil && c.feeder.Degraded()
}

// advance moves to the next frame index. Called exactly once per accepted
// frame, after the engine call for that frame returns.
func (c *passContext) advance() {
	c.frameIndex++
}

// account records the cost of one emitted frame packet.
func (c *passContext) account(p codec.Packet) {
	c.bitsSpent += int64(len(p.Payload)) * 8
}

// record appends one first-pass stats record to the cumulative buffer.
func (c *passContext) record(payload []byte) {
	if c.accumulator != nil {
		c.accumulator.Append(payload)
	}
}
