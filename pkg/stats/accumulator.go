// Package stats implements the first-pass statistics pipeline: an
// Accumulator that collects one opaque record per encoded frame, and a
// Feeder that replays a previously accumulated buffer to the second pass.
//
// Record contents are deliberately uninterpreted here. The engine that
// produced a record is the only component that understands its layout; this
// layer guarantees only ordering and completeness.
package stats

import "errors"

// ErrStatsMismatch indicates that second-pass statistics input is malformed
// or length-inconsistent. In tolerant mode it is reported as a warning and
// the encode degrades to single-pass heuristics; in strict mode it fails
// session construction.
var ErrStatsMismatch = errors.New("stats: second-pass stats input is malformed")

// Accumulator collects first-pass statistics records in encode order into a
// single growable buffer. The concatenated buffer, fed verbatim to a
// last-pass session over the same frames, reproduces the first pass input
// bit for bit.
type Accumulator struct {
	buf     []byte
	records int
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append adds one statistics record. Records must be appended in frame
// encode order; the record bytes are copied.
func (a *Accumulator) Append(record []byte) {
	a.buf = append(a.buf, record...)
	a.records++
}

// Bytes returns the accumulated buffer. The returned slice aliases the
// accumulator's storage and is only valid until the next Append.
func (a *Accumulator) Bytes() []byte {
	return a.buf
}

// Len returns the accumulated buffer length in bytes.
func (a *Accumulator) Len() int {
	return len(a.buf)
}

// Records returns the number of records appended so far.
func (a *Accumulator) Records() int {
	return a.records
}
