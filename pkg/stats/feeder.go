package stats

import "fmt"

// Feeder exposes per-frame record lookups over a first-pass statistics
// buffer. The buffer is caller-owned and treated as immutable: the feeder
// never copies or modifies it, only slices into it.
//
// A feeder over malformed input (buffer length not a whole number of
// records) is degraded: lookups return nil and Degraded reports true, so
// the engine can fall back to single-pass heuristics instead of aborting.
type Feeder struct {
	buf        []byte
	recordSize int
	count      int
	degraded   bool
	warning    error
}

// NewFeeder creates a Feeder over buf, split into recordSize-byte records.
// A zero recordSize (engine with variable-size records) or a buffer that is
// not a whole number of records yields a degraded feeder; the returned
// error describes the mismatch and is warning-level, not fatal.
func NewFeeder(buf []byte, recordSize int) (*Feeder, error) {
	f := &Feeder{buf: buf, recordSize: recordSize}

	if recordSize <= 0 {
		f.degraded = true
		f.warning = fmt.Errorf("%w: record size %d is not usable for lookups", ErrStatsMismatch, recordSize)
		return f, f.warning
	}
	if len(buf) == 0 {
		f.degraded = true
		f.warning = fmt.Errorf("%w: stats buffer is empty", ErrStatsMismatch)
		return f, f.warning
	}
	if len(buf)%recordSize != 0 {
		f.degraded = true
		f.warning = fmt.Errorf("%w: buffer length %d is not a multiple of record size %d",
			ErrStatsMismatch, len(buf), recordSize)
		return f, f.warning
	}

	f.count = len(buf) / recordSize
	return f, nil
}

// Count returns the number of records, or zero when degraded.
func (f *Feeder) Count() int {
	return f.count
}

// Degraded reports whether the stats input was rejected.
func (f *Feeder) Degraded() bool {
	return f.degraded
}

// Warning returns the mismatch that degraded this feeder, or nil.
func (f *Feeder) Warning() error {
	return f.warning
}

// Record returns the statistics record for frame i, or nil when i is out of
// range or the feeder is degraded. The returned slice aliases the
// caller-owned buffer and must not be modified.
func (f *Feeder) Record(i int) []byte {
	if f.degraded || i < 0 || i >= f.count {
		return nil
	}
	return f.buf[i*f.recordSize : (i+1)*f.recordSize]
}

// Window returns up to n records starting at frame i, in encode order. A
// window that runs past the last record is truncated; a fully out-of-range
// or degraded window is nil.
func (f *Feeder) Window(i, n int) [][]byte {
	if f.degraded || n <= 0 || i < 0 || i >= f.count {
		return nil
	}
	end := i + n
	if end > f.count {
		end = f.count
	}
	window := make([][]byte, 0, end-i)
	for j := i; j < end; j++ {
		window = append(window, f.Record(j))
	}
	return window
}
