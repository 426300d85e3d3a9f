// Package codec defines the frame, packet, and pass types that flow through
// the encoding pipeline, from frame submission through packet retrieval.
package codec

import "fmt"

// RawFrame is one uncompressed picture in I420 planar layout (full-resolution
// luma plane followed by quarter-resolution Cb and Cr planes).
//
// The caller owns the frame until it is handed to a session. An encode engine
// borrows it for the duration of one encode call and must not retain the Data
// slice afterward; engines that buffer frames for look-ahead copy what they
// need.
type RawFrame struct {
	Data          []byte
	Width         int
	Height        int
	TimestampMs   int
	DurationMs    int
	ForceKeyframe bool
}

// I420Size returns the expected byte length of an I420 frame with the given
// dimensions.
func I420Size(width, height int) int {
	return width*height + 2*((width/2)*(height/2))
}

// Validate checks that the frame dimensions are usable and that Data holds a
// complete I420 picture.
func (f *RawFrame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if f.Width%2 != 0 || f.Height%2 != 0 {
		return fmt.Errorf("frame dimensions %dx%d must be even for I420", f.Width, f.Height)
	}
	if want := I420Size(f.Width, f.Height); len(f.Data) != want {
		return fmt.Errorf("frame data is %d bytes, want %d for %dx%d I420", len(f.Data), want, f.Width, f.Height)
	}
	return nil
}

// Pass selects which encoding pass a session performs. It is fixed for the
// lifetime of the session.
type Pass int

const (
	// PassSingle produces final output in one pass with no statistics.
	PassSingle Pass = iota
	// PassFirst gathers per-frame statistics and produces no video output.
	PassFirst
	// PassLast consumes first-pass statistics to produce final output.
	PassLast
)

// String returns the configuration name of the pass.
func (p Pass) String() string {
	switch p {
	case PassSingle:
		return "single"
	case PassFirst:
		return "first"
	case PassLast:
		return "last"
	default:
		return "unknown"
	}
}

// ParsePass parses a configuration string into a Pass.
func ParsePass(s string) (Pass, error) {
	switch s {
	case "single", "":
		return PassSingle, nil
	case "first":
		return PassFirst, nil
	case "last":
		return PassLast, nil
	default:
		return PassSingle, fmt.Errorf("unknown pass %q (want single, first, or last)", s)
	}
}

// PacketKind discriminates the payload of a Packet. Callers must check it
// before interpreting Payload.
type PacketKind int

const (
	// PacketStats carries one opaque first-pass statistics record.
	PacketStats PacketKind = iota
	// PacketFrame carries one compressed frame.
	PacketFrame
)

// String returns a short name for the packet kind.
func (k PacketKind) String() string {
	switch k {
	case PacketStats:
		return "stats"
	case PacketFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// Packet is one unit of encoder output. Packets are immutable once emitted
// and owned by the caller after retrieval.
//
// Keyframe, TimestampMs, and DurationMs are meaningful only for PacketFrame.
type Packet struct {
	Kind        PacketKind
	Payload     []byte
	Keyframe    bool
	TimestampMs int
	DurationMs  int
}
