package pipeline

import "github.com/user/twopass/pkg/codec"

// =============================================================================
// Analyze Stage Types (first pass)
// =============================================================================

// AnalyzeInput contains parameters for the first-pass analysis stage.
type AnalyzeInput struct {
	Frames []*codec.RawFrame
	Width  int
	Height int
	FPS    float64

	// LookaheadDepth mirrors the output pass so both passes see the same
	// session parameters.
	LookaheadDepth   int
	KeyframeInterval int
}

// AnalyzeResult contains the accumulated first-pass statistics.
type AnalyzeResult struct {
	// Stats is the flat concatenation of per-frame records in encode
	// order, ready to feed to a last-pass session verbatim.
	Stats   []byte
	Records int
}

// =============================================================================
// Encode Stage Types (single or last pass)
// =============================================================================

// EncodeInput contains parameters for the output pass stage.
type EncodeInput struct {
	Frames []*codec.RawFrame
	Width  int
	Height int
	FPS    float64

	Pass             codec.Pass // PassSingle or PassLast
	LookaheadDepth   int
	TargetBitrate    int // kbps, 0 = quality-driven
	Quality          int // 0-63
	KeyframeInterval int

	// Stats is the first-pass buffer; required when Pass is PassLast.
	Stats []byte

	// StrictStats rejects malformed Stats at session construction rather
	// than degrading with a warning.
	StrictStats bool
}

// EncodeResult contains the output pass products.
type EncodeResult struct {
	Packets    []codec.Packet
	VideoData  []byte // muxed MP4
	DurationMs int
	Keyframes  int
}
