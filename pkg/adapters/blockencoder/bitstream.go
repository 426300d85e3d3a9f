package blockencoder

import (
	"bytes"
	"encoding/binary"
)

// Frame packet payload layout:
//
//	magic "BVC1" | version u8 | flags u8 | quantizer u8 | reserved u8 |
//	frame index u32 | width u16 | height u16 |
//	RLE-coded quantized block residuals
//
// Residuals are per-16x16-block quantized differences between each block's
// mean luma and its prediction: the previous frame's co-located block mean
// for inter frames, the left neighbor's mean for keyframes (128 for the
// first block of a row). The run-length coding makes payload size track
// both content complexity and the quantizer, which is what the
// rate-control loop needs from a reference bitstream.

var payloadMagic = []byte("BVC1")

const (
	payloadVersion    = 1
	payloadHeaderSize = 16

	frameFlagKeyframe = 1 << 0
)

// encodePayload codes the luma plane of one frame against prev (nil or
// previous luma for inter frames) at the given quantizer.
func encodePayload(luma, prev []byte, width, height, index, quantizer int, keyframe bool) []byte {
	var buf bytes.Buffer
	buf.Write(payloadMagic)
	buf.WriteByte(payloadVersion)
	var flags byte
	if keyframe {
		flags |= frameFlagKeyframe
	}
	buf.WriteByte(flags)
	buf.WriteByte(byte(quantizer))
	buf.WriteByte(0)

	var fixed [8]byte
	binary.LittleEndian.PutUint32(fixed[0:4], uint32(index))
	binary.LittleEndian.PutUint16(fixed[4:6], uint16(width))
	binary.LittleEndian.PutUint16(fixed[6:8], uint16(height))
	buf.Write(fixed[:])

	residuals := quantizeResiduals(luma, prev, width, height, quantizer, keyframe)
	writeRLE(&buf, residuals)
	return buf.Bytes()
}

// quantizeResiduals produces one signed, quantized residual byte per block
// in raster order.
func quantizeResiduals(luma, prev []byte, width, height, quantizer int, keyframe bool) []byte {
	if quantizer < 1 {
		quantizer = 1
	}
	var residuals []byte
	for by := 0; by < height; by += blockSize {
		rowStart := 0.0
		for bx := 0; bx < width; bx += blockSize {
			mean := blockMean(luma, width, height, bx, by)

			var pred float64
			switch {
			case keyframe && bx == 0:
				pred = 128
			case keyframe:
				pred = rowStart
			case prev != nil:
				pred = blockMean(prev, width, height, bx, by)
			default:
				pred = 128
			}
			rowStart = mean

			q := int(mean-pred) / quantizer
			if q > 127 {
				q = 127
			}
			if q < -128 {
				q = -128
			}
			residuals = append(residuals, byte(int8(q)))
		}
	}
	return residuals
}

// writeRLE appends (run length, value) pairs. Runs are capped at 255.
func writeRLE(buf *bytes.Buffer, data []byte) {
	for i := 0; i < len(data); {
		run := 1
		for i+run < len(data) && data[i+run] == data[i] && run < 255 {
			run++
		}
		buf.WriteByte(byte(run))
		buf.WriteByte(data[i])
		i += run
	}
}

// payloadQuantizer extracts the quantizer from an encoded payload, for
// tests and debug tooling.
func payloadQuantizer(payload []byte) (int, bool) {
	if len(payload) < payloadHeaderSize || !bytes.Equal(payload[:4], payloadMagic) {
		return 0, false
	}
	return int(payload[6]), true
}
