package blockencoder

import (
	"encoding/binary"
	"fmt"
	"math"
)

// FrameStats is the first-pass analysis result for one frame. It is
// serialized into a fixed-size little-endian record; the record layout is
// private to this engine, the protocol layer treats it as an opaque blob.
type FrameStats struct {
	Index       uint32
	KeyframeCue bool    // intra coding looked cheaper than inter
	IntraError  float64 // mean absolute deviation from block means
	InterError  float64 // mean absolute difference against previous frame
	MotionRatio float64 // fraction of blocks above the motion threshold
	AvgLuma     float64
}

// StatsRecordSize is the serialized size of one FrameStats record.
const StatsRecordSize = 40

const statsFlagKeyframeCue = 1 << 0

// marshal serializes the stats into a fresh record.
func (s *FrameStats) marshal() []byte {
	rec := make([]byte, StatsRecordSize)
	binary.LittleEndian.PutUint32(rec[0:4], s.Index)
	var flags uint32
	if s.KeyframeCue {
		flags |= statsFlagKeyframeCue
	}
	binary.LittleEndian.PutUint32(rec[4:8], flags)
	binary.LittleEndian.PutUint64(rec[8:16], math.Float64bits(s.IntraError))
	binary.LittleEndian.PutUint64(rec[16:24], math.Float64bits(s.InterError))
	binary.LittleEndian.PutUint64(rec[24:32], math.Float64bits(s.MotionRatio))
	binary.LittleEndian.PutUint64(rec[32:40], math.Float64bits(s.AvgLuma))
	return rec
}

// unmarshalStats parses one record produced by marshal.
func unmarshalStats(rec []byte) (FrameStats, error) {
	if len(rec) != StatsRecordSize {
		return FrameStats{}, fmt.Errorf("stats record is %d bytes, want %d", len(rec), StatsRecordSize)
	}
	flags := binary.LittleEndian.Uint32(rec[4:8])
	return FrameStats{
		Index:       binary.LittleEndian.Uint32(rec[0:4]),
		KeyframeCue: flags&statsFlagKeyframeCue != 0,
		IntraError:  math.Float64frombits(binary.LittleEndian.Uint64(rec[8:16])),
		InterError:  math.Float64frombits(binary.LittleEndian.Uint64(rec[16:24])),
		MotionRatio: math.Float64frombits(binary.LittleEndian.Uint64(rec[24:32])),
		AvgLuma:     math.Float64frombits(binary.LittleEndian.Uint64(rec[32:40])),
	}, nil
}

// analyzeFrame computes first-pass statistics for the luma plane of one
// frame, compared block-wise against the previous frame's luma. A nil prev
// marks the frame as an intra candidate.
func analyzeFrame(index int, luma, prev []byte, width, height int) FrameStats {
	stats := FrameStats{Index: uint32(index)}

	blocks := 0
	movingBlocks := 0
	var intraSum, interSum, lumaSum float64

	for by := 0; by < height; by += blockSize {
		for bx := 0; bx < width; bx += blockSize {
			mean := blockMean(luma, width, height, bx, by)
			intra := blockDeviation(luma, width, height, bx, by, mean)
			intraSum += intra
			lumaSum += mean

			if prev != nil {
				inter := blockSAD(luma, prev, width, height, bx, by)
				interSum += inter
				if inter > motionThreshold {
					movingBlocks++
				}
			}
			blocks++
		}
	}

	if blocks == 0 {
		return stats
	}

	stats.IntraError = intraSum / float64(blocks)
	stats.AvgLuma = lumaSum / float64(blocks)
	if prev == nil {
		// No reference: inter coding is impossible, cue a keyframe.
		stats.InterError = stats.IntraError
		stats.KeyframeCue = true
		return stats
	}
	stats.InterError = interSum / float64(blocks)
	stats.MotionRatio = float64(movingBlocks) / float64(blocks)
	stats.KeyframeCue = stats.InterError > sceneCutRatio*stats.IntraError
	return stats
}
