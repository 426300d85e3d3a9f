package blockencoder

import "github.com/user/twopass/pkg/ports"

// Quantizer bounds. The range mirrors common block codec quantizer scales
// (0-63) with the extremes held back for stability.
const (
	minQuantizer     = 4
	maxQuantizer     = 60
	defaultQuantizer = 32
)

// selectQuantizer picks the quantizer for the frame about to be emitted.
//
// Quality-driven encoding (no target bitrate, or degraded stats) uses the
// configured quality directly. Rate-controlled encoding steers the
// quantizer by the drift between bits spent and the per-frame budget, then
// biases it with the emitted frame's first-pass stats when available:
// low-complexity frames are coded finer, high-motion frames coarser, since
// their bits buy less.
func (e *Engine) selectQuantizer(rc ports.RateControl, emitIndex int, stats *FrameStats) int {
	q := e.cfg.Quality
	if q == 0 {
		q = defaultQuantizer
	}

	if e.cfg.TargetBitrate <= 0 || rc == nil {
		return clampQuantizer(q)
	}

	budget := float64(e.cfg.TargetBitrate) * 1000 / e.cfg.FPS
	if budget <= 0 {
		return clampQuantizer(q)
	}

	expected := budget * float64(emitIndex)
	drift := (float64(rc.BitsSpent()) - expected) / budget
	switch {
	case drift > 4:
		q += 8
	case drift > 1:
		q += 4
	case drift < -4:
		q -= 8
	case drift < -1:
		q -= 4
	}

	if stats != nil {
		if stats.MotionRatio > 0.5 {
			q += 2
		}
		if stats.IntraError < 4 {
			q -= 2
		}
	}

	return clampQuantizer(q)
}

func clampQuantizer(q int) int {
	if q < minQuantizer {
		return minQuantizer
	}
	if q > maxQuantizer {
		return maxQuantizer
	}
	return q
}
