package blockencoder

// Block geometry and analysis thresholds shared by the first pass and the
// bitstream coder.
const (
	blockSize = 16

	// motionThreshold is the per-block mean absolute difference above
	// which a block counts as moving in the first-pass motion ratio.
	motionThreshold = 12.0

	// sceneCutRatio flags a keyframe cue when inter error exceeds this
	// multiple of intra error.
	sceneCutRatio = 0.9
)

// blockMean returns the mean luma of the block at (bx, by), clipped to the
// frame edges.
func blockMean(luma []byte, width, height, bx, by int) float64 {
	var sum, n int
	for y := by; y < by+blockSize && y < height; y++ {
		row := y * width
		for x := bx; x < bx+blockSize && x < width; x++ {
			sum += int(luma[row+x])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// blockDeviation returns the mean absolute deviation of the block's pixels
// from the given mean, a cheap spatial activity measure.
func blockDeviation(luma []byte, width, height, bx, by int, mean float64) float64 {
	var sum float64
	n := 0
	for y := by; y < by+blockSize && y < height; y++ {
		row := y * width
		for x := bx; x < bx+blockSize && x < width; x++ {
			d := float64(luma[row+x]) - mean
			if d < 0 {
				d = -d
			}
			sum += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// blockSAD returns the mean absolute difference between co-located blocks
// of two luma planes.
func blockSAD(luma, prev []byte, width, height, bx, by int) float64 {
	var sum, n int
	for y := by; y < by+blockSize && y < height; y++ {
		row := y * width
		for x := bx; x < bx+blockSize && x < width; x++ {
			d := int(luma[row+x]) - int(prev[row+x])
			if d < 0 {
				d = -d
			}
			sum += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
