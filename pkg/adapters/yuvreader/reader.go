// Package yuvreader reads raw I420 frame sequences from files.
package yuvreader

import (
	"fmt"

	"github.com/user/twopass/pkg/codec"
	"github.com/user/twopass/pkg/ports"
)

// Reader loads headerless I420 files (the common .yuv layout: frames
// concatenated back to back) through the FileSystem port.
type Reader struct {
	fs ports.FileSystem
}

// New creates a Reader.
func New(fs ports.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// ReadFrames reads every frame from path. The file length must be a whole
// number of width x height I420 frames; timestamps are synthesized from
// fps since raw files carry no timing.
func (r *Reader) ReadFrames(path string, width, height int, fps float64) ([]*codec.RawFrame, error) {
	if width <= 0 || height <= 0 || width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("yuvreader: invalid dimensions %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("yuvreader: invalid fps %v", fps)
	}

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	frameSize := codec.I420Size(width, height)
	if len(data) == 0 || len(data)%frameSize != 0 {
		return nil, fmt.Errorf("yuvreader: %s is %d bytes, not a whole number of %dx%d frames (%d bytes each)",
			path, len(data), width, height, frameSize)
	}

	count := len(data) / frameSize
	frameDur := int(1000 / fps)
	frames := make([]*codec.RawFrame, 0, count)
	for i := 0; i < count; i++ {
		frames = append(frames, &codec.RawFrame{
			Data:        data[i*frameSize : (i+1)*frameSize],
			Width:       width,
			Height:      height,
			TimestampMs: i * frameDur,
			DurationMs:  frameDur,
		})
	}
	return frames, nil
}
