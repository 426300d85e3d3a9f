// Package patternsource generates synthetic test-pattern frames: a moving
// block over a gradient background, with an optional scene cut. It exists
// so encodes can be exercised without any capture input, in demos,
// benchmarks, and integration tests.
package patternsource

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/twopass/pkg/codec"
)

// Options configures the generated sequence.
type Options struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int

	// SceneCutAt inserts an abrupt background change before the frame at
	// this index. Zero disables the cut.
	SceneCutAt int
}

// Source produces a deterministic I420 frame sequence.
type Source struct {
	opts Options
}

// New creates a Source. Invalid options are rejected here, so callers can
// treat Frames as infallible per frame.
func New(opts Options) (*Source, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width%2 != 0 || opts.Height%2 != 0 {
		return nil, fmt.Errorf("patternsource: invalid dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("patternsource: invalid fps %v", opts.FPS)
	}
	if opts.FrameCount <= 0 {
		return nil, fmt.Errorf("patternsource: invalid frame count %d", opts.FrameCount)
	}
	return &Source{opts: opts}, nil
}

// Frames renders the whole sequence.
func (s *Source) Frames() []*codec.RawFrame {
	frames := make([]*codec.RawFrame, 0, s.opts.FrameCount)
	frameDur := int(1000 / s.opts.FPS)
	for i := 0; i < s.opts.FrameCount; i++ {
		frames = append(frames, &codec.RawFrame{
			Data:        s.renderFrame(i),
			Width:       s.opts.Width,
			Height:      s.opts.Height,
			TimestampMs: i * frameDur,
			DurationMs:  frameDur,
		})
	}
	return frames
}

// renderFrame draws frame i at double resolution and downscales, which
// keeps edges soft enough to resemble camera input rather than flat
// synthetic blocks.
func (s *Source) renderFrame(i int) []byte {
	w, h := s.opts.Width, s.opts.Height
	dc := gg.NewContext(w*2, h*2)

	// Background gradient, shifted hard at the scene cut.
	base := 0.15
	if s.opts.SceneCutAt > 0 && i >= s.opts.SceneCutAt {
		base = 0.65
	}
	grad := gg.NewLinearGradient(0, 0, float64(w*2), float64(h*2))
	grad.AddColorStop(0, gradColor(base))
	grad.AddColorStop(1, gradColor(base+0.2))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w*2), float64(h*2))
	dc.Fill()

	// A block orbiting the center gives every frame bounded, non-zero
	// motion for the first pass to measure.
	cx, cy := float64(w), float64(h)
	angle := float64(i) * 0.2
	radius := float64(h) * 0.5
	x := cx + radius*math.Cos(angle)
	y := cy + radius*math.Sin(angle)
	dc.SetRGB(0.9, 0.9, 0.9)
	dc.DrawRectangle(x-float64(w)/8, y-float64(h)/8, float64(w)/4, float64(h)/4)
	dc.Fill()

	src := dc.Image()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return rgbaToI420(dst, w, h)
}

// gradColor maps a 0-1 brightness value to a bluish gray.
func gradColor(v float64) color.Color {
	if v > 1 {
		v = 1
	}
	c := uint8(v * 255)
	return color.RGBA{R: c, G: c, B: uint8(math.Min(float64(c)+30, 255)), A: 255}
}

// rgbaToI420 converts an RGBA image into a packed I420 buffer using the
// BT.601 studio-swing coefficients.
func rgbaToI420(rgba *image.RGBA, width, height int) []byte {
	data := make([]byte, codec.I420Size(width, height))
	yPlane := data[:width*height]
	uPlane := data[width*height : width*height+(width/2)*(height/2)]
	vPlane := data[width*height+(width/2)*(height/2):]

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*rgba.Stride + x*4
			r := int(rgba.Pix[idx])
			g := int(rgba.Pix[idx+1])
			b := int(rgba.Pix[idx+2])

			yVal := ((66*r + 129*g + 25*b + 128) >> 8) + 16
			yPlane[y*width+x] = clamp8(yVal)

			if y%2 == 0 && x%2 == 0 {
				uVal := ((-38*r - 74*g + 112*b + 128) >> 8) + 128
				vVal := ((112*r - 94*g - 18*b + 128) >> 8) + 128
				ci := (y/2)*(width/2) + x/2
				uPlane[ci] = clamp8(uVal)
				vPlane[ci] = clamp8(vVal)
			}
		}
	}
	return data
}

func clamp8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
