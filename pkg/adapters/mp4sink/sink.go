// Package mp4sink muxes frame packets into a fragmented MP4 container.
package mp4sink

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/twopass/pkg/codec"
)

// sampleEntryType is the fourcc registered for the block codec's samples.
const sampleEntryType = "bvc1"

// Config describes the video track being muxed.
type Config struct {
	Width  int
	Height int
	FPS    float64
}

// Sink builds MP4 files from encoder frame packets.
type Sink struct{}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

// Build creates a fragmented MP4 from frame packets in emission order.
// Stats packets in the input are rejected: only a last- or single-pass
// packet stream is muxable.
func (s *Sink) Build(packets []codec.Packet, cfg Config) ([]byte, error) {
	if len(packets) == 0 {
		return nil, fmt.Errorf("no packets to mux")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return nil, fmt.Errorf("invalid track config %dx%d @ %v fps", cfg.Width, cfg.Height, cfg.FPS)
	}
	for _, p := range packets {
		if p.Kind != codec.PacketFrame {
			return nil, fmt.Errorf("cannot mux %s packet", p.Kind)
		}
	}

	timescale := uint32(cfg.FPS * 1000)
	trackID := uint32(1)

	// Create initialization segment
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")

	trak := init.Moov.Trak

	btrt := &mp4.BtrtBox{
		BufferSizeDB: uint32(avgPacketSize(packets)),
		MaxBitrate:   uint32(maxBitrate(packets, cfg.FPS)),
		AvgBitrate:   uint32(avgBitrate(packets, cfg.FPS)),
	}
	entry := mp4.CreateVisualSampleEntryBox(sampleEntryType, uint16(cfg.Width), uint16(cfg.Height), btrt)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)

	trak.Tkhd.Width = mp4.Fixed32(cfg.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(cfg.Height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	defaultDur := uint32(timescale) / uint32(cfg.FPS)
	for i, p := range packets {
		// Duration in timescale units, from explicit packet duration or
		// the gap to the next packet, falling back to one frame period.
		var dur uint32
		switch {
		case p.DurationMs > 0:
			dur = uint32(p.DurationMs) * timescale / 1000
		case i < len(packets)-1 && packets[i+1].TimestampMs > p.TimestampMs:
			dur = uint32(packets[i+1].TimestampMs-p.TimestampMs) * timescale / 1000
		default:
			dur = defaultDur
		}
		if dur == 0 {
			dur = defaultDur
		}

		decodeTime := uint64(p.TimestampMs) * uint64(timescale) / 1000

		flags := mp4.NonSyncSampleFlags
		if p.Keyframe {
			flags = mp4.SyncSampleFlags
		}

		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(p.Payload)),
				Dur:   dur,
			},
			DecodeTime: decodeTime,
			Data:       p.Payload,
		})
	}

	var buf bytes.Buffer

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", sampleEntryType, "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}

	return buf.Bytes(), nil
}

func totalPayload(packets []codec.Packet) int {
	total := 0
	for _, p := range packets {
		total += len(p.Payload)
	}
	return total
}

func avgPacketSize(packets []codec.Packet) int {
	return totalPayload(packets) / len(packets)
}

func avgBitrate(packets []codec.Packet, fps float64) int {
	return int(float64(totalPayload(packets)*8) * fps / float64(len(packets)))
}

func maxBitrate(packets []codec.Packet, fps float64) int {
	max := 0
	for _, p := range packets {
		if len(p.Payload) > max {
			max = len(p.Payload)
		}
	}
	return int(float64(max*8) * fps)
}
