// Package av1container implements the media container port with AV1
// encoding via libaom and fragmented-MP4 muxing via mp4ff.
package av1container

import (
	"fmt"
	"os"

	"github.com/user/vidseq/pkg/framerate"
	"github.com/user/vidseq/pkg/ports"
)

// CodecAV1 is the codec identifier this engine supports.
const CodecAV1 = "av01"

// Engine opens output containers backed by libaom and mp4ff.
type Engine struct{}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Open creates the output file at path. The MP4 structure is written
// at Close; opening eagerly surfaces bad paths and permission errors
// at construction time.
func (e *Engine) Open(path string) (ports.MediaContainer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &Container{file: f}, nil
}

// Codecs reports the codecs this engine can encode.
func (e *Engine) Codecs() []string {
	return []string{CodecAV1}
}

// sample is one muxed packet rescaled into track timebase ticks.
type sample struct {
	data       []byte
	decodeTime uint64
	dur        uint32
	isKeyframe bool
}

// Container owns one output MP4 file and at most one video stream.
type Container struct {
	file      *os.File
	stream    *Stream
	timescale uint32
	frameDur  uint32
	samples   []sample
	closed    bool
}

// AddStream creates the container's single AV1 video stream.
func (c *Container) AddStream(codec string, rate framerate.Value, opts ports.StreamOptions) (ports.VideoStream, error) {
	if c.closed {
		return nil, fmt.Errorf("container closed")
	}
	if c.stream != nil {
		return nil, fmt.Errorf("container already has a stream")
	}
	if codec != CodecAV1 {
		return nil, fmt.Errorf("unsupported codec %q", codec)
	}
	if opts.PixelFormat != "" && opts.PixelFormat != "yuv420p" {
		return nil, fmt.Errorf("unsupported pixel format %q", opts.PixelFormat)
	}

	timescale, frameDur, err := timebase(rate)
	if err != nil {
		return nil, err
	}
	c.timescale = timescale
	c.frameDur = frameDur
	c.stream = newStream(timescale, frameDur, opts.BitRate)
	return c.stream, nil
}

// timebase derives the track timescale and per-frame tick count from a
// normalized rate. An exact rational num/den fps maps to timescale num
// with den ticks per frame; a raw float falls back to millisecond-style
// ticks, which newer callers hit only when rational construction
// failed upstream.
func timebase(rate framerate.Value) (timescale, frameDur uint32, err error) {
	if rate.Exact {
		r := rate.Rational
		if r.Num <= 0 || r.Den <= 0 {
			return 0, 0, fmt.Errorf("non-positive frame rate %s", r)
		}
		return uint32(r.Num), uint32(r.Den), nil
	}
	f := rate.Float
	if f <= 0 {
		return 0, 0, fmt.Errorf("non-positive frame rate %v", f)
	}
	return uint32(f*1000 + 0.5), 1000, nil
}

// Mux appends encoded packets to the track in the order supplied.
func (c *Container) Mux(packets []ports.Packet) error {
	if c.closed {
		return fmt.Errorf("container closed")
	}
	if c.stream == nil {
		return fmt.Errorf("container has no stream")
	}
	for _, pkt := range packets {
		if len(pkt.Data) == 0 {
			continue
		}
		dur := pkt.Duration
		if dur <= 0 {
			dur = 1
		}
		c.samples = append(c.samples, sample{
			data:       pkt.Data,
			decodeTime: uint64(pkt.PTS) * uint64(c.frameDur),
			dur:        uint32(dur) * c.frameDur,
			isKeyframe: pkt.IsKeyframe,
		})
	}
	return nil
}

// Close writes the MP4 structure and closes the file. Exactly-once:
// a second Close fails.
func (c *Container) Close() error {
	if c.closed {
		return fmt.Errorf("container already closed")
	}
	c.closed = true

	var width, height int
	if c.stream != nil {
		width, height = c.stream.Width(), c.stream.Height()
		c.stream.destroy()
	}

	data, err := buildMP4(c.samples, c.timescale, width, height)
	if err != nil {
		c.file.Close()
		return fmt.Errorf("build mp4: %w", err)
	}
	if _, err := c.file.Write(data); err != nil {
		c.file.Close()
		return fmt.Errorf("write mp4: %w", err)
	}
	return c.file.Close()
}

// Ensure interfaces are satisfied
var (
	_ ports.ContainerEngine = (*Engine)(nil)
	_ ports.MediaContainer  = (*Container)(nil)
)
