package ports

import (
	"github.com/user/vidseq/pkg/framerate"
)

// RawFrame is one uncompressed frame handed to a stream encoder:
// 8-bit interleaved RGB in row-major (height, width, channel) order.
type RawFrame struct {
	Pix    []byte
	Width  int
	Height int
}

// Packet is one encoded unit ready to be muxed. PTS and Duration are
// in the stream's timebase.
type Packet struct {
	Data       []byte
	PTS        int64
	Duration   int64
	IsKeyframe bool
}

// StreamOptions configures a video stream at creation time.
type StreamOptions struct {
	PixelFormat string // e.g. "yuv420p"
	BitRate     int    // target bit rate in bits per second
}

// VideoStream is a single encoded video stream within a container.
// Width and height are set from the first written batch, before the
// first Encode call.
type VideoStream interface {
	SetSize(width, height int)
	Width() int
	Height() int

	// Encode compresses one frame and returns any packets that became
	// available. A nil frame signals end of stream and drains the
	// encoder's buffered packets.
	Encode(f *RawFrame) ([]Packet, error)
}

// MediaContainer owns one on-disk media file opened for writing.
// It holds exactly one video stream for its lifetime and must be
// closed exactly once; an unclosed container leaves the file
// incomplete.
type MediaContainer interface {
	// AddStream creates the container's single video stream with the
	// given codec and frame rate. Calling it twice is an error.
	AddStream(codec string, rate framerate.Value, opts StreamOptions) (VideoStream, error)

	// Mux interleaves encoded packets into the output, preserving the
	// order they are supplied in.
	Mux(packets []Packet) error

	// Close flushes and finalizes the file.
	Close() error
}

// ContainerEngine abstracts the media container library.
type ContainerEngine interface {
	// Open creates the output file at path for writing.
	Open(path string) (MediaContainer, error)

	// Codecs reports the codec identifiers the engine supports, used
	// for diagnostics when stream creation fails.
	Codecs() []string
}
