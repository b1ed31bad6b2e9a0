package ports

import (
	"image"

	"github.com/user/vidseq/pkg/framerate"
)

// VideoSource is an open, decodable video with a fixed frame count.
type VideoSource interface {
	// FrameRate returns the raw frame-rate value as found in the
	// file's metadata, without normalization.
	FrameRate() framerate.Rate

	// Len returns the number of frames.
	Len() int

	// Frame decodes and returns the frame at the given position.
	// Access may advance the decoder's internal state.
	Frame(index int) (image.Image, error)

	// Close releases decoder resources.
	Close() error
}

// SourceEngine abstracts the video decode library.
type SourceEngine interface {
	Open(path string) (VideoSource, error)
}
