// Package sequence provides index-addressable readers over on-disk
// media and order-preserving writers from frame batches back to disk.
package sequence

import (
	"fmt"
	"image"

	"github.com/user/vidseq/pkg/framerate"
	"github.com/user/vidseq/pkg/ports"
)

// Transform is a pure per-frame mapping applied by a reader before the
// frame is returned.
type Transform func(image.Image) (image.Image, error)

// Reader is an ordered, length-bounded, randomly indexable view of
// decoded frames.
type Reader interface {
	Len() int
	Get(index int) (image.Image, error)
	Close() error
}

// VideoReader reads frames from a decodable video.
type VideoReader struct {
	source    ports.VideoSource
	rate      framerate.Rate
	transform Transform
}

// NewVideoReader wraps an open video source. The source's raw
// frame-rate value is captured here; it is not normalized until the
// rate accessors are called.
func NewVideoReader(source ports.VideoSource, transform Transform) *VideoReader {
	return &VideoReader{
		source:    source,
		rate:      source.FrameRate(),
		transform: transform,
	}
}

// Len returns the source's frame count. Fixed after construction.
func (r *VideoReader) Len() int {
	return r.source.Len()
}

// FrameRate returns the frame rate as a plain number. The captured raw
// value is normalized on every call; a string-typed rate that does not
// parse fails with framerate.ErrInvalidFrameRate.
func (r *VideoReader) FrameRate() (float64, error) {
	return r.rate.Float64()
}

// NormalizedRate returns the frame rate as an exact rational suitable
// for configuring an output stream.
func (r *VideoReader) NormalizedRate() (framerate.Rational, error) {
	return r.rate.Normalize()
}

// Rate returns the raw frame-rate value as captured at construction.
func (r *VideoReader) Rate() framerate.Rate {
	return r.rate
}

// Get decodes the frame at index, applying the transform if set.
func (r *VideoReader) Get(index int) (image.Image, error) {
	if index < 0 || index >= r.source.Len() {
		return nil, &IndexError{Index: index, Len: r.source.Len()}
	}
	img, err := r.source.Frame(index)
	if err != nil {
		return nil, fmt.Errorf("sequence: decode frame %d: %w", index, err)
	}
	if r.transform != nil {
		return r.transform(img)
	}
	return img, nil
}

// Close releases the underlying source.
func (r *VideoReader) Close() error {
	return r.source.Close()
}

var _ Reader = (*VideoReader)(nil)
