package mocks

import (
	"fmt"
	"image"

	"github.com/user/vidseq/pkg/framerate"
	"github.com/user/vidseq/pkg/ports"
)

// VideoSource is a mock implementation of ports.VideoSource backed by
// a slice of images.
type VideoSource struct {
	Images []image.Image
	Rate   framerate.Rate
	Closed bool

	FrameFunc func(index int) (image.Image, error)
}

// NewVideoSource creates a mock source with n solid frames of the
// given size and rate.
func NewVideoSource(n, width, height int, rate framerate.Rate) *VideoSource {
	imgs := make([]image.Image, n)
	for i := range imgs {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p] = byte(i)
			img.Pix[p+3] = 255
		}
		imgs[i] = img
	}
	return &VideoSource{Images: imgs, Rate: rate}
}

func (m *VideoSource) FrameRate() framerate.Rate { return m.Rate }

func (m *VideoSource) Len() int { return len(m.Images) }

func (m *VideoSource) Frame(index int) (image.Image, error) {
	if m.FrameFunc != nil {
		return m.FrameFunc(index)
	}
	if index < 0 || index >= len(m.Images) {
		return nil, fmt.Errorf("frame %d not available", index)
	}
	return m.Images[index], nil
}

func (m *VideoSource) Close() error {
	m.Closed = true
	return nil
}

var _ ports.VideoSource = (*VideoSource)(nil)
