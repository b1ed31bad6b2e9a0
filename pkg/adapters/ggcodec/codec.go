// Package ggcodec provides a still-image codec using the gg library
// for encoding and the standard image decoders for reading.
package ggcodec

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"github.com/user/vidseq/pkg/ports"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// Codec implements ports.ImageCodec. The output format is chosen from
// the path's extension.
type Codec struct {
	quality int
}

// New creates a Codec with the default JPEG quality.
func New() *Codec {
	return &Codec{quality: DefaultQuality}
}

// NewWithQuality creates a Codec with an explicit JPEG quality (1-100).
func NewWithQuality(quality int) *Codec {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Codec{quality: quality}
}

// Decode opens, fully decodes and closes the file at path.
func (c *Codec) Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	return img, nil
}

// Encode writes the image to path in the format named by its
// extension.
func (c *Codec) Encode(img image.Image, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if err := gg.SavePNG(path, img); err != nil {
			return fmt.Errorf("save PNG: %w", err)
		}
	case ".jpg", ".jpeg":
		if err := gg.SaveJPG(path, img, c.quality); err != nil {
			return fmt.Errorf("save JPEG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported image extension %q", filepath.Ext(path))
	}
	return nil
}

// Ensure Codec implements ports.ImageCodec
var _ ports.ImageCodec = (*Codec)(nil)
