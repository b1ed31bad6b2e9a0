package sequence

import (
	"fmt"
	"path/filepath"

	"github.com/user/vidseq/pkg/frame"
	"github.com/user/vidseq/pkg/ports"
)

// DefaultExtension is the image format used when none is specified.
const DefaultExtension = "jpg"

// ImageWriter writes each frame of a batch as a numbered still image.
// The counter is monotonic across the writer's lifetime, so successive
// Write calls continue the same numbering.
type ImageWriter struct {
	dir     string
	ext     string
	counter int
	codec   ports.ImageCodec
}

// NewImageWriter ensures the target directory exists (creating it
// recursively if absent) and starts the counter at zero.
func NewImageWriter(dir, extension string, fs ports.FileSystem, codec ports.ImageCodec) (*ImageWriter, error) {
	if extension == "" {
		extension = DefaultExtension
	}
	if err := fs.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("sequence: create directory %q: %w", dir, err)
	}
	return &ImageWriter{
		dir:   dir,
		ext:   extension,
		codec: codec,
	}, nil
}

// Write saves every frame of the batch as
// <dir>/<counter zero-padded to 4>.<ext>, in time order.
func (w *ImageWriter) Write(batch frame.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	for t := 0; t < batch.Frames; t++ {
		name := fmt.Sprintf("%04d.%s", w.counter, w.ext)
		path := filepath.Join(w.dir, name)
		if err := w.codec.Encode(batch.RGBA(t), path); err != nil {
			return fmt.Errorf("sequence: save %q: %w", path, err)
		}
		w.counter++
	}
	return nil
}

// Close is a no-op, kept for symmetry with VideoWriter.
func (w *ImageWriter) Close() error {
	return nil
}
