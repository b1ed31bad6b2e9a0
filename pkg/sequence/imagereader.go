package sequence

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/vidseq/pkg/ports"
)

// ImageReader reads frames from a directory of still images, in
// lexicographic filename order.
type ImageReader struct {
	dir       string
	files     []string
	codec     ports.ImageCodec
	transform Transform
}

// NewImageReader snapshots the directory listing once. Files added or
// removed afterwards are not observed.
func NewImageReader(dir string, fs ports.FileSystem, codec ports.ImageCodec, transform Transform) (*ImageReader, error) {
	files, err := fs.ListDir(dir)
	if err != nil {
		return nil, fmt.Errorf("sequence: list %q: %w", dir, err)
	}
	return &ImageReader{
		dir:       dir,
		files:     files,
		codec:     codec,
		transform: transform,
	}, nil
}

// Len returns the number of files in the snapshot.
func (r *ImageReader) Len() int {
	return len(r.files)
}

// Get fully loads and decodes the file at the given sorted position.
// The file handle is held only for the duration of the call.
func (r *ImageReader) Get(index int) (image.Image, error) {
	if index < 0 || index >= len(r.files) {
		return nil, &IndexError{Index: index, Len: len(r.files)}
	}
	path := filepath.Join(r.dir, r.files[index])
	img, err := r.codec.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("sequence: decode %q: %w", path, err)
	}
	if r.transform != nil {
		return r.transform(img)
	}
	return img, nil
}

// Close is a no-op; each Get releases its file handle before
// returning.
func (r *ImageReader) Close() error {
	return nil
}

var _ Reader = (*ImageReader)(nil)
