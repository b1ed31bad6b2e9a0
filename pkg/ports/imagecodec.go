package ports

import "image"

// ImageCodec abstracts still-image decoding and encoding. Decode opens,
// fully loads, and releases the file; Encode chooses the format from
// the path's extension.
type ImageCodec interface {
	Decode(path string) (image.Image, error)
	Encode(img image.Image, path string) error
}
