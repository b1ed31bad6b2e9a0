package mocks

import (
	"fmt"
	"image"
	"sync"

	"github.com/user/vidseq/pkg/ports"
)

// ImageCodec is a mock implementation of ports.ImageCodec that keeps
// encoded images in memory.
type ImageCodec struct {
	mu     sync.Mutex
	images map[string]image.Image
	order  []string

	DecodeFunc func(path string) (image.Image, error)
	EncodeFunc func(img image.Image, path string) error
}

// NewImageCodec creates a new mock ImageCodec.
func NewImageCodec() *ImageCodec {
	return &ImageCodec{images: make(map[string]image.Image)}
}

func (m *ImageCodec) Decode(path string) (image.Image, error) {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if img, ok := m.images[path]; ok {
		return img, nil
	}
	return nil, fmt.Errorf("image not found: %s", path)
}

func (m *ImageCodec) Encode(img image.Image, path string) error {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[path]; !ok {
		m.order = append(m.order, path)
	}
	m.images[path] = img
	return nil
}

// Put seeds a decodable image (for reader tests).
func (m *ImageCodec) Put(path string, img image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[path] = img
}

// Saved returns the encoded paths in write order.
func (m *ImageCodec) Saved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Get returns the image encoded at path.
func (m *ImageCodec) Get(path string) (image.Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[path]
	return img, ok
}

var _ ports.ImageCodec = (*ImageCodec)(nil)
