package mocks

import (
	"fmt"

	"github.com/user/vidseq/pkg/framerate"
	"github.com/user/vidseq/pkg/ports"
)

// ContainerEngine is a mock implementation of ports.ContainerEngine.
type ContainerEngine struct {
	OpenFunc   func(path string) (ports.MediaContainer, error)
	CodecsFunc func() []string

	// Containers records every container handed out, by path.
	Containers map[string]*MediaContainer
}

// NewContainerEngine creates a new mock ContainerEngine.
func NewContainerEngine() *ContainerEngine {
	return &ContainerEngine{Containers: make(map[string]*MediaContainer)}
}

func (m *ContainerEngine) Open(path string) (ports.MediaContainer, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}
	c := NewMediaContainer()
	m.Containers[path] = c
	return c, nil
}

func (m *ContainerEngine) Codecs() []string {
	if m.CodecsFunc != nil {
		return m.CodecsFunc()
	}
	return []string{"av01"}
}

// MediaContainer is a mock implementation of ports.MediaContainer.
type MediaContainer struct {
	Stream *VideoStream
	Muxed  []ports.Packet
	Closed bool

	AddStreamFunc func(codec string, rate framerate.Value, opts ports.StreamOptions) (ports.VideoStream, error)
	MuxFunc       func(packets []ports.Packet) error
	CloseFunc     func() error

	// Recorded AddStream arguments.
	Codec   string
	Rate    framerate.Value
	Options ports.StreamOptions
}

// NewMediaContainer creates a new mock MediaContainer.
func NewMediaContainer() *MediaContainer {
	return &MediaContainer{}
}

func (m *MediaContainer) AddStream(codec string, rate framerate.Value, opts ports.StreamOptions) (ports.VideoStream, error) {
	if m.AddStreamFunc != nil {
		return m.AddStreamFunc(codec, rate, opts)
	}
	if m.Stream != nil {
		return nil, fmt.Errorf("stream already added")
	}
	m.Codec = codec
	m.Rate = rate
	m.Options = opts
	m.Stream = NewVideoStream()
	return m.Stream, nil
}

func (m *MediaContainer) Mux(packets []ports.Packet) error {
	if m.MuxFunc != nil {
		return m.MuxFunc(packets)
	}
	if m.Closed {
		return fmt.Errorf("container closed")
	}
	m.Muxed = append(m.Muxed, packets...)
	return nil
}

func (m *MediaContainer) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	if m.Closed {
		return fmt.Errorf("container already closed")
	}
	m.Closed = true
	return nil
}

// VideoStream is a mock implementation of ports.VideoStream. Each
// Encode of a frame returns one packet whose PTS is the frame's write
// position; Encode(nil) returns one drain packet, simulating a
// buffered encoder tail.
type VideoStream struct {
	W, H    int
	Frames  []*ports.RawFrame
	Drained bool

	EncodeFunc func(f *ports.RawFrame) ([]ports.Packet, error)
}

// NewVideoStream creates a new mock VideoStream.
func NewVideoStream() *VideoStream {
	return &VideoStream{}
}

func (m *VideoStream) SetSize(width, height int) {
	m.W, m.H = width, height
}

func (m *VideoStream) Width() int  { return m.W }
func (m *VideoStream) Height() int { return m.H }

func (m *VideoStream) Encode(f *ports.RawFrame) ([]ports.Packet, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(f)
	}
	if f == nil {
		m.Drained = true
		return []ports.Packet{{PTS: int64(len(m.Frames)), Duration: 1}}, nil
	}
	pkt := ports.Packet{
		Data:       append([]byte(nil), f.Pix[:min(8, len(f.Pix))]...),
		PTS:        int64(len(m.Frames)),
		Duration:   1,
		IsKeyframe: len(m.Frames) == 0,
	}
	m.Frames = append(m.Frames, f)
	return []ports.Packet{pkt}, nil
}

var (
	_ ports.ContainerEngine = (*ContainerEngine)(nil)
	_ ports.MediaContainer  = (*MediaContainer)(nil)
	_ ports.VideoStream     = (*VideoStream)(nil)
)
