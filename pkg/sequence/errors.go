package sequence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/user/vidseq/pkg/framerate"
)

var (
	// ErrIndexOutOfRange is returned by reader access outside
	// [0, Len).
	ErrIndexOutOfRange = errors.New("sequence: index out of range")

	// ErrWriterClosed is returned when Write or Close is called on a
	// finalized writer.
	ErrWriterClosed = errors.New("sequence: writer closed")
)

// IndexError reports the offending index and the valid bound.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("sequence: index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// ContainerOpenError reports a failure to open the output container.
type ContainerOpenError struct {
	Path string
	Err  error
}

func (e *ContainerOpenError) Error() string {
	return fmt.Sprintf("sequence: open container %q: %v", e.Path, e.Err)
}

func (e *ContainerOpenError) Unwrap() error { return e.Err }

// StreamCreateError reports a failure to create the output video
// stream. It carries the rate that was attempted and the codecs the
// engine reports as available, the two facts needed to diagnose
// malformed frame-rate metadata in the field.
type StreamCreateError struct {
	Codec  string
	Rate   framerate.Value
	Codecs []string
	Err    error
}

func (e *StreamCreateError) Error() string {
	return fmt.Sprintf("sequence: create %s stream with rate %s (available codecs: %s): %v",
		e.Codec, e.Rate, strings.Join(e.Codecs, ", "), e.Err)
}

func (e *StreamCreateError) Unwrap() error { return e.Err }
