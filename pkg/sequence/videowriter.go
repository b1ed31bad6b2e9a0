package sequence

import (
	"fmt"

	"github.com/user/vidseq/pkg/frame"
	"github.com/user/vidseq/pkg/framerate"
	"github.com/user/vidseq/pkg/ports"
)

// Defaults for video stream configuration.
const (
	DefaultCodec       = "av01"
	DefaultPixelFormat = "yuv420p"
	DefaultBitRate     = 1_000_000
)

// VideoWriterOptions configures a VideoWriter beyond path and rate.
// Zero values select the defaults above.
type VideoWriterOptions struct {
	Codec       string
	PixelFormat string
	BitRate     int
	Logger      ports.Logger
}

// VideoWriter owns one output container and its single video stream.
// It accepts writes until Close, which finalizes the file; a writer
// that is never closed leaves the output unplayable. Closing and
// finalization are the caller's responsibility.
type VideoWriter struct {
	container ports.MediaContainer
	stream    ports.VideoStream
	log       ports.Logger
	sized     bool
	closed    bool
}

// NewVideoWriter opens the output container at path and creates its
// video stream with the normalized frame rate.
//
// Rate errors (unparseable or unsupported representations) surface
// immediately; a rate is never silently replaced. When rational
// construction fails for an otherwise numeric rate, the raw float is
// passed through to the engine, which may accept it.
func NewVideoWriter(engine ports.ContainerEngine, path string, rate framerate.Rate, opts VideoWriterOptions) (*VideoWriter, error) {
	if opts.Codec == "" {
		opts.Codec = DefaultCodec
	}
	if opts.PixelFormat == "" {
		opts.PixelFormat = DefaultPixelFormat
	}
	if opts.BitRate == 0 {
		opts.BitRate = DefaultBitRate
	}
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	log = log.WithComponent("videowriter")

	value, err := rate.Resolve()
	if err != nil {
		return nil, err
	}
	if value.Exact {
		log.Debug("Normalized frame rate %v to %s", rate.Kind(), value)
	} else {
		log.Warn("Frame rate %v did not normalize to a rational, passing raw value %s", rate.Kind(), value)
	}

	container, err := engine.Open(path)
	if err != nil {
		return nil, &ContainerOpenError{Path: path, Err: err}
	}
	log.Debug("Opened container %s", path)

	stream, err := container.AddStream(opts.Codec, value, ports.StreamOptions{
		PixelFormat: opts.PixelFormat,
		BitRate:     opts.BitRate,
	})
	if err != nil {
		codecs := engine.Codecs()
		log.Error("Failed to create %s stream with rate %s, available codecs: %v", opts.Codec, value, codecs)
		container.Close()
		return nil, &StreamCreateError{Codec: opts.Codec, Rate: value, Codecs: codecs, Err: err}
	}
	log.Debug("Created %s stream, pixel format %s, bit rate %d", opts.Codec, opts.PixelFormat, opts.BitRate)

	return &VideoWriter{
		container: container,
		stream:    stream,
		log:       log,
	}, nil
}

// Write encodes and muxes every frame of the batch in time order.
// Stream dimensions are taken from the first batch; later batches are
// expected to match (mismatches are the caller's responsibility).
// Grayscale batches are broadcast to 3 channels.
//
// A failure partway through a batch is not rolled back: frames already
// muxed stay in the output, leaving its tail indeterminate.
func (w *VideoWriter) Write(batch frame.Batch) error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := batch.Validate(); err != nil {
		return err
	}

	if !w.sized {
		w.stream.SetSize(batch.Width, batch.Height)
		w.sized = true
		w.log.Debug("Stream size set to %dx%d", batch.Width, batch.Height)
	}

	if batch.Channels == 1 {
		batch = batch.BroadcastGray()
	}

	for t := 0; t < batch.Frames; t++ {
		raw := ports.RawFrame{
			Pix:    batch.RGB24(t),
			Width:  batch.Width,
			Height: batch.Height,
		}
		packets, err := w.stream.Encode(&raw)
		if err != nil {
			return fmt.Errorf("sequence: encode frame %d: %w", t, err)
		}
		if err := w.container.Mux(packets); err != nil {
			return fmt.Errorf("sequence: mux frame %d: %w", t, err)
		}
	}
	return nil
}

// Close drains the encoder, muxes the remaining packets and finalizes
// the container. It must be called exactly once; further calls and
// writes fail with ErrWriterClosed.
func (w *VideoWriter) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	packets, err := w.stream.Encode(nil)
	if err != nil {
		return fmt.Errorf("sequence: drain encoder: %w", err)
	}
	if err := w.container.Mux(packets); err != nil {
		return fmt.Errorf("sequence: mux tail packets: %w", err)
	}
	if err := w.container.Close(); err != nil {
		return fmt.Errorf("sequence: close container: %w", err)
	}
	w.log.Debug("Container finalized")
	return nil
}

// noopLogger backs writers constructed without a logger.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{})          {}
func (noopLogger) Info(string, ...interface{})           {}
func (noopLogger) Warn(string, ...interface{})           {}
func (noopLogger) Error(string, ...interface{})          {}
func (n noopLogger) WithComponent(string) ports.Logger   { return n }
