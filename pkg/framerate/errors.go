package framerate

import (
	"errors"
	"fmt"
)

// ErrInvalidFrameRate is the sentinel for rate values that cannot be
// interpreted as a number, such as non-numeric metadata strings.
// A bad rate is never silently replaced by a default, since a wrong
// rate corrupts playback timing.
var ErrInvalidFrameRate = errors.New("framerate: invalid frame rate")

// InvalidRateError reports the offending value alongside
// ErrInvalidFrameRate.
type InvalidRateError struct {
	Value string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("framerate: invalid frame rate %q: cannot be converted to a number", e.Value)
}

func (e *InvalidRateError) Unwrap() error { return ErrInvalidFrameRate }

// UnsupportedTypeError reports a rate whose representation is neither
// numeric, textual nor rational.
type UnsupportedTypeError struct {
	Kind Kind
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("framerate: unsupported frame rate representation %q", e.Kind)
}
