package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferShapeMismatch indicates a frame whose byte length is not
	// width*height*4.
	ErrBufferShapeMismatch = errors.New("canvas: buffer length does not match shape")

	// ErrInvalidShape indicates fewer than two, more than three, or negative
	// dimensions.
	ErrInvalidShape = errors.New("canvas: invalid shape")

	// ErrDecodeFailure indicates the bitmap decode of a redraw failed.
	ErrDecodeFailure = errors.New("canvas: bitmap decode failed")

	// ErrInvalidDimension indicates an unparseable display width or height.
	ErrInvalidDimension = errors.New("canvas: invalid display dimension")

	// ErrMissingData indicates the host has no frame buffer set.
	ErrMissingData = errors.New("canvas: no frame buffer")

	// ErrBadFrame indicates the host's image_array holds something other
	// than a frame buffer.
	ErrBadFrame = errors.New("canvas: image_array is not a frame buffer")

	ErrClosed = errors.New("canvas: closed")
)

// UpdateError is returned for a rejected data update. The previous pixel
// buffer and display are left as they were. Want is -1 when the shape's
// byte length does not fit in an int.
type UpdateError struct {
	Shape Shape
	Len   int
	Want  int
	Err   error
}

func (e *UpdateError) Error() string {
	if e.Want < 0 {
		return fmt.Sprintf("%v: shape %v is too large, got %d bytes", e.Err, e.Shape, e.Len)
	}
	if e.Want > 0 || errors.Is(e.Err, ErrBufferShapeMismatch) {
		return fmt.Sprintf("%v: shape %v needs %d bytes, got %d", e.Err, e.Shape, e.Want, e.Len)
	}
	return fmt.Sprintf("%v (shape %v)", e.Err, e.Shape)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// DecodeError reports a failed redraw decode.
type DecodeError struct {
	Generation uint64
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: generation %d: %v", ErrDecodeFailure, e.Generation, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecodeFailure, e.Err}
}
