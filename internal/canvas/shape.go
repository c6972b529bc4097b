package canvas

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Channels is the number of bytes per pixel in a PixelBuffer (RGBA8).
const Channels = 4

// Shape is the ordered dimension list of a frame: width, height and an
// optional channel count.
type Shape []int

// Sentinel is the shape recorded before any frame arrives. It never equals
// a valid shape, so the first frame always allocates.
func Sentinel() Shape { return Shape{-1, -1, -1} }

// Equal reports element-wise equality, including length.
func (s Shape) Equal(o Shape) bool { return slices.Equal(s, o) }

func (s Shape) Clone() Shape { return slices.Clone(s) }

func (s Shape) IsSentinel() bool { return s.Equal(Sentinel()) }

func (s Shape) Width() int {
	if len(s) < 1 {
		return 0
	}
	return s[0]
}

func (s Shape) Height() int {
	if len(s) < 2 {
		return 0
	}
	return s[1]
}

// ByteLen is the RGBA byte length implied by the first two dimensions.
// It is only meaningful for shapes that pass Validate.
func (s Shape) ByteLen() int { return s.Width() * s.Height() * Channels }

// fits reports whether ByteLen does not overflow an int.
func (s Shape) fits() bool {
	w, h := s.Width(), s.Height()
	return w == 0 || h <= math.MaxInt/Channels/w
}

// Validate checks that s describes a drawable frame.
func (s Shape) Validate() error {
	if len(s) < 2 || len(s) > 3 {
		return fmt.Errorf("%w: %d dimensions", ErrInvalidShape, len(s))
	}
	for i, d := range s {
		if d < 0 {
			return fmt.Errorf("%w: dimension %d is %d", ErrInvalidShape, i, d)
		}
	}
	return nil
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// FrameBuffer is a flat byte array and the shape it claims to have. The
// canvas only borrows it for the duration of one update.
type FrameBuffer struct {
	Data  []byte
	Shape Shape
}

// Check returns an error when the data length disagrees with the shape.
func (f FrameBuffer) Check() error {
	if err := f.Shape.Validate(); err != nil {
		return &UpdateError{Shape: f.Shape.Clone(), Len: len(f.Data), Err: err}
	}
	if !f.Shape.fits() {
		return &UpdateError{Shape: f.Shape.Clone(), Len: len(f.Data), Want: -1, Err: ErrBufferShapeMismatch}
	}
	if want := f.Shape.ByteLen(); len(f.Data) != want {
		return &UpdateError{Shape: f.Shape.Clone(), Len: len(f.Data), Want: want, Err: ErrBufferShapeMismatch}
	}
	return nil
}
