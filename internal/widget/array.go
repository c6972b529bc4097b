package widget

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/framecanvas/internal/canvas"
)

var arrayMagic = [4]byte{'F', 'C', 'A', '1'}

var ErrBadArray = errors.New("widget: malformed array payload")

const maxDims = 8

// EncodeArray packs a frame as magic, ndim (uint32), dims (int32 each) and
// the raw bytes, little-endian.
func EncodeArray(fb canvas.FrameBuffer) ([]byte, error) {
	if len(fb.Shape) > maxDims {
		return nil, fmt.Errorf("%w: %d dimensions", ErrBadArray, len(fb.Shape))
	}
	var buf bytes.Buffer
	buf.Grow(8 + 4*len(fb.Shape) + len(fb.Data))
	buf.Write(arrayMagic[:])
	binary.Write(&buf, binary.LittleEndian, uint32(len(fb.Shape)))
	for _, d := range fb.Shape {
		binary.Write(&buf, binary.LittleEndian, int32(d))
	}
	buf.Write(fb.Data)
	return buf.Bytes(), nil
}

func DecodeArray(p []byte) (canvas.FrameBuffer, error) {
	r := bytes.NewReader(p)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != arrayMagic {
		return canvas.FrameBuffer{}, fmt.Errorf("%w: bad header", ErrBadArray)
	}

	var ndim uint32
	if err := binary.Read(r, binary.LittleEndian, &ndim); err != nil {
		return canvas.FrameBuffer{}, fmt.Errorf("%w: %w", ErrBadArray, err)
	}
	if ndim > maxDims {
		return canvas.FrameBuffer{}, fmt.Errorf("%w: %d dimensions", ErrBadArray, ndim)
	}

	shape := make(canvas.Shape, ndim)
	for i := range shape {
		var d int32
		if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
			return canvas.FrameBuffer{}, fmt.Errorf("%w: %w", ErrBadArray, err)
		}
		shape[i] = int(d)
	}

	data := make([]byte, r.Len())
	if _, err := io.ReadFull(r, data); err != nil {
		return canvas.FrameBuffer{}, fmt.Errorf("%w: %w", ErrBadArray, err)
	}
	return canvas.FrameBuffer{Data: data, Shape: shape}, nil
}
