// Package source produces frame buffers for the canvas model: decoded
// image files and generated scientific fields.
package source

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/webp"

	"github.com/san-kum/framecanvas/internal/canvas"
)

// LoadImage decodes a PNG, JPEG, GIF, TGA or WebP file into an RGBA frame.
func LoadImage(path string) (canvas.FrameBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return canvas.FrameBuffer{}, fmt.Errorf("source: open %s: %w", path, err)
	}
	defer f.Close()

	fb, err := DecodeImage(f)
	if err != nil {
		return canvas.FrameBuffer{}, fmt.Errorf("source: %s: %w", path, err)
	}
	return fb, nil
}

func DecodeImage(r io.Reader) (canvas.FrameBuffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return canvas.FrameBuffer{}, fmt.Errorf("decode: %w", err)
	}
	return FromImage(img), nil
}

// FromImage converts any image to a non-premultiplied RGBA frame with
// shape (width, height, 4).
func FromImage(img image.Image) canvas.FrameBuffer {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return canvas.FrameBuffer{
		Data:  dst.Pix,
		Shape: canvas.Shape{b.Dx(), b.Dy(), canvas.Channels},
	}
}

// ToImage wraps a frame's bytes as an image without copying.
func ToImage(fb canvas.FrameBuffer) (*image.NRGBA, error) {
	if err := fb.Check(); err != nil {
		return nil, err
	}
	w, h := fb.Shape.Width(), fb.Shape.Height()
	return &image.NRGBA{Pix: fb.Data, Stride: w * canvas.Channels, Rect: image.Rect(0, 0, w, h)}, nil
}
