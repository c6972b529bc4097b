package canvas

import (
	"context"
	"image"

	"golang.org/x/image/draw"
)

// Decoder turns a pixel buffer snapshot into a drawable bitmap, cropped to
// r. Implementations should return ctx.Err() once ctx is canceled.
type Decoder interface {
	Decode(ctx context.Context, src *image.NRGBA, r image.Rectangle) (image.Image, error)
}

type DecoderFunc func(ctx context.Context, src *image.NRGBA, r image.Rectangle) (image.Image, error)

func (f DecoderFunc) Decode(ctx context.Context, src *image.NRGBA, r image.Rectangle) (image.Image, error) {
	return f(ctx, src, r)
}

// BitmapDecoder copies the cropped region into a new zero-origin image.
type BitmapDecoder struct{}

func (BitmapDecoder) Decode(ctx context.Context, src *image.NRGBA, r image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r = r.Intersect(src.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(dst, image.Point{}, src, r, draw.Src, nil)
	return dst, nil
}
