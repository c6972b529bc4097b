// Package surface provides an in-memory drawing target for a canvas.
package surface

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"

	"github.com/san-kum/framecanvas/internal/canvas"
	"github.com/san-kum/framecanvas/internal/cssdim"
)

// Style limits applied when a display size is resolved, matching the
// widget's max-width: 100%; min-width: 100px; min-height: 100px.
var (
	WidthLimits  = cssdim.Constraint{Min: cssdim.Pixels(100), Max: cssdim.Percentage(100)}
	HeightLimits = cssdim.Constraint{Min: cssdim.Pixels(100)}
)

// Raster is a canvas.Surface backed by an RGBA image whose size follows
// the display size resolved against a container.
type Raster struct {
	mu        sync.RWMutex
	img       *image.RGBA
	container image.Point
	display   canvas.DisplaySize
	smoothing bool
	bg        color.RGBA
}

// NewRaster creates a surface inside a container of the given size. A zero
// container dimension disables percentage sizing and the max-width limit.
func NewRaster(containerW, containerH int) *Raster {
	return &Raster{
		img:       image.NewRGBA(image.Rect(0, 0, 0, 0)),
		container: image.Pt(containerW, containerH),
	}
}

func (r *Raster) SetBackground(c color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bg = c
}

func (r *Raster) SetSmoothing(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.smoothing = enabled
}

// SetContainer changes the container size and re-resolves the display.
func (r *Raster) SetContainer(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.container = image.Pt(w, h)
	r.resizeLocked()
}

func (r *Raster) SetDisplaySize(d canvas.DisplaySize) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.display = d
	r.resizeLocked()
}

func (r *Raster) resizeLocked() {
	w := WidthLimits.Clamp(r.display.Width, r.container.X)
	h := HeightLimits.Clamp(r.display.Height, r.container.Y)
	if r.img.Rect.Dx() == w && r.img.Rect.Dy() == h {
		return
	}

	// The old content is stretched to the new size until the next draw.
	next := image.NewRGBA(image.Rect(0, 0, w, h))
	if !r.img.Rect.Empty() {
		draw.NearestNeighbor.Scale(next, next.Rect, r.img, r.img.Rect, draw.Src, nil)
	}
	r.img = next
}

func (r *Raster) Bounds() image.Rectangle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.img.Rect
}

func (r *Raster) Clear(rect image.Rectangle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw.Draw(r.img, rect.Intersect(r.img.Rect), image.NewUniform(r.bg), image.Point{}, draw.Src)
}

func (r *Raster) Draw(src image.Image, dst image.Rectangle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s draw.Scaler = draw.NearestNeighbor
	if r.smoothing {
		s = draw.ApproxBiLinear
	}
	s.Scale(r.img, dst, src, src.Bounds(), draw.Over, nil)
}

// Snapshot returns a copy of the visible pixels.
func (r *Raster) Snapshot() *image.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &image.RGBA{
		Pix:    append([]uint8(nil), r.img.Pix...),
		Stride: r.img.Stride,
		Rect:   r.img.Rect,
	}
}
