package surface

import (
	"image"
	"image/color"
	"testing"

	"github.com/san-kum/framecanvas/internal/canvas"
	"github.com/san-kum/framecanvas/internal/cssdim"
)

func size(w, h cssdim.Dimension) canvas.DisplaySize {
	return canvas.DisplaySize{Width: w, Height: h}
}

func TestRasterResolvesDisplaySize(t *testing.T) {
	tests := []struct {
		name      string
		container image.Point
		display   canvas.DisplaySize
		want      image.Rectangle
	}{
		{"pixels", image.Pt(800, 600), size(cssdim.Pixels(256), cssdim.Pixels(256)), image.Rect(0, 0, 256, 256)},
		{"min size", image.Pt(800, 600), size(cssdim.Pixels(10), cssdim.Pixels(10)), image.Rect(0, 0, 100, 100)},
		{"max width", image.Pt(300, 600), size(cssdim.Pixels(1000), cssdim.Pixels(200)), image.Rect(0, 0, 300, 200)},
		{"percent", image.Pt(800, 600), size(cssdim.Percentage(50), cssdim.Percentage(50)), image.Rect(0, 0, 400, 300)},
		{"no container", image.Pt(0, 0), size(cssdim.Pixels(1000), cssdim.Pixels(200)), image.Rect(0, 0, 1000, 200)},
	}

	for _, tt := range tests {
		r := NewRaster(tt.container.X, tt.container.Y)
		r.SetDisplaySize(tt.display)
		if got := r.Bounds(); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestRasterNearestNeighborScale(t *testing.T) {
	r := NewRaster(0, 0)
	r.SetDisplaySize(size(cssdim.Pixels(100), cssdim.Pixels(100)))

	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{B: 255, A: 255})

	r.Clear(r.Bounds())
	r.Draw(src, r.Bounds())
	snap := r.Snapshot()

	if got := snap.RGBAAt(49, 50); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("expected pure red left of center, got %v", got)
	}
	if got := snap.RGBAAt(50, 50); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("expected pure blue right of center, got %v", got)
	}
}

func TestRasterClearUsesBackground(t *testing.T) {
	r := NewRaster(0, 0)
	r.SetDisplaySize(size(cssdim.Pixels(120), cssdim.Pixels(100)))
	bg := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	r.SetBackground(bg)

	r.Clear(r.Bounds())
	if got := r.Snapshot().RGBAAt(119, 99); got != bg {
		t.Errorf("expected background %v, got %v", bg, got)
	}
}

func TestRasterResizeKeepsContent(t *testing.T) {
	r := NewRaster(0, 0)
	r.SetDisplaySize(size(cssdim.Pixels(100), cssdim.Pixels(100)))
	r.SetBackground(color.RGBA{G: 200, A: 255})
	r.Clear(r.Bounds())

	r.SetDisplaySize(size(cssdim.Pixels(200), cssdim.Pixels(150)))
	snap := r.Snapshot()
	if snap.Rect != image.Rect(0, 0, 200, 150) {
		t.Fatalf("expected 200x150, got %v", snap.Rect)
	}
	if got := snap.RGBAAt(199, 149); got.G != 200 {
		t.Errorf("expected stretched content, got %v", got)
	}
}

func TestRasterWithCanvas(t *testing.T) {
	host := &staticHost{fields: map[string]any{
		canvas.FieldWidth:  "150px",
		canvas.FieldHeight: 100,
		canvas.FieldImageArray: canvas.FrameBuffer{
			Data:  []byte{10, 20, 30, 255},
			Shape: canvas.Shape{1, 1, 4},
		},
	}}
	r := NewRaster(800, 600)
	c, err := canvas.New(host, r)
	if err != nil {
		t.Fatalf("new canvas: %v", err)
	}
	defer c.Close()
	c.Wait()

	snap := r.Snapshot()
	if snap.Rect != image.Rect(0, 0, 150, 100) {
		t.Fatalf("expected 150x100 surface, got %v", snap.Rect)
	}
	want := color.RGBA{10, 20, 30, 255}
	for _, p := range []image.Point{{0, 0}, {149, 99}, {75, 50}} {
		if got := snap.RGBAAt(p.X, p.Y); got != want {
			t.Errorf("at %v: expected %v, got %v", p, want, got)
		}
	}
}

type staticHost struct {
	fields map[string]any
}

func (h *staticHost) Subscribe(string, func()) func() { return func() {} }

func (h *staticHost) Read(field string) (any, error) { return h.fields[field], nil }
