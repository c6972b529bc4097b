package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/webp"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.SetRGBA(x, 0, color.RGBA{R: 255, A: 255})
		img.SetRGBA(x, 1, color.RGBA{B: byte(x * 60), A: 255})
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"png", PNG},
		{"WEBP", WebP},
		{"out/frame.webp", WebP},
		{"snap.SVG", SVG},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("frame.bmp"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), PNG); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := img.At(3, 0).RGBA(); r>>8 != 255 {
		t.Errorf("expected red pixel, got %d", r>>8)
	}
}

func TestEncodeWebPLossless(t *testing.T) {
	var buf bytes.Buffer
	src := testImage()
	if err := Encode(&buf, src, WebP); err != nil {
		t.Fatal(err)
	}
	img, err := webp.Decode(&buf)
	if err != nil {
		t.Fatalf("decode webp: %v", err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			r1, g1, b1, _ := src.At(x, y).RGBA()
			r2, g2, b2, _ := img.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 {
				t.Errorf("pixel (%d,%d) differs after round trip", x, y)
			}
		}
	}
}

func TestImageToSVG(t *testing.T) {
	svg := ImageToSVG(testImage(), 2)

	if !strings.Contains(svg, `width="8" height="4"`) {
		t.Error("expected scaled svg size")
	}
	// The red row collapses into one rect; the blue row has four colors.
	if n := strings.Count(svg, "<rect"); n != 5 {
		t.Errorf("expected 5 rects, got %d", n)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) {
		t.Error("expected red fill")
	}
	if ImageToSVG(nil, 1) != "" {
		t.Error("expected empty output for nil image")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frame.png")
	if err := WriteFile(path, testImage()); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty file, got %v", err)
	}
	if err := WriteFile(filepath.Join(t.TempDir(), "frame.tiff"), testImage()); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
