// Package export writes canvas pixels to image files.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
	SVG  Format = "svg"
)

var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat accepts a format name or a file name with a known extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	if ext := filepath.Ext(s); ext != "" {
		s = ext[1:]
	}
	switch Format(s) {
	case PNG, WebP, SVG:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) Ext() string { return "." + string(f) }

func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case WebP:
		// nativewebp writes lossless VP8L.
		return nativewebp.Encode(w, img, nil)
	case SVG:
		_, err := io.WriteString(w, ImageToSVG(img, 1))
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteFile encodes img to path, picking the format from the extension.
func WriteFile(path string, img image.Image) error {
	f, err := ParseFormat(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	return out.Close()
}
