package export

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// ImageToSVG renders each pixel as a scale x scale rect, merging runs of
// equal color along a row. Fully transparent pixels are skipped. Meant for
// small data frames where crisp cells matter more than file size.
func ImageToSVG(img image.Image, scale float64) string {
	if img == nil {
		return ""
	}
	if scale <= 0 {
		scale = 1
	}

	b := img.Bounds()
	width := float64(b.Dx()) * scale
	height := float64(b.Dy()) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
`, width, height, width, height))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		x := b.Min.X
		for x < b.Max.X {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			run := 1
			for x+run < b.Max.X && color.NRGBAModel.Convert(img.At(x+run, y)).(color.NRGBA) == c {
				run++
			}
			if c.A > 0 {
				sb.WriteString(fmt.Sprintf(`<rect x="%g" y="%g" width="%g" height="%g" fill="#%02x%02x%02x"`,
					float64(x-b.Min.X)*scale, float64(y-b.Min.Y)*scale, float64(run)*scale, scale, c.R, c.G, c.B))
				if c.A < 255 {
					sb.WriteString(fmt.Sprintf(` fill-opacity="%.3f"`, float64(c.A)/255))
				}
				sb.WriteString("/>\n")
			}
			x += run
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
