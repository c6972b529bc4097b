package source

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Colormap maps a scalar in [0, 1] to a color by interpolating anchor
// colors in CIE-L*a*b*.
type Colormap struct {
	Name    string
	anchors []colorful.Color
	lut     [256]color.RGBA
}

var colormaps = map[string][]string{
	"gray":     {"#000000", "#ffffff"},
	"viridis":  {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"inferno":  {"#000004", "#420a68", "#932667", "#dd513a", "#fca50a", "#fcffa4"},
	"coolwarm": {"#3b4cc0", "#8db0fe", "#dddddd", "#f49a7b", "#b40426"},
}

func Colormaps() []string {
	names := make([]string, 0, len(colormaps))
	for k := range colormaps {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func NewColormap(name string) (*Colormap, error) {
	hexes, ok := colormaps[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("source: unknown colormap %q (have %s)", name, strings.Join(Colormaps(), ", "))
	}
	cm := &Colormap{Name: strings.ToLower(name)}
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("source: colormap %s: %w", name, err)
		}
		cm.anchors = append(cm.anchors, c)
	}
	for i := range cm.lut {
		r, g, b := cm.interpolate(float64(i) / 255).Clamped().RGB255()
		cm.lut[i] = color.RGBA{r, g, b, 255}
	}
	return cm, nil
}

func (cm *Colormap) interpolate(t float64) colorful.Color {
	seg := t * float64(len(cm.anchors)-1)
	i := int(math.Floor(seg))
	if i >= len(cm.anchors)-1 {
		return cm.anchors[len(cm.anchors)-1]
	}
	return cm.anchors[i].BlendLab(cm.anchors[i+1], seg-float64(i))
}

// At returns the color for v, clamped to [0, 1]. NaN maps to transparent.
func (cm *Colormap) At(v float64) color.RGBA {
	if math.IsNaN(v) {
		return color.RGBA{}
	}
	v = math.Max(0, math.Min(1, v))
	return cm.lut[int(math.Round(v*255))]
}
