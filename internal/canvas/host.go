package canvas

import (
	"image"

	"github.com/san-kum/framecanvas/internal/cssdim"
)

// Model fields read from the host.
const (
	FieldImageArray = "image_array"
	FieldWidth      = "width"
	FieldHeight     = "height"
)

// Notifications the canvas subscribes to.
const (
	EventDataChanged   = "change:" + FieldImageArray
	EventWidthChanged  = "change:" + FieldWidth
	EventHeightChanged = "change:" + FieldHeight
)

// Host is the data model a canvas mirrors. Notifications carry no payload;
// the canvas reads the fields it needs when notified.
type Host interface {
	Subscribe(event string, fn func()) (unsubscribe func())
	Read(field string) (any, error)
}

// DisplaySize is the CSS size of the visible canvas. It only sets the
// target rectangle of a draw and never affects pixel buffer allocation.
type DisplaySize struct {
	Width  cssdim.Dimension
	Height cssdim.Dimension
}

func (d DisplaySize) String() string {
	return d.Width.String() + "x" + d.Height.String()
}

// Surface is the visible drawing target.
type Surface interface {
	// SetDisplaySize applies a new CSS size.
	SetDisplaySize(d DisplaySize)
	// SetSmoothing toggles interpolation when scaling.
	SetSmoothing(enabled bool)
	// Bounds is the current target rectangle in device pixels.
	Bounds() image.Rectangle
	Clear(r image.Rectangle)
	// Draw scales src to fill dst.
	Draw(src image.Image, dst image.Rectangle)
}
