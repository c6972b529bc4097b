// Package cssdim parses and resolves the CSS lengths used for a canvas
// display size.
//
// Widget models carry width and height either as bare numbers (256) or as
// CSS strings ("256px", "50%"). Bare numbers are pixels; they are never
// written into a style field without a unit.
package cssdim

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Unit string

const (
	Px      Unit = "px"
	Percent Unit = "%"
)

// Upper bounds for a dimension. MaxPixels matches the largest canvas side
// browsers allow.
const (
	MaxPixels  = 16384
	MaxPercent = 1000
)

var ErrInvalid = errors.New("cssdim: invalid dimension")

type Dimension struct {
	Value float64
	Unit  Unit
}

func Pixels(v float64) Dimension { return Dimension{Value: v, Unit: Px} }

func Percentage(v float64) Dimension { return Dimension{Value: v, Unit: Percent} }

// Parse accepts ints, floats, numeric strings and strings suffixed with
// "px" or "%". Negative, NaN and infinite values are rejected.
func Parse(v any) (Dimension, error) {
	var d Dimension
	switch x := v.(type) {
	case Dimension:
		d = x
	case int:
		d = Pixels(float64(x))
	case int32:
		d = Pixels(float64(x))
	case int64:
		d = Pixels(float64(x))
	case uint:
		d = Pixels(float64(x))
	case float32:
		d = Pixels(float64(x))
	case float64:
		d = Pixels(x)
	case string:
		return parseString(x)
	case nil:
		return Dimension{}, fmt.Errorf("%w: missing value", ErrInvalid)
	default:
		return Dimension{}, fmt.Errorf("%w: unsupported type %T", ErrInvalid, v)
	}
	if err := d.validate(); err != nil {
		return Dimension{}, err
	}
	return d, nil
}

func parseString(s string) (Dimension, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	unit := Px
	switch {
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "px"))
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		unit = Percent
	}
	if s == "" {
		return Dimension{}, fmt.Errorf("%w: empty value", ErrInvalid)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	d := Dimension{Value: v, Unit: unit}
	if err := d.validate(); err != nil {
		return Dimension{}, err
	}
	return d, nil
}

func (d Dimension) validate() error {
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) || d.Value < 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, d.Value)
	}
	switch d.Unit {
	case Px:
		if d.Value > MaxPixels {
			return fmt.Errorf("%w: %vpx exceeds %dpx", ErrInvalid, d.Value, MaxPixels)
		}
	case Percent:
		if d.Value > MaxPercent {
			return fmt.Errorf("%w: %v%% exceeds %d%%", ErrInvalid, d.Value, MaxPercent)
		}
	default:
		return fmt.Errorf("%w: unit %q", ErrInvalid, d.Unit)
	}
	return nil
}

// String renders the dimension as CSS text, e.g. "256px" or "50%".
func (d Dimension) String() string {
	return strconv.FormatFloat(d.Value, 'f', -1, 64) + string(d.Unit)
}

func (d Dimension) IsZero() bool { return d == Dimension{} }

// Resolve converts the dimension to device pixels, capped at MaxPixels.
// Percentages are taken against container; a non-positive container
// resolves them to zero.
func (d Dimension) Resolve(container int) int {
	v := d.Value
	if d.Unit == Percent {
		if container <= 0 {
			return 0
		}
		v = v * float64(container) / 100
	}
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return int(math.Round(min(v, MaxPixels)))
}

// Constraint mirrors min-*/max-* style properties. A zero Dimension means
// the bound is not set.
type Constraint struct {
	Min Dimension
	Max Dimension
}

// Clamp resolves d against container and applies the constraint. As in
// CSS, the minimum wins when it exceeds the maximum.
func (c Constraint) Clamp(d Dimension, container int) int {
	px := d.Resolve(container)
	if !c.Max.IsZero() {
		if hi := c.Max.Resolve(container); container > 0 || c.Max.Unit == Px {
			px = min(px, hi)
		}
	}
	if !c.Min.IsZero() {
		px = max(px, c.Min.Resolve(container))
	}
	return px
}
