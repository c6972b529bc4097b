package source

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/framecanvas/internal/canvas"
)

// Wave2D is a damped 2-D wave equation on a W x H grid with fixed edges,
// integrated with semi-implicit Euler and a 5-point Laplacian.
type Wave2D struct {
	W, H      int
	WaveSpeed float64
	Damping   float64
	Dt        float64
	DropEvery int

	u, v      []float64
	rng       *rand.Rand
	stepCount int
}

func NewWave2D(w, h int, seed int64) *Wave2D {
	if w < 3 {
		w = 3
	}
	if h < 3 {
		h = 3
	}
	wv := &Wave2D{
		W: w, H: h,
		WaveSpeed: 1.0,
		Damping:   0.02,
		u:         make([]float64, w*h),
		v:         make([]float64, w*h),
		rng:       rand.New(rand.NewSource(seed)),
		DropEvery: 40,
	}
	// Stable for unit grid spacing: c*dt <= 1/sqrt(2).
	wv.Dt = 0.5 / wv.WaveSpeed
	wv.Drop(w/2, h/2, 1.0, math.Max(2, float64(min(w, h))/12))
	return wv
}

// Drop adds a Gaussian bump of the given amplitude and radius at (cx, cy).
func (w *Wave2D) Drop(cx, cy int, amp, radius float64) {
	r2 := 2 * radius * radius
	for y := 1; y < w.H-1; y++ {
		for x := 1; x < w.W-1; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			w.u[y*w.W+x] += amp * math.Exp(-(dx*dx+dy*dy)/r2)
		}
	}
}

// Step advances the field by n time steps. Every DropEvery steps a random
// drop keeps the field alive.
func (w *Wave2D) Step(n int) {
	c2 := w.WaveSpeed * w.WaveSpeed
	for ; n > 0; n-- {
		for y := 1; y < w.H-1; y++ {
			row := y * w.W
			for x := 1; x < w.W-1; x++ {
				i := row + x
				lap := w.u[i-1] + w.u[i+1] + w.u[i-w.W] + w.u[i+w.W] - 4*w.u[i]
				w.v[i] += w.Dt * (c2*lap - w.Damping*w.v[i])
			}
		}
		for i := range w.u {
			w.u[i] += w.Dt * w.v[i]
		}

		w.stepCount++
		if w.DropEvery > 0 && w.stepCount%w.DropEvery == 0 {
			amp := 0.5 + w.rng.Float64()
			if w.rng.Intn(2) == 0 {
				amp = -amp
			}
			w.Drop(1+w.rng.Intn(w.W-2), 1+w.rng.Intn(w.H-2), amp, math.Max(1.5, float64(min(w.W, w.H))/16))
		}
	}
}

func (w *Wave2D) Energy() float64 {
	c2 := w.WaveSpeed * w.WaveSpeed
	ke, pe := 0.0, 0.0
	for y := 0; y < w.H; y++ {
		for x := 0; x < w.W; x++ {
			i := y*w.W + x
			ke += 0.5 * w.v[i] * w.v[i]
			if x < w.W-1 {
				d := w.u[i+1] - w.u[i]
				pe += 0.5 * c2 * d * d
			}
			if y < w.H-1 {
				d := w.u[i+w.W] - w.u[i]
				pe += 0.5 * c2 * d * d
			}
		}
	}
	return ke + pe
}

// Frame renders the displacement field through cm, mapping [-scale, scale]
// onto the colormap.
func (w *Wave2D) Frame(cm *Colormap, scale float64) canvas.FrameBuffer {
	if scale <= 0 {
		scale = 1
	}
	data := make([]byte, w.W*w.H*canvas.Channels)
	for i, val := range w.u {
		c := cm.At(0.5 + 0.5*val/scale)
		data[i*4], data[i*4+1], data[i*4+2], data[i*4+3] = c.R, c.G, c.B, c.A
	}
	return canvas.FrameBuffer{Data: data, Shape: canvas.Shape{w.W, w.H, canvas.Channels}}
}

func (w *Wave2D) GetParams() map[string]float64 {
	return map[string]float64{"waveSpeed": w.WaveSpeed, "damping": w.Damping, "dt": w.Dt}
}

func (w *Wave2D) SetParam(name string, v float64) error {
	switch name {
	case "waveSpeed":
		if v <= 0 {
			return fmt.Errorf("source: waveSpeed must be positive, got %v", v)
		}
		w.WaveSpeed = v
		w.Dt = math.Min(w.Dt, 0.5/v)
	case "damping":
		w.Damping = v
	case "dt":
		if v <= 0 || v*w.WaveSpeed > 1/math.Sqrt2 {
			return fmt.Errorf("source: dt %v violates stability bound", v)
		}
		w.Dt = v
	default:
		return fmt.Errorf("source: unknown parameter %q", name)
	}
	return nil
}

// WaveStream yields colormapped frames of a Wave2D, advancing Steps time
// steps between frames.
type WaveStream struct {
	Wave     *Wave2D
	Colormap *Colormap
	Steps    int
	Scale    float64
	// Limit ends the stream after that many frames when positive.
	Limit int

	n int
}

func (s *WaveStream) Next() (canvas.FrameBuffer, bool) {
	if s.Limit > 0 && s.n >= s.Limit {
		return canvas.FrameBuffer{}, false
	}
	if s.n > 0 {
		s.Wave.Step(max(1, s.Steps))
	}
	s.n++
	return s.Wave.Frame(s.Colormap, s.Scale), true
}
