package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/san-kum/framecanvas/internal/cssdim"
)

// Stats counts canvas activity since construction.
type Stats struct {
	Uploads           uint64
	Reallocations     uint64
	Rejected          uint64
	RedrawsStarted    uint64
	RedrawsApplied    uint64
	Superseded        uint64
	DecodeFailures    uint64
	LastGeneration    uint64
	AppliedGeneration uint64
}

// Canvas mirrors a host frame buffer onto a Surface.
//
// Host notifications may arrive on any goroutine; state changes are
// serialized by mu. Decodes run on their own goroutines.
type Canvas struct {
	host      Host
	surface   Surface
	decoder   Decoder
	logger    *slog.Logger
	smoothing bool
	onDraw    func(uint64)
	onError   func(error)

	mu      sync.Mutex
	shape   Shape
	pixels  *image.NRGBA
	display DisplaySize
	gen     uint64
	cancel  context.CancelFunc
	stats   Stats
	closed  bool
	unsubs  []func()
	pending sync.WaitGroup
}

// New creates a canvas bound to host and surface, subscribes to the three
// change notifications and performs one initial synchronization. A host
// without a frame yet is not an error.
func New(host Host, surface Surface, opts ...Option) (*Canvas, error) {
	c := &Canvas{
		host:    host,
		surface: surface,
		decoder: BitmapDecoder{},
		logger:  slog.Default(),
		shape:   Sentinel(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.surface.SetSmoothing(c.smoothing)

	c.unsubs = []func(){
		host.Subscribe(EventDataChanged, c.notify(c.OnDataChanged)),
		host.Subscribe(EventWidthChanged, c.notify(c.OnWidthChanged)),
		host.Subscribe(EventHeightChanged, c.notify(c.OnHeightChanged)),
	}

	if err := c.Sync(); err != nil {
		c.Close()
		return nil, err
	}

	c.logger.Debug("canvas: created",
		"display", c.DisplaySize().String(),
		"smoothing", c.smoothing)
	return c, nil
}

// Sync pulls width, height and frame from the host and redraws. A host
// without a frame yet is not an error.
func (c *Canvas) Sync() error {
	d, err := c.readDisplaySize()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.display = d
	c.surface.SetDisplaySize(d)
	c.mu.Unlock()

	if err := c.OnDataChanged(); err != nil {
		if errors.Is(err, ErrMissingData) {
			c.Redraw()
			return nil
		}
		return err
	}
	return nil
}

func (c *Canvas) notify(handler func() error) func() {
	return func() {
		if err := handler(); err != nil && !errors.Is(err, ErrClosed) {
			c.report(err)
		}
	}
}

func (c *Canvas) report(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

// OnDataChanged reads the host's frame buffer, reallocates the pixel
// buffer if the shape changed and copies the bytes in. A rejected update
// leaves the pixel buffer and display untouched.
func (c *Canvas) OnDataChanged() error {
	fb, err := c.readFrame()
	if err != nil {
		if errors.Is(err, ErrMissingData) {
			return err
		}
		c.mu.Lock()
		c.stats.Rejected++
		c.mu.Unlock()
		c.logger.Warn("canvas: rejected frame", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if err := fb.Check(); err != nil {
		c.stats.Rejected++
		c.logger.Warn("canvas: rejected frame",
			"shape", fb.Shape.String(),
			"bytes", len(fb.Data),
			"error", err)
		return err
	}

	if !fb.Shape.Equal(c.shape) {
		c.pixels = image.NewNRGBA(image.Rect(0, 0, fb.Shape.Width(), fb.Shape.Height()))
		c.logger.Debug("canvas: reallocated pixel buffer",
			"from", c.shape.String(),
			"to", fb.Shape.String())
		c.shape = fb.Shape.Clone()
		c.stats.Reallocations++
	}

	copy(c.pixels.Pix, fb.Data)
	c.stats.Uploads++

	c.redrawLocked()
	return nil
}

// OnWidthChanged applies the host's width to the display size and redraws.
func (c *Canvas) OnWidthChanged() error {
	w, err := c.readDimension(FieldWidth)
	if err != nil {
		return err
	}
	return c.resize(func(d *DisplaySize) { d.Width = w })
}

// OnHeightChanged applies the host's height to the display size and redraws.
func (c *Canvas) OnHeightChanged() error {
	h, err := c.readDimension(FieldHeight)
	if err != nil {
		return err
	}
	return c.resize(func(d *DisplaySize) { d.Height = h })
}

func (c *Canvas) resize(apply func(*DisplaySize)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	apply(&c.display)
	c.surface.SetDisplaySize(c.display)
	c.logger.Debug("canvas: display resized", "display", c.display.String())

	c.redrawLocked()
	return nil
}

// Redraw schedules an asynchronous decode and draw of the current pixel
// buffer. It is a no-op before the first frame.
func (c *Canvas) Redraw() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.redrawLocked()
}

func (c *Canvas) redrawLocked() {
	if c.pixels == nil || c.pixels.Rect.Empty() {
		return
	}

	// A newer redraw makes the in-flight decode pointless.
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.gen++
	gen := c.gen
	c.stats.RedrawsStarted++
	c.stats.LastGeneration = gen

	snap := &image.NRGBA{
		Pix:    append([]uint8(nil), c.pixels.Pix...),
		Stride: c.pixels.Stride,
		Rect:   c.pixels.Rect,
	}
	crop := image.Rect(0, 0, c.shape.Width(), c.shape.Height())

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		defer cancel()
		bitmap, err := c.decoder.Decode(ctx, snap, crop)
		c.complete(gen, bitmap, err)
	}()
}

func (c *Canvas) complete(gen uint64, bitmap image.Image, err error) {
	c.mu.Lock()

	if c.closed || gen != c.gen {
		c.stats.Superseded++
		c.mu.Unlock()
		c.logger.Debug("canvas: dropped superseded redraw", "generation", gen)
		return
	}

	if err != nil || bitmap == nil {
		if err == nil {
			err = errors.New("decoder returned no bitmap")
		}
		derr := &DecodeError{Generation: gen, Err: err}
		c.stats.DecodeFailures++
		c.mu.Unlock()
		c.logger.Error("canvas: redraw failed, keeping previous display",
			"generation", gen,
			"error", err)
		c.report(derr)
		return
	}

	dst := c.surface.Bounds()
	c.surface.Clear(dst)
	c.surface.Draw(bitmap, dst)
	c.stats.RedrawsApplied++
	c.stats.AppliedGeneration = gen
	c.mu.Unlock()

	if c.onDraw != nil {
		c.onDraw(gen)
	}
}

// Wait blocks until all scheduled decodes have completed or been dropped.
func (c *Canvas) Wait() {
	c.pending.Wait()
}

// Close unsubscribes from the host and discards in-flight redraws.
func (c *Canvas) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	c.pending.Wait()
}

// PixelBuffer returns a copy of the current pixel buffer, or nil before the
// first frame.
func (c *Canvas) PixelBuffer() *image.NRGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pixels == nil {
		return nil
	}
	return &image.NRGBA{
		Pix:    append([]uint8(nil), c.pixels.Pix...),
		Stride: c.pixels.Stride,
		Rect:   c.pixels.Rect,
	}
}

func (c *Canvas) Shape() Shape {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shape.Clone()
}

func (c *Canvas) DisplaySize() DisplaySize {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

func (c *Canvas) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Canvas) readFrame() (FrameBuffer, error) {
	v, err := c.host.Read(FieldImageArray)
	if err != nil {
		return FrameBuffer{}, fmt.Errorf("canvas: read %s: %w", FieldImageArray, err)
	}
	switch fb := v.(type) {
	case FrameBuffer:
		return fb, nil
	case *FrameBuffer:
		if fb == nil {
			return FrameBuffer{}, ErrMissingData
		}
		return *fb, nil
	case nil:
		return FrameBuffer{}, ErrMissingData
	default:
		return FrameBuffer{}, fmt.Errorf("%w: got %T", ErrBadFrame, v)
	}
}

func (c *Canvas) readDimension(field string) (cssdim.Dimension, error) {
	v, err := c.host.Read(field)
	if err != nil {
		return cssdim.Dimension{}, fmt.Errorf("canvas: read %s: %w", field, err)
	}
	d, err := cssdim.Parse(v)
	if err != nil {
		return cssdim.Dimension{}, fmt.Errorf("%w: %s: %w", ErrInvalidDimension, field, err)
	}
	return d, nil
}

func (c *Canvas) readDisplaySize() (DisplaySize, error) {
	w, err := c.readDimension(FieldWidth)
	if err != nil {
		return DisplaySize{}, err
	}
	h, err := c.readDimension(FieldHeight)
	if err != nil {
		return DisplaySize{}, err
	}
	return DisplaySize{Width: w, Height: h}, nil
}
