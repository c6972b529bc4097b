// Package session wires a widget model, a canvas and a raster surface
// together and drives them from frame producers.
package session

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/san-kum/framecanvas/internal/canvas"
	"github.com/san-kum/framecanvas/internal/config"
	"github.com/san-kum/framecanvas/internal/export"
	"github.com/san-kum/framecanvas/internal/storage"
	"github.com/san-kum/framecanvas/internal/surface"
	"github.com/san-kum/framecanvas/internal/widget"
)

// Producer yields the next frame of a stream. ok is false when the stream
// has ended.
type Producer interface {
	Next() (fb canvas.FrameBuffer, ok bool)
}

type ProducerFunc func() (canvas.FrameBuffer, bool)

func (f ProducerFunc) Next() (canvas.FrameBuffer, bool) { return f() }

type Session struct {
	Model   *widget.Model
	Canvas  *canvas.Canvas
	Surface *surface.Raster

	logger *slog.Logger
	draws  chan uint64
	errs   chan error
}

// New builds the model, surface and canvas described by cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		Model:   widget.NewModel(),
		Surface: surface.NewRaster(cfg.Display.ContainerWidth, cfg.Display.ContainerHeight),
		logger:  logger,
		draws:   make(chan uint64, 1),
		errs:    make(chan error, 16),
	}

	w, h := cfg.DisplaySize()
	if err := s.Model.Set(canvas.FieldWidth, w.String()); err != nil {
		return nil, err
	}
	if err := s.Model.Set(canvas.FieldHeight, h.String()); err != nil {
		return nil, err
	}

	c, err := canvas.New(s.Model, s.Surface,
		canvas.WithLogger(logger),
		canvas.WithSmoothing(cfg.Display.Smoothing),
		canvas.WithOnDraw(s.onDraw),
		canvas.WithOnError(s.onError))
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.Canvas = c
	return s, nil
}

// onDraw keeps only the latest generation for readers of Draws.
func (s *Session) onDraw(gen uint64) {
	select {
	case s.draws <- gen:
	default:
		select {
		case <-s.draws:
		default:
		}
		select {
		case s.draws <- gen:
		default:
		}
	}
}

func (s *Session) onError(err error) {
	select {
	case s.errs <- err:
	default:
		s.logger.Warn("session: error queue full, dropping", "error", err)
	}
}

// Draws delivers the generation of the latest applied redraw.
func (s *Session) Draws() <-chan uint64 { return s.draws }

// Errors delivers errors raised by notifications and decodes.
func (s *Session) Errors() <-chan error { return s.errs }

// Show validates fb and publishes it to the model.
func (s *Session) Show(fb canvas.FrameBuffer) error {
	if err := fb.Check(); err != nil {
		return err
	}
	return s.Model.SetFrame(fb)
}

func (s *Session) Resize(width, height any) error {
	if width != nil {
		if err := s.Model.Set(canvas.FieldWidth, width); err != nil {
			return err
		}
	}
	if height != nil {
		if err := s.Model.Set(canvas.FieldHeight, height); err != nil {
			return err
		}
	}
	return nil
}

// Render waits for pending redraws and returns the visible pixels.
func (s *Session) Render() *image.RGBA {
	s.Canvas.Wait()
	return s.Surface.Snapshot()
}

// Save stores the current frame and rendering under source.
func (s *Session) Save(st *storage.Store, source string, format export.Format) (string, error) {
	fb, _ := s.Model.Frame()
	return st.Save(storage.Snapshot{
		Source:  source,
		Frame:   fb,
		Display: s.Canvas.DisplaySize(),
		Render:  s.Render(),
		Format:  format,
		Stats:   s.Canvas.Stats(),
	})
}

func (s *Session) Close() {
	s.Canvas.Close()
}

type StreamConfig struct {
	// FrameRate limits publishing; zero publishes as fast as frames come.
	FrameRate int
	MaxFrames int
}

type StreamResult struct {
	Frames   int
	Rejected int
	Elapsed  time.Duration
	Stats    canvas.Stats
}

// Stream publishes frames from p until it ends, MaxFrames is reached or
// ctx is canceled.
func (s *Session) Stream(ctx context.Context, p Producer, cfg StreamConfig) (*StreamResult, error) {
	res := &StreamResult{}
	start := time.Now()

	var tick <-chan time.Time
	if cfg.FrameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.FrameRate))
		defer ticker.Stop()
		tick = ticker.C
	}

	finish := func(err error) (*StreamResult, error) {
		s.Canvas.Wait()
		res.Elapsed = time.Since(start)
		res.Stats = s.Canvas.Stats()
		return res, err
	}

	for cfg.MaxFrames <= 0 || res.Frames < cfg.MaxFrames {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return finish(ctx.Err())
			case <-tick:
			}
		}

		fb, ok := p.Next()
		if !ok {
			break
		}
		if err := s.Show(fb); err != nil {
			res.Rejected++
			s.logger.Warn("session: frame rejected", "frame", res.Frames, "error", err)
		}
		res.Frames++
	}

	s.logger.Debug("session: stream finished", "frames", res.Frames, "rejected", res.Rejected)
	return finish(nil)
}
