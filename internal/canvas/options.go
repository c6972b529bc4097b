package canvas

import "log/slog"

type Option func(*Canvas)

func WithDecoder(d Decoder) Option {
	return func(c *Canvas) { c.decoder = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Canvas) { c.logger = l }
}

// WithSmoothing enables interpolated scaling. The default is blocky
// nearest-neighbor scaling so that individual data cells stay visible.
func WithSmoothing(enabled bool) Option {
	return func(c *Canvas) { c.smoothing = enabled }
}

// WithOnDraw registers a callback run after each applied redraw, outside
// the canvas lock.
func WithOnDraw(fn func(generation uint64)) Option {
	return func(c *Canvas) { c.onDraw = fn }
}

// WithOnError receives errors raised from host notifications and decodes,
// which have no caller to return to.
func WithOnError(fn func(error)) Option {
	return func(c *Canvas) { c.onError = fn }
}
