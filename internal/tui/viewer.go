// Package tui shows a canvas surface in the terminal.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/framecanvas/internal/canvas"
	"github.com/san-kum/framecanvas/internal/cssdim"
	"github.com/san-kum/framecanvas/internal/export"
	"github.com/san-kum/framecanvas/internal/session"
	"github.com/san-kum/framecanvas/internal/storage"
)

const (
	zoomStep = 1.25
	minZoom  = 100
	maxZoom  = 4096
)

// Options configure a Viewer. Stream may be nil for a still frame.
type Options struct {
	Source    string
	Stream    session.Producer
	FrameRate int
	Store     *storage.Store
	Format    export.Format
	Theme     string
}

type tickMsg time.Time

type drawMsg uint64

type errMsg struct{ err error }

type Viewer struct {
	sess  *session.Session
	opts  Options
	style styles

	paused  bool
	gen     uint64
	frames  int
	fps     float64
	lastGen time.Time
	history []float64
	status  string
	lastErr error

	width  int
	height int
}

func NewViewer(sess *session.Session, opts Options) *Viewer {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	if opts.Format == "" {
		opts.Format = export.WebP
	}
	return &Viewer{
		sess:    sess,
		opts:    opts,
		style:   GetTheme(opts.Theme).styles(),
		history: make([]float64, 0, 60),
		width:   80,
		height:  24,
	}
}

func (v *Viewer) Init() tea.Cmd {
	cmds := []tea.Cmd{v.waitDraw(), v.waitErr()}
	if v.opts.Stream != nil {
		cmds = append(cmds, v.tick())
	}
	return tea.Batch(cmds...)
}

func (v *Viewer) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(v.opts.FrameRate), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (v *Viewer) waitDraw() tea.Cmd {
	return func() tea.Msg { return drawMsg(<-v.sess.Draws()) }
}

func (v *Viewer) waitErr() tea.Cmd {
	return func() tea.Msg { return errMsg{<-v.sess.Errors()} }
}

func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
		return v, nil
	case tickMsg:
		if v.paused || v.opts.Stream == nil {
			return v, v.tick()
		}
		fb, ok := v.opts.Stream.Next()
		if !ok {
			v.status = "stream ended"
			return v, nil
		}
		if err := v.sess.Show(fb); err != nil {
			v.lastErr = err
		}
		v.frames++
		return v, v.tick()
	case drawMsg:
		now := time.Now()
		if !v.lastGen.IsZero() {
			if dt := now.Sub(v.lastGen).Seconds(); dt > 0 {
				v.fps = 1 / dt
			}
		}
		v.lastGen = now
		v.gen = uint64(msg)
		v.record()
		return v, v.waitDraw()
	case errMsg:
		v.lastErr = msg.err
		return v, v.waitErr()
	}
	return v, nil
}

func (v *Viewer) record() {
	st := v.sess.Canvas.Stats()
	ratio := 1.0
	if st.RedrawsStarted > 0 {
		ratio = float64(st.RedrawsApplied) / float64(st.RedrawsStarted)
	}
	if len(v.history) == cap(v.history) {
		v.history = v.history[1:]
	}
	v.history = append(v.history, ratio)
}

func (v *Viewer) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return tea.Quit
	case " ", "p":
		v.paused = !v.paused
	case "+", "=":
		v.zoom(zoomStep)
	case "-", "_":
		v.zoom(1 / zoomStep)
	case "r":
		v.sess.Canvas.Redraw()
	case "s":
		v.snapshot()
	}
	return nil
}

// zoom scales the display size; percentage sizes are converted to pixels
// at their current resolved size.
func (v *Viewer) zoom(f float64) {
	b := v.sess.Surface.Bounds()
	w := math.Max(minZoom, math.Min(maxZoom, math.Round(float64(b.Dx())*f)))
	h := math.Max(minZoom, math.Min(maxZoom, math.Round(float64(b.Dy())*f)))
	if err := v.sess.Resize(cssdim.Pixels(w).String(), cssdim.Pixels(h).String()); err != nil {
		v.lastErr = err
	}
}

func (v *Viewer) snapshot() {
	if v.opts.Store == nil {
		v.status = "no snapshot store"
		return
	}
	id, err := v.sess.Save(v.opts.Store, v.opts.Source, v.opts.Format)
	if err != nil {
		v.lastErr = err
		return
	}
	v.status = "saved " + id
}

func (v *Viewer) View() string {
	var b strings.Builder
	st := v.style
	dim := st.muted

	statusIcon, statusText := st.live.Render("●"), st.live.Render("live")
	if v.opts.Stream == nil {
		statusIcon, statusText = dim.Render("○"), dim.Render("still")
	} else if v.paused {
		statusIcon, statusText = st.warning.Render("○"), st.warning.Render("paused")
	}
	shape := v.sess.Canvas.Shape()
	display := v.sess.Canvas.DisplaySize()
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s %s\n\n",
		statusIcon, st.accent.Render(v.opts.Source), statusText,
		dim.Render("shape"), st.text.Render(shapeLabel(shape))))

	img := v.sess.Surface.Snapshot()
	cols, rows := FitCells(img.Rect.Dx(), img.Rect.Dy(), max(v.width-6, 10), max(v.height-10, 4))
	for _, line := range strings.Split(HalfBlocks(img, cols, rows), "\n") {
		b.WriteString("   " + line + "\n")
	}

	stats := v.sess.Canvas.Stats()
	b.WriteString(fmt.Sprintf("\n   %s %s  %s %d  %s %d/%d  %s %.0ffps\n",
		dim.Render("display"), st.text.Render(display.String()),
		dim.Render("gen"), v.gen,
		dim.Render("applied"), stats.RedrawsApplied, stats.RedrawsStarted,
		dim.Render("draw"), v.fps))
	if len(v.history) > 1 {
		b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("applied ratio"), st.accent.Render(sparkline(v.history, 24))))
	}
	if v.lastErr != nil {
		b.WriteString("   " + st.err.Render(v.lastErr.Error()) + "\n")
	}
	if v.status != "" {
		b.WriteString("   " + dim.Render(v.status) + "\n")
	}

	b.WriteString("\n" + dim.Render("   space pause  ± zoom  r redraw  s snapshot  q quit") + "\n")
	return b.String()
}

func shapeLabel(s canvas.Shape) string {
	if s.IsSentinel() {
		return "unset"
	}
	return s.String()
}

// Run shows the viewer until the user quits or ctx is canceled.
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	p := tea.NewProgram(NewViewer(sess, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
