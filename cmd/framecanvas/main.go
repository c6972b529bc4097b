package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/framecanvas/internal/canvas"
	"github.com/san-kum/framecanvas/internal/config"
	"github.com/san-kum/framecanvas/internal/export"
	"github.com/san-kum/framecanvas/internal/session"
	"github.com/san-kum/framecanvas/internal/source"
	"github.com/san-kum/framecanvas/internal/storage"
	"github.com/san-kum/framecanvas/internal/tui"
)

const waveSource = "wave"

var (
	configFile string
	preset     string
	dataDir    string
	logLevel   string

	width     string
	height    string
	smooth    bool
	container int
	colormap  string
	outPath   string
	save      bool
	theme     string

	frames    int
	frameRate int
	gridW     int
	gridH     int
	seed      int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "framecanvas",
		Short:         "frame buffer canvas viewer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "snapshot directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	displayFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&width, "width", "", "display width (e.g. 256, 256px, 50%)")
		cmd.Flags().StringVar(&height, "height", "", "display height")
		cmd.Flags().BoolVar(&smooth, "smooth", false, "interpolate when scaling")
		cmd.Flags().IntVar(&container, "container", 0, "container width for percentage sizes")
		cmd.Flags().StringVar(&colormap, "cmap", "", "colormap for generated fields")
	}
	waveFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVar(&gridW, "grid-w", 0, "wave grid width")
		cmd.Flags().IntVar(&gridH, "grid-h", 0, "wave grid height")
		cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for drops")
		cmd.Flags().IntVar(&frameRate, "fps", 0, "frames per second")
	}

	renderCmd := &cobra.Command{
		Use:   "render [image|wave]",
		Short: "render a frame headless and export it",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}
	displayFlags(renderCmd)
	waveFlags(renderCmd)
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (.png, .webp, .svg)")
	renderCmd.Flags().BoolVar(&save, "save", false, "also store a snapshot")

	viewCmd := &cobra.Command{
		Use:   "view [image|wave]",
		Short: "show a frame in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runView,
	}
	displayFlags(viewCmd)
	waveFlags(viewCmd)
	viewCmd.Flags().StringVar(&theme, "theme", "default", "color theme ("+strings.Join(tui.ThemeNames(), ", ")+")")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "stream wave frames and report redraw stats",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
	displayFlags(demoCmd)
	waveFlags(demoCmd)
	demoCmd.Flags().IntVar(&frames, "frames", 200, "number of frames")

	inspectCmd := &cobra.Command{
		Use:   "inspect [image|snapshot_id]",
		Short: "print shape and luminance profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list snapshots",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	showCmd := &cobra.Command{
		Use:   "show [snapshot_id]",
		Short: "show snapshot metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list display presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("%-10s %s x %s  smoothing=%v\n", name, p.Display.Width, p.Display.Height, p.Display.Smoothing)
			}
		},
	}

	rootCmd.AddCommand(renderCmd, viewCmd, demoCmd, inspectCmd, listCmd, showCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, preset, config file and flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (have %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg.Apply(fileCfg)
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Display.Width = width
	}
	if flags.Changed("height") {
		cfg.Display.Height = height
	}
	if flags.Changed("smooth") {
		cfg.Display.Smoothing = smooth
	}
	if flags.Changed("container") {
		cfg.Display.ContainerWidth = container
	}
	if flags.Changed("cmap") {
		cfg.Colormap = colormap
	}
	if flags.Changed("grid-w") {
		cfg.Wave.GridW = gridW
	}
	if flags.Changed("grid-h") {
		cfg.Wave.GridH = gridH
	}
	if flags.Changed("seed") {
		cfg.Wave.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.Wave.FrameRate = frameRate
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func newWaveStream(cfg *config.Config, limit int) (*source.WaveStream, error) {
	cm, err := source.NewColormap(cfg.Colormap)
	if err != nil {
		return nil, err
	}
	w := source.NewWave2D(cfg.Wave.GridW, cfg.Wave.GridH, cfg.Wave.Seed)
	if err := w.SetParam("waveSpeed", cfg.Wave.WaveSpeed); err != nil {
		return nil, err
	}
	if err := w.SetParam("damping", cfg.Wave.Damping); err != nil {
		return nil, err
	}
	return &source.WaveStream{Wave: w, Colormap: cm, Steps: cfg.Wave.Steps, Scale: 1, Limit: limit}, nil
}

// firstFrame loads an image file, or the first frame of the wave source.
func firstFrame(cfg *config.Config, arg string) (canvas.FrameBuffer, error) {
	if arg == waveSource {
		ws, err := newWaveStream(cfg, 0)
		if err != nil {
			return canvas.FrameBuffer{}, err
		}
		ws.Wave.Step(cfg.Wave.Steps * 20)
		fb, _ := ws.Next()
		return fb, nil
	}
	return source.LoadImage(arg)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	fb, err := firstFrame(cfg, args[0])
	if err != nil {
		return err
	}

	sess, err := session.New(cfg, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Show(fb); err != nil {
		return err
	}
	img := sess.Render()

	out := outPath
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		out = base + "_render." + cfg.Format
	}
	if err := export.WriteFile(out, img); err != nil {
		return err
	}
	logger.Info("render: wrote image",
		"path", out,
		"shape", fb.Shape.String(),
		"size", fmt.Sprintf("%dx%d", img.Rect.Dx(), img.Rect.Dy()))

	if save {
		format, err := export.ParseFormat(cfg.Format)
		if err != nil {
			return err
		}
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := sess.Save(st, args[0], format)
		if err != nil {
			return err
		}
		fmt.Printf("snapshot: %s\n", id)
	}
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the viewer; only errors go to stderr.
	if cfg.LogLevel != "debug" {
		cfg.LogLevel = "error"
	}
	logger := newLogger(cfg)

	sess, err := session.New(cfg, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	opts := tui.Options{
		Source:    args[0],
		FrameRate: cfg.Wave.FrameRate,
		Store:     storage.New(cfg.DataDir),
		Format:    format,
		Theme:     theme,
	}

	if args[0] == waveSource {
		ws, err := newWaveStream(cfg, 0)
		if err != nil {
			return err
		}
		opts.Stream = ws
	} else {
		fb, err := source.LoadImage(args[0])
		if err != nil {
			return err
		}
		if err := sess.Show(fb); err != nil {
			return err
		}
	}

	return tui.Run(cmd.Context(), sess, opts)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ws, err := newWaveStream(cfg, frames)
	if err != nil {
		return err
	}
	sess, err := session.New(cfg, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	rate := 0
	if cmd.Flags().Changed("fps") {
		rate = cfg.Wave.FrameRate
	}
	res, err := sess.Stream(cmd.Context(), ws, session.StreamConfig{FrameRate: rate, MaxFrames: frames})
	if err != nil && res == nil {
		return err
	}

	st := res.Stats
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAMES\tUPLOADS\tREALLOC\tREDRAWS\tAPPLIED\tSUPERSEDED\tFAILED\tTIME\tFPS")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%.1f\n",
		res.Frames, st.Uploads, st.Reallocations, st.RedrawsStarted, st.RedrawsApplied,
		st.Superseded, st.DecodeFailures, res.Elapsed.Round(time.Millisecond),
		float64(res.Frames)/res.Elapsed.Seconds())
	w.Flush()

	if st.AppliedGeneration != st.LastGeneration {
		return fmt.Errorf("final frame not displayed: applied generation %d, latest %d", st.AppliedGeneration, st.LastGeneration)
	}
	return err
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	newLogger(cfg)

	fb, err := source.LoadImage(args[0])
	if err != nil {
		st := storage.New(cfg.DataDir)
		var serr error
		fb, serr = st.LoadFrame(args[0])
		if serr != nil {
			return err
		}
	}
	if err := fb.Check(); err != nil {
		return err
	}

	fmt.Printf("shape   %s\n", fb.Shape)
	fmt.Printf("bytes   %d\n", len(fb.Data))
	fmt.Println()

	profile := luminanceProfile(fb)
	if len(profile) == 0 {
		return nil
	}
	graph := asciigraph.Plot(profile,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("mean luminance per column"),
	)
	fmt.Println(graph)
	return nil
}

func luminanceProfile(fb canvas.FrameBuffer) []float64 {
	w, h := fb.Shape.Width(), fb.Shape.Height()
	if w == 0 || h == 0 {
		return nil
	}
	out := make([]float64, w)
	for x := 0; x < w; x++ {
		sum := 0.0
		for y := 0; y < h; y++ {
			i := (y*w + x) * canvas.Channels
			sum += 0.2126*float64(fb.Data[i]) + 0.7152*float64(fb.Data[i+1]) + 0.0722*float64(fb.Data[i+2])
		}
		out[x] = sum / float64(h)
	}
	return out
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	snaps, err := st.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("no snapshots")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tSHAPE\tDISPLAY\tRENDER")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%sx%s\t%s\n",
			s.ID, s.Source, s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Shape, s.Width, s.Height, s.Render)
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id        %s\n", meta.ID)
	fmt.Printf("source    %s\n", meta.Source)
	fmt.Printf("time      %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("shape     %s\n", meta.Shape)
	fmt.Printf("display   %s x %s\n", meta.Width, meta.Height)
	if p := st.RenderPath(meta); p != "" {
		fmt.Printf("render    %s\n", p)
	}
	fmt.Printf("uploads   %d  reallocations %d  rejected %d\n",
		meta.Stats.Uploads, meta.Stats.Reallocations, meta.Stats.Rejected)
	fmt.Printf("redraws   %d started  %d applied  %d superseded  %d failed\n",
		meta.Stats.RedrawsStarted, meta.Stats.RedrawsApplied, meta.Stats.Superseded, meta.Stats.DecodeFailures)
	return nil
}
