package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/framecanvas/internal/cssdim"
)

const (
	DefaultWidth     = "256px"
	DefaultHeight    = "256px"
	DefaultColormap  = "viridis"
	DefaultGridW     = 96
	DefaultGridH     = 64
	DefaultFrameRate = 30
	DefaultDataDir   = ".framecanvas"
	DefaultFormat    = "webp"
	DefaultLogLevel  = "info"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Display  DisplayConfig `yaml:"display"`
	Wave     WaveConfig    `yaml:"wave"`
	Colormap string        `yaml:"colormap"`
	DataDir  string        `yaml:"data_dir"`
	Format   string        `yaml:"format"`
	LogLevel string        `yaml:"log_level"`
}

type DisplayConfig struct {
	Width     string `yaml:"width"`
	Height    string `yaml:"height"`
	Smoothing bool   `yaml:"smoothing"`
	// Container is the space the canvas lays out in; zero disables
	// percentage sizing.
	ContainerWidth  int `yaml:"container_width"`
	ContainerHeight int `yaml:"container_height"`
}

type WaveConfig struct {
	GridW     int     `yaml:"grid_w"`
	GridH     int     `yaml:"grid_h"`
	WaveSpeed float64 `yaml:"wave_speed"`
	Damping   float64 `yaml:"damping"`
	Steps     int     `yaml:"steps_per_frame"`
	FrameRate int     `yaml:"frame_rate"`
	Seed      int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		Wave: WaveConfig{
			GridW:     DefaultGridW,
			GridH:     DefaultGridH,
			WaveSpeed: 1.0,
			Damping:   0.02,
			Steps:     2,
			FrameRate: DefaultFrameRate,
			Seed:      1,
		},
		Colormap: DefaultColormap,
		DataDir:  DefaultDataDir,
		Format:   DefaultFormat,
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := cssdim.Parse(c.Display.Width); err != nil {
		errs = append(errs, fmt.Errorf("display.width: %w", err))
	}
	if _, err := cssdim.Parse(c.Display.Height); err != nil {
		errs = append(errs, fmt.Errorf("display.height: %w", err))
	}
	if c.Display.ContainerWidth < 0 || c.Display.ContainerHeight < 0 {
		errs = append(errs, errors.New("display container must not be negative"))
	}
	if c.Wave.GridW < 3 || c.Wave.GridH < 3 {
		errs = append(errs, fmt.Errorf("wave grid %dx%d smaller than 3x3", c.Wave.GridW, c.Wave.GridH))
	}
	if c.Wave.WaveSpeed <= 0 {
		errs = append(errs, errors.New("wave.wave_speed must be positive"))
	}
	if c.Wave.Steps < 1 {
		errs = append(errs, errors.New("wave.steps_per_frame must be at least 1"))
	}
	if c.Wave.FrameRate < 1 {
		errs = append(errs, errors.New("wave.frame_rate must be at least 1"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// DisplaySize returns the parsed display dimensions. Call Validate first.
func (c *Config) DisplaySize() (cssdim.Dimension, cssdim.Dimension) {
	w, _ := cssdim.Parse(c.Display.Width)
	h, _ := cssdim.Parse(c.Display.Height)
	return w, h
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
}
