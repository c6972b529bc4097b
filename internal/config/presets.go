package config

import "slices"

// Presets are named display setups.
var Presets = map[string]*Config{
	"thumbnail": {
		Display: DisplayConfig{Width: "128px", Height: "128px"},
	},
	"square": {
		Display: DisplayConfig{Width: "512px", Height: "512px"},
	},
	"wide": {
		Display:  DisplayConfig{Width: "100%", Height: "360px", ContainerWidth: 960, ContainerHeight: 540},
		Wave:     WaveConfig{GridW: 160, GridH: 60},
		Colormap: "coolwarm",
	},
	"smooth": {
		Display: DisplayConfig{Width: "512px", Height: "512px", Smoothing: true},
	},
	"hires": {
		Display: DisplayConfig{Width: "768px", Height: "512px"},
		Wave:    WaveConfig{GridW: 240, GridH: 160, Steps: 4},
	},
}

// GetPreset returns DefaultConfig overlaid with the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Apply(p)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for k := range Presets {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Apply copies the non-zero fields of o into c.
func (c *Config) Apply(o *Config) {
	if o.Display.Width != "" {
		c.Display.Width = o.Display.Width
	}
	if o.Display.Height != "" {
		c.Display.Height = o.Display.Height
	}
	if o.Display.Smoothing {
		c.Display.Smoothing = true
	}
	if o.Display.ContainerWidth > 0 {
		c.Display.ContainerWidth = o.Display.ContainerWidth
	}
	if o.Display.ContainerHeight > 0 {
		c.Display.ContainerHeight = o.Display.ContainerHeight
	}
	if o.Wave.GridW > 0 {
		c.Wave.GridW = o.Wave.GridW
	}
	if o.Wave.GridH > 0 {
		c.Wave.GridH = o.Wave.GridH
	}
	if o.Wave.WaveSpeed > 0 {
		c.Wave.WaveSpeed = o.Wave.WaveSpeed
	}
	if o.Wave.Damping > 0 {
		c.Wave.Damping = o.Wave.Damping
	}
	if o.Wave.Steps > 0 {
		c.Wave.Steps = o.Wave.Steps
	}
	if o.Wave.FrameRate > 0 {
		c.Wave.FrameRate = o.Wave.FrameRate
	}
	if o.Wave.Seed != 0 {
		c.Wave.Seed = o.Wave.Seed
	}
	if o.Colormap != "" {
		c.Colormap = o.Colormap
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}
