package tui

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the viewer's palette.
type Theme struct {
	Name    string
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Live    lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var themes = map[string]Theme{
	"default": {
		Name:    "default",
		Accent:  lipgloss.Color("86"),
		Text:    lipgloss.Color("255"),
		Muted:   lipgloss.Color("242"),
		Live:    lipgloss.Color("82"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
	},
	"retro": {
		Name:    "retro",
		Accent:  lipgloss.Color("#00ff00"),
		Text:    lipgloss.Color("#33ff33"),
		Muted:   lipgloss.Color("#006600"),
		Live:    lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	},
	"mono": {
		Name:    "mono",
		Accent:  lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#dddddd"),
		Muted:   lipgloss.Color("#777777"),
		Live:    lipgloss.Color("#ffffff"),
		Warning: lipgloss.Color("#bbbbbb"),
		Error:   lipgloss.Color("#ffffff"),
	},
}

// GetTheme returns the named theme, falling back to "default".
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes["default"]
}

func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for k := range themes {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

type styles struct {
	accent, text, muted, live, warning, err lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		accent:  lipgloss.NewStyle().Foreground(t.Accent),
		text:    lipgloss.NewStyle().Foreground(t.Text),
		muted:   lipgloss.NewStyle().Foreground(t.Muted),
		live:    lipgloss.NewStyle().Foreground(t.Live),
		warning: lipgloss.NewStyle().Foreground(t.Warning),
		err:     lipgloss.NewStyle().Foreground(t.Error),
	}
}
