// Package theme defines the colour palettes used by the gaiacommit screens.
package theme

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colours a screen needs, plus the chroma style used to
// highlight diff previews.
type Theme struct {
	Accent    lipgloss.Color
	AccentFg  lipgloss.Color // text drawn on Accent
	Border    lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
	Cyan      lipgloss.Color
	Chroma    string
	Light     bool
}

// Theme names.
const (
	DraculaName         = "dracula"
	DraculaLightName    = "dracula-light"
	NordName            = "nord"
	GruvboxDarkName     = "gruvbox-dark"
	SolarizedLightName  = "solarized-light"
	CatppuccinMochaName = "catppuccin-mocha"
	CatppuccinLatteName = "catppuccin-latte"
)

var themes = map[string]Theme{
	DraculaName: {
		Accent:    "#BD93F9",
		AccentFg:  "#282A36",
		Border:    "#6272A4",
		MutedFg:   "#6272A4",
		TextFg:    "#F8F8F2",
		SuccessFg: "#50FA7B",
		WarnFg:    "#FFB86C",
		ErrorFg:   "#FF5555",
		Cyan:      "#8BE9FD",
		Chroma:    "dracula",
	},
	DraculaLightName: {
		Accent:    "#c6dbe5",
		AccentFg:  "#24292F",
		Border:    "#D0D7DE",
		MutedFg:   "#6E7781",
		TextFg:    "#24292F",
		SuccessFg: "#059669",
		WarnFg:    "#D97706",
		ErrorFg:   "#DC2626",
		Cyan:      "#0891B2",
		Chroma:    "github",
		Light:     true,
	},
	NordName: {
		Accent:    "#88C0D0",
		AccentFg:  "#2E3440",
		Border:    "#4C566A",
		MutedFg:   "#616E88",
		TextFg:    "#ECEFF4",
		SuccessFg: "#A3BE8C",
		WarnFg:    "#EBCB8B",
		ErrorFg:   "#BF616A",
		Cyan:      "#8FBCBB",
		Chroma:    "nord",
	},
	GruvboxDarkName: {
		Accent:    "#FABD2F",
		AccentFg:  "#282828",
		Border:    "#665C54",
		MutedFg:   "#928374",
		TextFg:    "#EBDBB2",
		SuccessFg: "#B8BB26",
		WarnFg:    "#FE8019",
		ErrorFg:   "#FB4934",
		Cyan:      "#8EC07C",
		Chroma:    "gruvbox",
	},
	SolarizedLightName: {
		Accent:    "#268BD2",
		AccentFg:  "#FDF6E3",
		Border:    "#93A1A1",
		MutedFg:   "#93A1A1",
		TextFg:    "#657B83",
		SuccessFg: "#859900",
		WarnFg:    "#CB4B16",
		ErrorFg:   "#DC322F",
		Cyan:      "#2AA198",
		Chroma:    "solarized-light",
		Light:     true,
	},
	CatppuccinMochaName: {
		Accent:    "#89B4FA",
		AccentFg:  "#1E1E2E",
		Border:    "#6C7086",
		MutedFg:   "#A6ADC8",
		TextFg:    "#CDD6F4",
		SuccessFg: "#A6E3A1",
		WarnFg:    "#F9E2AF",
		ErrorFg:   "#F38BA8",
		Cyan:      "#89DCEB",
		Chroma:    "catppuccin-mocha",
	},
	CatppuccinLatteName: {
		Accent:    "#1E66F5",
		AccentFg:  "#FFFFFF",
		Border:    "#9CA0B0",
		MutedFg:   "#6C6F85",
		TextFg:    "#4C4F69",
		SuccessFg: "#40A02B",
		WarnFg:    "#DF8E1D",
		ErrorFg:   "#D20F39",
		Cyan:      "#04A5E5",
		Chroma:    "catppuccin-latte",
		Light:     true,
	},
}

// Get returns the named theme, or Dracula when the name is unknown.
func Get(name string) *Theme {
	t, ok := themes[Normalize(name)]
	if !ok {
		t = themes[DraculaName]
	}
	return &t
}

// Normalize lowercases name and returns it when it is a known theme, "" otherwise.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := themes[name]; ok {
		return name
	}
	return ""
}

// Available lists every theme name, sorted.
func Available() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Detect picks a default theme from the terminal background.
func Detect() string {
	if lipgloss.HasDarkBackground() {
		return DraculaName
	}
	return DraculaLightName
}
