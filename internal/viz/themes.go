package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gridsearch/internal/playback"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Unvisited lipgloss.Color
	Frontier  lipgloss.Color
	Explored  lipgloss.Color
	Primary   lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

func (t Theme) CellColour(c playback.Colour) lipgloss.Color {
	switch c {
	case playback.Frontier:
		return t.Frontier
	case playback.Explored:
		return t.Explored
	default:
		return t.Unvisited
	}
}

// Available themes
var (
	ThemeClassic = Theme{
		Name:      "classic",
		Unvisited: lipgloss.Color("#000000"),
		Frontier:  lipgloss.Color("#ff0000"),
		Explored:  lipgloss.Color("#ffffff"),
		Primary:   lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#ff4444"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#777777"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Unvisited: lipgloss.Color("#0a0a0a"),
		Frontier:  lipgloss.Color("#ffff00"), // Yellow
		Explored:  lipgloss.Color("#ff00ff"), // Magenta
		Primary:   lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Warning:   lipgloss.Color("#ff8800"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Unvisited: lipgloss.Color("#001100"),
		Frontier:  lipgloss.Color("#88ff88"),
		Explored:  lipgloss.Color("#00aa00"), // Green phosphor
		Primary:   lipgloss.Color("#00ff00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Unvisited: lipgloss.Color("#001a33"),
		Frontier:  lipgloss.Color("#ffd700"),
		Explored:  lipgloss.Color("#0077be"), // Ocean blue
		Primary:   lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Unvisited: lipgloss.Color("#2d1b2e"),
		Frontier:  lipgloss.Color("#feca57"),
		Explored:  lipgloss.Color("#ff6b6b"), // Coral
		Primary:   lipgloss.Color("#ff9ff3"),
		Accent:    lipgloss.Color("#feca57"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Warning:   lipgloss.Color("#ffc048"),
		Error:     lipgloss.Color("#ff4757"),
	}

	// All available themes
	Themes = []Theme{
		ThemeClassic,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to classic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, candidate := range Themes {
		if candidate.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
