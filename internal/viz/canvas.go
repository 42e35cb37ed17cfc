package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/playback"
)

// Half blocks pack two grid rows into one terminal line:
// the foreground paints the upper cell, the background the lower one.
const halfBlock = "▀"

// Canvas is the terminal RenderSink. It stores one colour per grid cell and
// renders them on demand.
type Canvas struct {
	Width, Height int
	Tile          config.Size
	cells         []playback.Colour
}

func NewCanvas(cfg config.GraphConfig) *Canvas {
	c := &Canvas{}
	c.ApplyConfig(cfg)
	return c
}

// ApplyConfig resizes the canvas and drops every colour.
func (c *Canvas) ApplyConfig(cfg config.GraphConfig) {
	c.Width, c.Height = cfg.GridSize.X, cfg.GridSize.Y
	c.Tile = cfg.TileSize
	c.cells = make([]playback.Colour, c.Width*c.Height)
}

// SetCellColour ignores cells outside the canvas.
func (c *Canvas) SetCellColour(p grid.Coordinate, colour playback.Colour) {
	if p.X < 0 || p.Y < 0 || p.X >= c.Width || p.Y >= c.Height {
		return
	}
	c.cells[p.Y*c.Width+p.X] = colour
}

func (c *Canvas) ClearAll() {
	for i := range c.cells {
		c.cells[i] = playback.Unvisited
	}
}

func (c *Canvas) Colour(p grid.Coordinate) playback.Colour {
	if p.X < 0 || p.Y < 0 || p.X >= c.Width || p.Y >= c.Height {
		return playback.Unvisited
	}
	return c.cells[p.Y*c.Width+p.X]
}

// Counts tallies cells per colour.
func (c *Canvas) Counts() map[playback.Colour]int {
	counts := make(map[playback.Colour]int, 3)
	for _, colour := range c.cells {
		counts[colour]++
	}
	return counts
}

// Render draws the canvas with the theme's cell colours.
func (c *Canvas) Render(theme Theme) string {
	styles := make(map[[2]playback.Colour]lipgloss.Style, 9)
	style := func(top, bottom playback.Colour) lipgloss.Style {
		key := [2]playback.Colour{top, bottom}
		if s, ok := styles[key]; ok {
			return s
		}
		s := lipgloss.NewStyle().Foreground(theme.CellColour(top)).Background(theme.CellColour(bottom))
		styles[key] = s
		return s
	}

	var b strings.Builder
	for y := 0; y < c.Height; y += 2 {
		for x := 0; x < c.Width; x++ {
			top := c.Colour(grid.Coordinate{X: x, Y: y})
			bottom := playback.Unvisited
			if y+1 < c.Height {
				bottom = c.Colour(grid.Coordinate{X: x, Y: y + 1})
			}
			b.WriteString(style(top, bottom).Render(halfBlock))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// String renders without colour: '.' unvisited, '@' frontier, '#' explored.
func (c *Canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			switch c.Colour(grid.Coordinate{X: x, Y: y}) {
			case playback.Frontier:
				b.WriteByte('@')
			case playback.Explored:
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
