package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/playback"
	"github.com/san-kum/gridsearch/internal/viz"
)

// CanvasToSVG draws every visited cell as one tile-sized rectangle on the
// theme's unvisited background.
func CanvasToSVG(canvas *viz.Canvas, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}
	tw, th := max(canvas.Tile.X, 1), max(canvas.Tile.Y, 1)
	width, height := canvas.Width*tw, canvas.Height*th

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, theme.Unvisited))

	for _, colour := range []playback.Colour{playback.Explored, playback.Frontier} {
		sb.WriteString(fmt.Sprintf("<g fill=%q>\n", string(theme.CellColour(colour))))
		for y := 0; y < canvas.Height; y++ {
			for x := 0; x < canvas.Width; x++ {
				if canvas.Colour(grid.Coordinate{X: x, Y: y}) != colour {
					continue
				}
				sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d"/>
`, x*tw, y*th, tw, th))
			}
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TraceToSVG draws the visit order as a path through tile centres.
func TraceToSVG(cells []grid.Coordinate, g grid.Grid, tileW, tileH int, strokeColor string) string {
	if len(cells) < 2 {
		return ""
	}
	tileW, tileH = max(tileW, 1), max(tileH, 1)
	width, height := g.Width*tileW, g.Height*tileH

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, c := range cells {
		x := float64(c.X*tileW) + float64(tileW)/2
		y := float64(c.Y*tileH) + float64(tileH)/2
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	start := cells[0]
	sb.WriteString(fmt.Sprintf(`"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
</svg>`, float64(start.X*tileW)+float64(tileW)/2, float64(start.Y*tileH)+float64(tileH)/2,
		float64(min(tileW, tileH))/2, strokeColor))
	return sb.String()
}
