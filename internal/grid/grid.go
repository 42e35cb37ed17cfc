package grid

import "fmt"

// Coordinate addresses a single cell. X grows to the right, Y grows downward.
type Coordinate struct {
	X, Y int
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns c shifted by the offset d.
func (c Coordinate) Add(d [2]int) Coordinate {
	return Coordinate{X: c.X + d[0], Y: c.Y + d[1]}
}

// Grid is an immutable width x height lattice of cells.
type Grid struct {
	Width, Height int
}

// New returns a Grid or ErrEmptyGrid when either dimension is not positive.
func New(width, height int) (Grid, error) {
	if width <= 0 || height <= 0 {
		return Grid{}, fmt.Errorf("%w: got %dx%d", ErrEmptyGrid, width, height)
	}
	return Grid{Width: width, Height: height}, nil
}

// InBounds reports whether c lies within the grid.
func (g Grid) InBounds(c Coordinate) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Cells returns the total number of cells.
func (g Grid) Cells() int { return g.Width * g.Height }

// Index maps c to its row-major index y*Width + x.
func (g Grid) Index(c Coordinate) int { return c.Y*g.Width + c.X }

// Each calls fn for every cell in row-major order.
func (g Grid) Each(fn func(Coordinate)) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			fn(Coordinate{X: x, Y: y})
		}
	}
}
