package grid

import "errors"

var (
	// ErrEmptyGrid indicates a grid with a non-positive width or height.
	ErrEmptyGrid = errors.New("grid: width and height must be positive")

	// ErrOutOfBounds indicates a coordinate that does not lie on the grid.
	ErrOutOfBounds = errors.New("grid: coordinate out of bounds")

	// ErrUnknownAdjacency indicates an adjacency name that is not registered.
	ErrUnknownAdjacency = errors.New("grid: unknown adjacency")
)
