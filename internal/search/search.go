package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/gridsearch/internal/grid"
)

var (
	// ErrStartOutOfBounds is returned when the start cell is not on the grid.
	ErrStartOutOfBounds = errors.New("search: start cell out of bounds")

	// ErrUnknownAlgorithm is returned by the registry for unregistered names.
	ErrUnknownAlgorithm = errors.New("search: unknown algorithm")
)

// VisitFunc receives each newly visited cell exactly once, in visit order.
type VisitFunc func(grid.Coordinate)

// Algorithm is a traversal engine.
type Algorithm interface {
	Name() string
	Walk(ctx context.Context, g grid.Grid, start grid.Coordinate, policy grid.NeighbourPolicy, visit VisitFunc) error
}

// Registry maps algorithm names to constructors.
type Registry struct {
	algorithms map[string]func() Algorithm
}

func NewRegistry() *Registry {
	r := &Registry{algorithms: make(map[string]func() Algorithm)}
	r.algorithms["dfs"] = func() Algorithm { return NewDFS() }
	r.algorithms["bfs"] = func() Algorithm { return NewBFS() }
	return r
}

// Register adds or replaces a named algorithm.
func (r *Registry) Register(name string, fn func() Algorithm) {
	r.algorithms[name] = fn
}

func (r *Registry) Get(name string) (Algorithm, error) {
	fn, ok := r.algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	return fn(), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.algorithms))
	for name := range r.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkStart(g grid.Grid, start grid.Coordinate) error {
	if !g.InBounds(start) {
		return fmt.Errorf("%w: %v on %dx%d", ErrStartOutOfBounds, start, g.Width, g.Height)
	}
	return nil
}
