package search

import (
	"context"

	"github.com/san-kum/gridsearch/internal/grid"
)

// BFS visits cells in increasing distance from the start. Cells are marked on
// enqueue so each is queued once.
type BFS struct{}

func NewBFS() *BFS { return &BFS{} }

func (b *BFS) Name() string { return "bfs" }

// walker holds the mutable state of one breadth-first walk.
type walker struct {
	ctx     context.Context
	grid    grid.Grid
	policy  grid.NeighbourPolicy
	visit   VisitFunc
	queue   []grid.Coordinate
	visited []bool
}

func (b *BFS) Walk(ctx context.Context, g grid.Grid, start grid.Coordinate, policy grid.NeighbourPolicy, visit VisitFunc) error {
	if err := checkStart(g, start); err != nil {
		return err
	}
	w := &walker{
		ctx:     ctx,
		grid:    g,
		policy:  policy,
		visit:   visit,
		queue:   make([]grid.Coordinate, 0, g.Cells()),
		visited: make([]bool, g.Cells()),
	}
	w.enqueue(start)
	return w.loop()
}

func (w *walker) enqueue(c grid.Coordinate) {
	w.visited[w.grid.Index(c)] = true
	w.queue = append(w.queue, c)
}

func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		c := w.queue[0]
		w.queue = w.queue[1:]
		w.visit(c)
		for _, n := range w.policy.Neighbours(w.grid, c) {
			if !w.visited[w.grid.Index(n)] {
				w.enqueue(n)
			}
		}
	}
	return nil
}
