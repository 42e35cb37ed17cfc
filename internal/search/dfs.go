package search

import (
	"context"

	"github.com/san-kum/gridsearch/internal/grid"
)

// DFS is an iterative depth-first traversal. A cell is visited when it is popped
// for the first time, so the visit order is the closed-set order.
type DFS struct{}

func NewDFS() *DFS { return &DFS{} }

func (d *DFS) Name() string { return "dfs" }

func (d *DFS) Walk(ctx context.Context, g grid.Grid, start grid.Coordinate, policy grid.NeighbourPolicy, visit VisitFunc) error {
	if err := checkStart(g, start); err != nil {
		return err
	}

	visited := make([]bool, g.Cells())
	stack := make([]grid.Coordinate, 0, g.Cells())
	stack = append(stack, start)

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[g.Index(c)] {
			continue
		}
		visited[g.Index(c)] = true
		visit(c)

		// push in reverse so the first neighbour in policy order is expanded first
		nbrs := policy.Neighbours(g, c)
		for i := len(nbrs) - 1; i >= 0; i-- {
			if !visited[g.Index(nbrs[i])] {
				stack = append(stack, nbrs[i])
			}
		}
	}
	return nil
}
