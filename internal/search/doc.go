// Package search provides the traversal engines whose visitation order is
// played back.
//
// An [Algorithm] walks a [grid.Grid] from a start cell and reports every newly
// visited cell, in order, through a visit callback. Walks check their context
// before each expansion step, so cancelling the context stops a walk within one
// step regardless of how many cells remain.
//
//	alg, _ := search.NewRegistry().Get("dfs")
//	err := alg.Walk(ctx, g, start, policy, func(c grid.Coordinate) { ... })
package search
