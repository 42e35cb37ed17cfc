// Package grid defines the rectangular cell lattice that traversals walk.
//
//   - [Coordinate]: immutable (X, Y) cell address
//   - [Grid]: bounded width x height lattice
//   - [NeighbourPolicy]: adjacency (cross or square) and expansion order
//
// Start cells are chosen on the grid boundary by [RandomEdgePoint]: one of the
// four edges is picked uniformly, then a uniform position along it.
package grid
