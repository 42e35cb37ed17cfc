package grid

import (
	"fmt"
	"math/rand"
)

// Adjacency selects which surrounding cells count as neighbours.
type Adjacency int

const (
	// Cross uses 4-directional adjacency: N, E, S, W.
	Cross Adjacency = iota
	// Square adds the diagonals: N, NE, E, SE, S, SW, W, NW.
	Square
)

var (
	crossOffsets  = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	squareOffsets = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
)

func (a Adjacency) String() string {
	switch a {
	case Square:
		return "square"
	default:
		return "cross"
	}
}

// ParseAdjacency maps a config name to an Adjacency.
func ParseAdjacency(name string) (Adjacency, error) {
	switch name {
	case "", "cross":
		return Cross, nil
	case "square":
		return Square, nil
	}
	return Cross, fmt.Errorf("%w: %q", ErrUnknownAdjacency, name)
}

func (a Adjacency) offsets() [][2]int {
	if a == Square {
		return squareOffsets
	}
	return crossOffsets
}

// NeighbourPolicy decides which neighbours a traversal expands and in what order.
// A policy with a random source shuffles the neighbour list on every call, so ties
// between neighbours are broken uniformly at random. The policy is owned by a
// single traversal goroutine and is not safe for concurrent use.
type NeighbourPolicy struct {
	Adjacency Adjacency
	rng       *rand.Rand
}

// NewNeighbourPolicy returns a policy. A nil rng keeps the fixed offset order.
func NewNeighbourPolicy(adj Adjacency, rng *rand.Rand) NeighbourPolicy {
	return NeighbourPolicy{Adjacency: adj, rng: rng}
}

// Randomised reports whether expansion order is shuffled.
func (p NeighbourPolicy) Randomised() bool { return p.rng != nil }

// Neighbours returns the in-bounds neighbours of c in expansion order.
func (p NeighbourPolicy) Neighbours(g Grid, c Coordinate) []Coordinate {
	offsets := p.Adjacency.offsets()
	out := make([]Coordinate, 0, len(offsets))
	for _, d := range offsets {
		n := c.Add(d)
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	if p.rng != nil {
		p.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

// RandomEdgePoint picks one of the four edges uniformly, then a uniform cell on it.
func RandomEdgePoint(rng *rand.Rand, g Grid) Coordinate {
	switch rng.Intn(4) {
	case 0: // top
		return Coordinate{X: rng.Intn(g.Width), Y: 0}
	case 1: // bottom
		return Coordinate{X: rng.Intn(g.Width), Y: g.Height - 1}
	case 2: // left
		return Coordinate{X: 0, Y: rng.Intn(g.Height)}
	default: // right
		return Coordinate{X: g.Width - 1, Y: rng.Intn(g.Height)}
	}
}
