// Package metrics summarises a visit order as it is observed one cell at a time.
package metrics

import "github.com/san-kum/gridsearch/internal/grid"

// Metric accumulates over consecutive visits. Observe receives the previous
// cell (the zero Coordinate with first=true for the start cell).
type Metric interface {
	Name() string
	Observe(prev, cur grid.Coordinate, first bool)
	Value() float64
	Reset()
}

// Defaults returns a fresh instance of every built-in metric.
func Defaults() []Metric {
	return []Metric{NewStepLength(), NewJumps(), NewSpread()}
}

// Evaluate resets each metric and feeds it cells in order.
func Evaluate(cells []grid.Coordinate, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, c := range cells {
			var prev grid.Coordinate
			if i > 0 {
				prev = cells[i-1]
			}
			m.Observe(prev, c, i == 0)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

func manhattan(a, b grid.Coordinate) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
