package metrics

import "github.com/san-kum/gridsearch/internal/grid"

// StepLength is the mean Manhattan distance between consecutive visits.
type StepLength struct {
	total   int
	samples int
}

func NewStepLength() *StepLength { return &StepLength{} }

func (s *StepLength) Name() string { return "step_length" }

func (s *StepLength) Observe(prev, cur grid.Coordinate, first bool) {
	if first {
		return
	}
	s.total += manhattan(prev, cur)
	s.samples++
}

func (s *StepLength) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.total) / float64(s.samples)
}

func (s *StepLength) Reset() { s.total, s.samples = 0, 0 }

// Jumps counts visits that are not a single orthogonal step from the previous
// one. For a depth-first walk these are the backtracks.
type Jumps struct {
	count int
}

func NewJumps() *Jumps { return &Jumps{} }

func (j *Jumps) Name() string { return "jumps" }

func (j *Jumps) Observe(prev, cur grid.Coordinate, first bool) {
	if !first && manhattan(prev, cur) != 1 {
		j.count++
	}
}

func (j *Jumps) Value() float64 { return float64(j.count) }

func (j *Jumps) Reset() { j.count = 0 }

// Spread is the furthest Manhattan distance from the start cell.
type Spread struct {
	start grid.Coordinate
	max   int
}

func NewSpread() *Spread { return &Spread{} }

func (s *Spread) Name() string { return "spread" }

func (s *Spread) Observe(_, cur grid.Coordinate, first bool) {
	if first {
		s.start = cur
		return
	}
	if d := manhattan(s.start, cur); d > s.max {
		s.max = d
	}
}

func (s *Spread) Value() float64 { return float64(s.max) }

func (s *Spread) Reset() { s.start, s.max = grid.Coordinate{}, 0 }
