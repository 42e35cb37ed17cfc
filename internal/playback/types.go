package playback

import (
	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/grid"
)

// Colour is the rendering state of one cell.
type Colour int

const (
	Unvisited Colour = iota
	Frontier
	Explored
)

func (c Colour) String() string {
	switch c {
	case Frontier:
		return "frontier"
	case Explored:
		return "explored"
	default:
		return "unvisited"
	}
}

// State is the persistent playback mode.
type State int

const (
	Paused State = iota
	PlayingForward
	PlayingBackward
)

func (s State) String() string {
	switch s {
	case PlayingForward:
		return "playing forward"
	case PlayingBackward:
		return "playing backward"
	default:
		return "paused"
	}
}

// RenderSink receives colour commands. Both calls complete before returning and
// the last write to a cell wins.
type RenderSink interface {
	SetCellColour(c grid.Coordinate, colour Colour)
	ClearAll()
}

// ConfigApplier is implemented by sinks that resize when the graph config changes.
type ConfigApplier interface {
	ApplyConfig(cfg config.GraphConfig)
}

// Status is a read-only view for status panels and tests.
type Status struct {
	Cursor    int
	Len       int
	Complete  bool
	State     State
	Config    config.GraphConfig
	Start     grid.Coordinate
	Algorithm string
	Hangs     int
}
