package playback

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/logging"
	"github.com/san-kum/gridsearch/internal/search"
)

type recordingSink struct {
	colours map[grid.Coordinate]Colour
	writes  int
	clears  int
	applied []config.GraphConfig
}

func newRecordingSink() *recordingSink {
	return &recordingSink{colours: make(map[grid.Coordinate]Colour)}
}

func (s *recordingSink) SetCellColour(c grid.Coordinate, colour Colour) {
	s.writes++
	if colour == Unvisited {
		delete(s.colours, c)
		return
	}
	s.colours[c] = colour
}

func (s *recordingSink) ClearAll() {
	s.clears++
	s.colours = make(map[grid.Coordinate]Colour)
}

func (s *recordingSink) ApplyConfig(cfg config.GraphConfig) {
	s.applied = append(s.applied, cfg)
}

func (s *recordingSink) colourOf(c grid.Coordinate) Colour {
	return s.colours[c]
}

// snapshot copies the current colouring.
func (s *recordingSink) snapshot() map[grid.Coordinate]Colour {
	out := make(map[grid.Coordinate]Colour, len(s.colours))
	for k, v := range s.colours {
		out[k] = v
	}
	return out
}

// scriptedAlgorithm visits a fixed sequence regardless of grid and start.
type scriptedAlgorithm struct {
	cells []grid.Coordinate
}

func (a *scriptedAlgorithm) Name() string { return "scripted" }

func (a *scriptedAlgorithm) Walk(ctx context.Context, _ grid.Grid, _ grid.Coordinate, _ grid.NeighbourPolicy, visit search.VisitFunc) error {
	for _, c := range a.cells {
		if err := ctx.Err(); err != nil {
			return err
		}
		visit(c)
	}
	return nil
}

// gatedAlgorithm visits one scripted cell per receive on step.
type gatedAlgorithm struct {
	cells []grid.Coordinate
	step  chan struct{}
}

func (a *gatedAlgorithm) Name() string { return "gated" }

func (a *gatedAlgorithm) Walk(ctx context.Context, _ grid.Grid, _ grid.Coordinate, _ grid.NeighbourPolicy, visit search.VisitFunc) error {
	for _, c := range a.cells {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.step:
		}
		visit(c)
	}
	return nil
}

// countingAlgorithm wraps another algorithm and records peak concurrency.
type countingAlgorithm struct {
	inner  search.Algorithm
	active atomic.Int32
	peak   atomic.Int32
	starts atomic.Int32
}

func (a *countingAlgorithm) Name() string { return "counting-" + a.inner.Name() }

func (a *countingAlgorithm) Walk(ctx context.Context, g grid.Grid, start grid.Coordinate, policy grid.NeighbourPolicy, visit search.VisitFunc) error {
	a.starts.Add(1)
	n := a.active.Add(1)
	defer a.active.Add(-1)
	for {
		p := a.peak.Load()
		if n <= p || a.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return a.inner.Walk(ctx, g, start, policy, visit)
}

// stubbornAlgorithm ignores cancellation until released.
type stubbornAlgorithm struct {
	release chan struct{}
}

func (a *stubbornAlgorithm) Name() string { return "stubborn" }

func (a *stubbornAlgorithm) Walk(_ context.Context, _ grid.Grid, start grid.Coordinate, _ grid.NeighbourPolicy, visit search.VisitFunc) error {
	visit(start)
	<-a.release
	return nil
}

func graphConfig(w, h int) config.GraphConfig {
	return config.GraphConfig{
		TileSize:       config.Size{X: 1, Y: 1},
		GridSize:       config.Size{X: w, Y: h},
		StepsPerSecond: 60,
	}
}

func newTestController(t *testing.T, cfg config.GraphConfig, alg search.Algorithm) (*Controller, *recordingSink) {
	t.Helper()
	sink := newRecordingSink()
	c, err := New(context.Background(), cfg, sink, Options{
		Algorithm:   alg,
		Randomise:   true,
		Rand:        rand.New(rand.NewSource(1)),
		JoinTimeout: 5 * time.Second,
		Logger:      logging.Discard(),
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, sink
}

func waitComplete(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.WaitTrace(ctx); err != nil {
		t.Fatalf("wait trace: %v", err)
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 5s")
		}
		time.Sleep(time.Millisecond)
	}
}

func mustSubmit(t *testing.T, c *Controller, cmds ...Command) {
	t.Helper()
	for _, cmd := range cmds {
		if err := c.Submit(cmd); err != nil {
			t.Fatalf("submit %s: %v", cmd.Type, err)
		}
	}
}

func mustTick(t *testing.T, c *Controller, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
}

// expectedColouring derives the colouring the cursor implies.
func expectedColouring(cells []grid.Coordinate, cursor int) map[grid.Coordinate]Colour {
	want := make(map[grid.Coordinate]Colour)
	for i := 0; i < cursor; i++ {
		if i == cursor-1 {
			want[cells[i]] = Frontier
		} else {
			want[cells[i]] = Explored
		}
	}
	return want
}

func row(n int) []grid.Coordinate {
	cells := make([]grid.Coordinate, n)
	for i := range cells {
		cells[i] = grid.Coordinate{X: i}
	}
	return cells
}
