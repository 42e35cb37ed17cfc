package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/logging"
	"github.com/san-kum/gridsearch/internal/schedule"
	"github.com/san-kum/gridsearch/internal/search"
	"github.com/san-kum/gridsearch/internal/trace"
)

// Options configures how a Controller builds its workers.
type Options struct {
	Algorithm search.Algorithm
	Adjacency grid.Adjacency
	// Randomise shuffles neighbour expansion order.
	Randomise bool
	// Rand drives start-cell selection and seeds each worker's neighbour order.
	Rand *rand.Rand
	// JoinTimeout bounds CancelAndJoin. Zero waits forever.
	JoinTimeout time.Duration
	Logger      *slog.Logger
}

func (o *Options) setDefaults() {
	if o.Algorithm == nil {
		o.Algorithm = search.NewDFS()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.Logger == nil {
		o.Logger = logging.New("playback")
	}
}

type pending struct {
	apply   *config.GraphConfig
	reset   bool
	restart bool
	back    bool
	next    bool
}

// Controller replays the current worker's trace onto a RenderSink.
type Controller struct {
	ctx     context.Context
	cfg     config.GraphConfig
	grid    grid.Grid
	sink    RenderSink
	opts    Options
	log     *slog.Logger
	worker  *trace.Worker
	cursor  int
	state   State
	pending pending
	hangs   int
	closed  bool
}

// New validates cfg, clears the sink and starts the first worker. Workers are
// children of ctx. The controller starts Paused at cursor 0.
func New(ctx context.Context, cfg config.GraphConfig, sink RenderSink, opts Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()
	g, err := grid.New(cfg.GridSize.X, cfg.GridSize.Y)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		ctx:   ctx,
		cfg:   cfg,
		grid:  g,
		sink:  sink,
		opts:  opts,
		log:   opts.Logger,
		state: Paused,
	}
	if a, ok := sink.(ConfigApplier); ok {
		a.ApplyConfig(cfg)
	}
	c.sink.ClearAll()
	c.worker = c.spawn()
	return c, nil
}

// Submit records a command for the next Tick. Play/pause and rate changes take
// effect immediately; the one-shot requests wait for Tick. An invalid payload is
// rejected without touching any state.
func (c *Controller) Submit(cmd Command) error {
	if c.closed {
		return ErrClosed
	}
	switch cmd.Type {
	case CmdGoBack:
		c.pending.back = true
	case CmdGoNext:
		c.pending.next = true
	case CmdPlayForward:
		c.state = PlayingForward
	case CmdPlayBackward:
		c.state = PlayingBackward
	case CmdPause:
		c.state = Paused
	case CmdRestart:
		c.pending.restart = true
	case CmdReset:
		c.pending.reset = true
	case CmdApplyOptions:
		if err := cmd.Config.Validate(); err != nil {
			return err
		}
		cfg := cmd.Config
		c.pending.apply = &cfg
	case CmdSetRate:
		if err := config.ValidateRate(cmd.Rate); err != nil {
			return err
		}
		c.cfg = c.cfg.WithRate(cmd.Rate)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Type)
	}
	return nil
}

// Tick runs one evaluation step. A non-nil error is a broken invariant and the
// controller must not be ticked again.
func (c *Controller) Tick() error {
	if c.closed {
		return ErrClosed
	}
	cells, complete := c.worker.Snapshot()

	switch {
	case c.pending.apply != nil:
		cfg := *c.pending.apply
		c.pending.apply = nil
		c.applyOptions(cfg)
	case c.pending.reset:
		c.pending.reset = false
		c.reset()
	case c.pending.restart:
		c.pending.restart = false
		c.restart()
	case c.pending.back:
		c.pending.back = false
		c.stepBackward(cells)
		c.state = Paused
	case c.pending.next:
		c.pending.next = false
		c.stepForward(cells)
		c.state = Paused
	case c.state == Paused:
	case c.atEnd(cells, complete):
		c.sink.SetCellColour(cells[c.cursor-1], Frontier)
		c.state = Paused
	case c.state == PlayingForward:
		c.stepForward(cells)
	default:
		c.stepBackward(cells)
	}

	return c.checkBounds()
}

// Interval is the scheduler delay for the current rate.
func (c *Controller) Interval() time.Duration {
	return schedule.Interval(c.cfg.StepsPerSecond)
}

func (c *Controller) Config() config.GraphConfig { return c.cfg }

func (c *Controller) Grid() grid.Grid { return c.grid }

// Trace returns a consistent snapshot of the current worker's trace.
func (c *Controller) Trace() ([]grid.Coordinate, bool) { return c.worker.Snapshot() }

// WaitTrace blocks until the current worker finishes its walk or ctx ends.
func (c *Controller) WaitTrace(ctx context.Context) error { return c.worker.Wait(ctx) }

func (c *Controller) Status() Status {
	cells, complete := c.worker.Snapshot()
	return Status{
		Cursor:    c.cursor,
		Len:       len(cells),
		Complete:  complete,
		State:     c.state,
		Config:    c.cfg,
		Start:     c.worker.Start(),
		Algorithm: c.worker.Algorithm(),
		Hangs:     c.hangs,
	}
}

// Close cancels and joins the active worker. It is safe to call more than once.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.worker.CancelAndJoin(c.opts.JoinTimeout); err != nil {
		c.log.Warn("worker did not stop on close", "error", err)
		return err
	}
	return nil
}

// atEnd reports the terminal hold: every produced cell shown and no more coming.
func (c *Controller) atEnd(cells []grid.Coordinate, complete bool) bool {
	return complete && len(cells) > 0 && c.cursor == len(cells)
}

// stepForward leaves the frontier Explored and shows the next cell. At the end
// of what has been produced so far it does nothing.
func (c *Controller) stepForward(cells []grid.Coordinate) {
	if c.cursor >= len(cells) {
		return
	}
	if c.cursor > 0 {
		c.sink.SetCellColour(cells[c.cursor-1], Explored)
	}
	c.sink.SetCellColour(cells[c.cursor], Frontier)
	c.cursor++
}

// stepBackward restores the previous cell as frontier and reverts the cell being
// left to Unvisited. The first shown cell is never hidden this way.
func (c *Controller) stepBackward(cells []grid.Coordinate) {
	if c.cursor <= 1 {
		return
	}
	c.cursor--
	c.sink.SetCellColour(cells[c.cursor-1], Frontier)
	c.sink.SetCellColour(cells[c.cursor], Unvisited)
}

func (c *Controller) restart() {
	c.sink.ClearAll()
	c.cursor = 0
	c.state = Paused
	c.log.Debug("restart", "trace_len", c.worker.Trace().Len())
}

func (c *Controller) reset() {
	c.stopWorker()
	c.sink.ClearAll()
	c.cursor = 0
	c.state = Paused
	c.worker = c.spawn()
}

func (c *Controller) applyOptions(cfg config.GraphConfig) {
	g, err := grid.New(cfg.GridSize.X, cfg.GridSize.Y)
	if err != nil {
		// Submit validated cfg, so this only fires if validation and grid disagree.
		c.log.Error("options rejected", "error", err)
		return
	}
	c.log.Info("applying options",
		"grid", fmt.Sprintf("%dx%d", cfg.GridSize.X, cfg.GridSize.Y),
		"tile", fmt.Sprintf("%dx%d", cfg.TileSize.X, cfg.TileSize.Y),
		"steps_per_second", cfg.StepsPerSecond)

	c.cfg = cfg
	c.grid = g
	if a, ok := c.sink.(ConfigApplier); ok {
		a.ApplyConfig(cfg)
	}
	c.reset()
}

// stopWorker cancels and joins the current worker. A worker that overruns the
// join timeout is abandoned: its trace is dropped with it and it has no path to
// the sink.
func (c *Controller) stopWorker() {
	err := c.worker.CancelAndJoin(c.opts.JoinTimeout)
	if errors.Is(err, trace.ErrWorkerHang) {
		c.hangs++
		c.log.Warn("abandoning worker", "error", err, "start", c.worker.Start().String())
	}
}

func (c *Controller) spawn() *trace.Worker {
	start := grid.RandomEdgePoint(c.opts.Rand, c.grid)
	var policyRand *rand.Rand
	if c.opts.Randomise {
		policyRand = rand.New(rand.NewSource(c.opts.Rand.Int63()))
	}
	policy := grid.NewNeighbourPolicy(c.opts.Adjacency, policyRand)
	c.log.Info("starting traversal",
		"algorithm", c.opts.Algorithm.Name(),
		"start", start.String(),
		"grid", fmt.Sprintf("%dx%d", c.grid.Width, c.grid.Height),
		"neighbours", c.opts.Adjacency.String())
	return trace.Start(c.ctx, c.opts.Algorithm, c.grid, start, policy, c.log)
}

func (c *Controller) checkBounds() error {
	n := c.worker.Trace().Len()
	if c.cursor < 0 || c.cursor > n {
		err := &BoundsError{Cursor: c.cursor, Len: n}
		c.log.Error("cursor invariant broken", "cursor", c.cursor, "len", n)
		return err
	}
	return nil
}
