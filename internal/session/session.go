package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/logging"
	"github.com/san-kum/gridsearch/internal/playback"
	"github.com/san-kum/gridsearch/internal/schedule"
	"github.com/san-kum/gridsearch/internal/search"
)

const defaultQueueSize = 64

var (
	// ErrClosed is returned by Send after the loop has exited.
	ErrClosed = errors.New("session: closed")

	// ErrRunning is returned when Run is called a second time.
	ErrRunning = errors.New("session: already running")

	// ErrQueueFull is returned by Send when the queue holds QueueSize commands
	// that no tick has drained yet.
	ErrQueueFull = errors.New("session: command queue full")
)

// AfterTickFunc observes the controller after every tick. Returning
// schedule.ErrStop ends Run cleanly.
type AfterTickFunc func(tick int, st playback.Status) error

type Options struct {
	Registry  *search.Registry
	Rand      *rand.Rand
	Logger    *slog.Logger
	QueueSize int
	AfterTick AfterTickFunc
}

// Session pairs a controller with its command queue.
type Session struct {
	cfg       *config.Config
	ctrl      *playback.Controller
	commands  chan playback.Command
	done      chan struct{}
	afterTick AfterTickFunc
	log       *slog.Logger

	mu        sync.Mutex
	running   bool
	ticks     int
	closeOnce sync.Once
	closeErr  error
}

// PlaybackOptions resolves the search section of cfg into controller options.
func PlaybackOptions(cfg *config.Config, reg *search.Registry, rng *rand.Rand) (playback.Options, error) {
	if reg == nil {
		reg = search.NewRegistry()
	}
	alg, err := reg.Get(cfg.Search.Algorithm)
	if err != nil {
		return playback.Options{}, err
	}
	adj, err := grid.ParseAdjacency(cfg.Search.Neighbours)
	if err != nil {
		return playback.Options{}, err
	}
	if rng == nil {
		seed := cfg.Search.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return playback.Options{
		Algorithm:   alg,
		Adjacency:   adj,
		Randomise:   cfg.Search.Randomise,
		Rand:        rng,
		JoinTimeout: cfg.JoinTimeout(),
	}, nil
}

// New validates cfg and starts the first traversal. Workers are bound to ctx.
func New(ctx context.Context, cfg *config.Config, sink playback.RenderSink, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("session")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	popts, err := PlaybackOptions(cfg, opts.Registry, opts.Rand)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	popts.Logger = opts.Logger

	ctrl, err := playback.New(ctx, cfg.Graph, sink, popts)
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:       cfg,
		ctrl:      ctrl,
		commands:  make(chan playback.Command, opts.QueueSize),
		done:      make(chan struct{}),
		afterTick: opts.AfterTick,
		log:       opts.Logger,
	}, nil
}

// Send validates cmd and queues it for the next tick. It never blocks: a full
// queue is reported as ErrQueueFull and cmd is dropped.
func (s *Session) Send(cmd playback.Command) error {
	if err := validate(cmd); err != nil {
		return err
	}
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.commands <- cmd:
		return nil
	default:
		return fmt.Errorf("%w (%s dropped)", ErrQueueFull, cmd.Type)
	}
}

func validate(cmd playback.Command) error {
	switch cmd.Type {
	case playback.CmdApplyOptions:
		return cmd.Config.Validate()
	case playback.CmdSetRate:
		return config.ValidateRate(cmd.Rate)
	case playback.CmdGoBack, playback.CmdGoNext, playback.CmdPlayForward, playback.CmdPlayBackward,
		playback.CmdPause, playback.CmdRestart, playback.CmdReset:
		return nil
	}
	return fmt.Errorf("%w: %s", playback.ErrUnknownCommand, cmd.Type)
}

// Tick drains queued commands into the controller and runs one step. Callers
// that drive their own loop use Tick instead of Run; it must not be called
// concurrently with Run.
func (s *Session) Tick() error {
	s.drain()
	if err := s.ctrl.Tick(); err != nil {
		return err
	}
	s.ticks++
	if s.afterTick != nil {
		return s.afterTick(s.ticks, s.ctrl.Status())
	}
	return nil
}

func (s *Session) drain() {
	for {
		select {
		case cmd := <-s.commands:
			if err := s.ctrl.Submit(cmd); err != nil {
				s.log.Warn("command rejected", "command", cmd.Type.String(), "error", err)
			}
		default:
			return
		}
	}
}

// Run drives Tick on a scheduler whose interval follows the current rate. It
// returns when ctx ends, the after-tick hook stops it, or a tick fails. The
// session is closed on return and ctx expiry is not reported as an error.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	s.running = true
	s.mu.Unlock()

	s.log.Info("session started",
		"algorithm", s.cfg.Search.Algorithm,
		"steps_per_second", s.ctrl.Config().StepsPerSecond)

	sched := schedule.New(s.Tick, s.ctrl.Interval)
	err := sched.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		s.log.Error("session aborted", "error", err, "ticks", s.ticks)
	}
	if cerr := s.Close(); cerr != nil {
		s.log.Warn("worker abandoned on close", "error", cerr)
	}
	return err
}

// Close stops accepting commands and cancels the active worker. Run closes the
// session itself; call Close directly only when driving Tick by hand.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.ctrl.Close()
	})
	return s.closeErr
}

func (s *Session) Status() playback.Status { return s.ctrl.Status() }

func (s *Session) Interval() time.Duration { return s.ctrl.Interval() }

// Controller exposes the underlying controller for read-only views.
func (s *Session) Controller() *playback.Controller { return s.ctrl }

func (s *Session) Config() *config.Config { return s.cfg }
