package trace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/search"
	"golang.org/x/sync/errgroup"
)

// ErrWorkerHang is returned when a cancelled worker does not exit within the join timeout.
var ErrWorkerHang = errors.New("trace: worker did not stop within join timeout")

// Worker owns one background execution of a traversal.
type Worker struct {
	trace     *Trace
	start     grid.Coordinate
	algorithm string
	cancel    context.CancelFunc
	group     *errgroup.Group
	done      chan struct{}
	log       *slog.Logger
}

// Start launches alg on g from start. The walk runs until it finishes, ctx is
// cancelled, or CancelAndJoin is called.
func Start(ctx context.Context, alg search.Algorithm, g grid.Grid, start grid.Coordinate, policy grid.NeighbourPolicy, log *slog.Logger) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)
	w := &Worker{
		trace:     newTrace(g.Cells()),
		start:     start,
		algorithm: alg.Name(),
		cancel:    cancel,
		group:     group,
		done:      make(chan struct{}),
		log:       log,
	}

	w.log.Debug("worker started", "algorithm", w.algorithm, "start", start.String(), "cells", g.Cells())
	began := time.Now()
	group.Go(func() error {
		return alg.Walk(gctx, g, start, policy, w.trace.append)
	})
	go func() {
		err := group.Wait()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		w.trace.finish(err)
		if err != nil {
			w.log.Error("walk failed", "algorithm", w.algorithm, "error", err)
		} else {
			w.log.Debug("worker stopped", "algorithm", w.algorithm, "visited", w.trace.Len(), "elapsed", time.Since(began))
		}
		close(w.done)
	}()
	return w
}

// Snapshot returns a consistent prefix of the trace and whether the walk has stopped.
func (w *Worker) Snapshot() ([]grid.Coordinate, bool) {
	return w.trace.Snapshot()
}

func (w *Worker) Trace() *Trace { return w.trace }

func (w *Worker) Start() grid.Coordinate { return w.start }

func (w *Worker) Algorithm() string { return w.algorithm }

// Done is closed once the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Wait blocks until the walk stops on its own or ctx ends.
func (w *Worker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return w.trace.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CancelAndJoin signals cancellation and waits for the goroutine to exit.
// A non-positive timeout waits indefinitely.
func (w *Worker) CancelAndJoin(timeout time.Duration) error {
	w.cancel()
	if timeout <= 0 {
		<-w.done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-w.done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w (%s, %s)", ErrWorkerHang, w.algorithm, timeout)
	}
}
