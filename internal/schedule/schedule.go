// Package schedule drives a tick function on a cadence derived from a rate in
// steps per second.
//
// The policy is best effort: each timer fire runs exactly one tick and then
// re-arms the timer with the current interval. A late tick is not compensated
// and skipped wall-clock time is never replayed.
package schedule

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrStop may be returned by a TickFunc to end Run without an error.
var ErrStop = errors.New("schedule: stop")

// Interval converts a rate into whole milliseconds, rounding half to even.
// Rates below 1 are treated as 1.
func Interval(stepsPerSecond int) time.Duration {
	if stepsPerSecond < 1 {
		stepsPerSecond = 1
	}
	ms := math.RoundToEven(1000 / float64(stepsPerSecond))
	return time.Duration(ms) * time.Millisecond
}

type (
	TickFunc     func() error
	IntervalFunc func() time.Duration
)

// Scheduler runs tick on a single recurring timer.
type Scheduler struct {
	tick     TickFunc
	interval IntervalFunc
	ticks    int
}

// New returns a Scheduler. interval is consulted before every re-arm, so rate
// changes made inside tick take effect on the next fire.
func New(tick TickFunc, interval IntervalFunc) *Scheduler {
	return &Scheduler{tick: tick, interval: interval}
}

// Ticks returns how many ticks have run. Only valid after Run returns or from
// inside tick.
func (s *Scheduler) Ticks() int { return s.ticks }

// Run blocks until ctx ends, tick returns ErrStop, or tick fails.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(s.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			s.ticks++
			if err := s.tick(); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
			timer.Reset(s.interval())
		}
	}
}
