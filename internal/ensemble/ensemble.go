// Package ensemble runs one traversal per seed in parallel and summarises the
// resulting visit orders.
package ensemble

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/metrics"
	"github.com/san-kum/gridsearch/internal/search"
	"github.com/san-kum/gridsearch/internal/trace"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Grid      grid.Grid
	Adjacency grid.Adjacency
	Randomise bool
	Runs      int
	SeedStart int64
	// Parallel bounds concurrent walks; zero uses GOMAXPROCS.
	Parallel int
}

type Result struct {
	Seed    int64
	Start   grid.Coordinate
	Visited int
	Elapsed time.Duration
	Metrics map[string]float64
}

// Summary holds per-metric means over an ensemble.
type Summary struct {
	Algorithm string
	Runs      int
	Visited   float64
	Elapsed   time.Duration
	Metrics   map[string]float64
}

type Ensemble struct {
	alg search.Algorithm
	cfg Config
	log *slog.Logger
}

func New(alg search.Algorithm, cfg Config, log *slog.Logger) *Ensemble {
	return &Ensemble{alg: alg, cfg: cfg, log: log}
}

// Run walks the grid once per seed. Seeds are SeedStart, SeedStart+1, ... and
// each seed picks its start cell and neighbour order the way a session does.
func (e *Ensemble) Run(ctx context.Context) ([]Result, error) {
	if e.cfg.Runs <= 0 {
		return nil, fmt.Errorf("ensemble: runs must be positive, got %d", e.cfg.Runs)
	}
	parallel := e.cfg.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, e.cfg.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := 0; i < e.cfg.Runs; i++ {
		idx := i
		g.Go(func() error {
			res, err := e.runOne(gctx, e.cfg.SeedStart+int64(idx))
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.log.Info("ensemble finished", "algorithm", e.alg.Name(), "runs", e.cfg.Runs)
	return results, nil
}

func (e *Ensemble) runOne(ctx context.Context, seed int64) (Result, error) {
	rng := rand.New(rand.NewSource(seed))
	start := grid.RandomEdgePoint(rng, e.cfg.Grid)
	var policyRand *rand.Rand
	if e.cfg.Randomise {
		policyRand = rand.New(rand.NewSource(rng.Int63()))
	}
	policy := grid.NewNeighbourPolicy(e.cfg.Adjacency, policyRand)

	began := time.Now()
	w := trace.Start(ctx, e.alg, e.cfg.Grid, start, policy, e.log)
	if err := w.Wait(ctx); err != nil {
		_ = w.CancelAndJoin(0)
		return Result{}, fmt.Errorf("ensemble: seed %d: %w", seed, err)
	}
	cells, _ := w.Snapshot()
	return Result{
		Seed:    seed,
		Start:   start,
		Visited: len(cells),
		Elapsed: time.Since(began),
		Metrics: metrics.Evaluate(cells, metrics.Defaults()...),
	}, nil
}

// Summarise averages results. Metric names come back sorted in MetricNames.
func Summarise(algorithm string, results []Result) Summary {
	s := Summary{Algorithm: algorithm, Runs: len(results), Metrics: make(map[string]float64)}
	if len(results) == 0 {
		return s
	}
	var elapsed time.Duration
	for _, r := range results {
		s.Visited += float64(r.Visited)
		elapsed += r.Elapsed
		for name, v := range r.Metrics {
			s.Metrics[name] += v
		}
	}
	n := float64(len(results))
	s.Visited /= n
	s.Elapsed = elapsed / time.Duration(len(results))
	for name := range s.Metrics {
		s.Metrics[name] /= n
	}
	return s
}

func (s Summary) MetricNames() []string {
	names := make([]string, 0, len(s.Metrics))
	for name := range s.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
