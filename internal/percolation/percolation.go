// Package percolation estimates the probability that a fire lit along the
// left edge of a random forest reaches the right edge.
package percolation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"epibox/internal/cluster"
	"epibox/internal/core"
	"epibox/internal/sims/forest"
)

var (
	// ErrInvalidGridSize indicates a non-positive lattice side length.
	ErrInvalidGridSize = errors.New("percolation: grid size must be positive")
	// ErrInvalidTrials indicates a non-positive number of realizations.
	ErrInvalidTrials = errors.New("percolation: trials must be positive")
	// ErrUnknownMode indicates an unsupported estimation mode.
	ErrUnknownMode = errors.New("percolation: unknown mode")
)

// Mode selects how a single realization decides whether it percolated.
type Mode string

const (
	// ModeFire runs the fire from the left column until it reaches the right
	// column or dies out.
	ModeFire Mode = "fire"
	// ModeCluster labels tree clusters and checks whether one spans the grid.
	ModeCluster Mode = "cluster"
)

// Config describes one estimation run.
type Config struct {
	GridSize int
	Density  float64
	Trials   int
	Mode     Mode
	// Workers bounds the number of realizations in flight. Zero means
	// runtime.NumCPU().
	Workers int
	Seed    int64
}

// Validate rejects parameters that would make the estimate meaningless.
func (c Config) Validate() error {
	if c.GridSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidGridSize, c.GridSize)
	}
	if err := forest.ValidateProbability(c.Density); err != nil {
		return err
	}
	if c.Trials <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTrials, c.Trials)
	}
	switch c.Mode {
	case "", ModeFire, ModeCluster:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, c.Mode)
	}
	return nil
}

// Result summarizes an estimation run.
type Result struct {
	GridSize    int
	Density     float64
	Trials      int
	Mode        Mode
	Seed        int64
	Percolated  int
	Probability float64
	// StdErr is the binomial standard error of Probability.
	StdErr float64
	// MeanTicks is the average number of updates per fire realization.
	MeanTicks float64
	// MeanClusters is the average cluster count per cluster realization.
	MeanClusters float64
}

// Outcome records how a single realization ended.
type Outcome struct {
	Percolated bool
	Ticks      int
	Clusters   int
}

// PercolationThreshold returns the fraction of trials in which fire crosses a
// gridSize×gridSize forest of the given tree density. Each call draws a fresh
// seed.
func PercolationThreshold(gridSize int, density float64, trials int) (float64, error) {
	res, err := Estimate(context.Background(), Config{
		GridSize: gridSize,
		Density:  density,
		Trials:   trials,
		Seed:     rand.Int64(),
	})
	if err != nil {
		return 0, err
	}
	return res.Probability, nil
}

// Run ignites column 0 and iterates f until the fire reaches the last column
// or burns out.
func Run(f *forest.Forest) Outcome {
	f.IgniteColumn(0)
	ticks := 0
	for {
		if f.Percolated() {
			return Outcome{Percolated: true, Ticks: ticks}
		}
		if f.NoFire() {
			return Outcome{Ticks: ticks}
		}
		f.Update()
		ticks++
	}
}

// Span labels the tree clusters of f and reports whether one of them connects
// the first and last column.
func Span(f *forest.Forest) Outcome {
	l := cluster.From(f)
	return Outcome{Percolated: l.Spans(), Clusters: l.NoClusters()}
}

type tally struct {
	percolated int
	ticks      int
	clusters   int
}

// Estimate runs cfg.Trials independent realizations in parallel. Every trial
// draws its forest from its own RNG stream, split in order from cfg.Seed, so
// the result depends only on the configuration and not on scheduling.
func Estimate(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeFire
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, cfg.Trials)

	realize := Run
	if cfg.Mode == ModeCluster {
		realize = Span
	}

	jobs := make(chan *core.RNG)
	tallies := make([]tally, workers)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		root := core.NewRNG(cfg.Seed)
		for i := 0; i < cfg.Trials; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- root.Split():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		t := &tallies[w]
		g.Go(func() error {
			for rng := range jobs {
				f, err := forest.New(cfg.GridSize, cfg.Density, rng)
				if err != nil {
					return err
				}
				out := realize(f)
				if out.Percolated {
					t.percolated++
				}
				t.ticks += out.Ticks
				t.clusters += out.Clusters
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var sum tally
	for _, t := range tallies {
		sum.percolated += t.percolated
		sum.ticks += t.ticks
		sum.clusters += t.clusters
	}
	n := float64(cfg.Trials)
	p := float64(sum.percolated) / n
	res := Result{
		GridSize:    cfg.GridSize,
		Density:     cfg.Density,
		Trials:      cfg.Trials,
		Mode:        cfg.Mode,
		Seed:        cfg.Seed,
		Percolated:  sum.percolated,
		Probability: p,
		StdErr:      math.Sqrt(p * (1 - p) / n),
	}
	switch cfg.Mode {
	case ModeFire:
		res.MeanTicks = float64(sum.ticks) / n
	case ModeCluster:
		res.MeanClusters = float64(sum.clusters) / n
	}
	return res, nil
}
