package percolation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"epibox/internal/core"
	"epibox/internal/logging"
)

// ErrEmptySweep indicates a sweep with no grid sizes or no densities.
var ErrEmptySweep = errors.New("percolation: sweep needs at least one grid size and one density")

// SweepConfig describes the cross product of lattice sizes and densities to
// estimate.
type SweepConfig struct {
	GridSizes []int
	Densities []float64
	Trials    int
	Mode      Mode
	Workers   int
	Seed      int64
}

// Crossing is the interpolated density at which the estimated percolation
// probability for one grid size first reaches one half.
type Crossing struct {
	GridSize int
	Density  float64
}

// Sweep estimates every (grid size, density) point in turn. Each point gets
// its own seed drawn from cfg.Seed. Results are ordered by grid size, then
// density.
func Sweep(ctx context.Context, cfg SweepConfig, logger *slog.Logger) ([]Result, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if len(cfg.GridSizes) == 0 || len(cfg.Densities) == 0 {
		return nil, ErrEmptySweep
	}

	points := make([]Config, 0, len(cfg.GridSizes)*len(cfg.Densities))
	seeds := core.NewRNG(cfg.Seed).Source()
	for _, size := range cfg.GridSizes {
		for _, density := range cfg.Densities {
			pt := Config{
				GridSize: size,
				Density:  density,
				Trials:   cfg.Trials,
				Mode:     cfg.Mode,
				Workers:  cfg.Workers,
				Seed:     seeds.Int64(),
			}
			if err := pt.Validate(); err != nil {
				return nil, fmt.Errorf("sweep point L=%d p=%v: %w", size, density, err)
			}
			points = append(points, pt)
		}
	}

	logger.Info("sweep starting", "points", len(points), "trials", cfg.Trials, "mode", cfg.Mode)
	start := time.Now()
	results := make([]Result, 0, len(points))
	for _, pt := range points {
		t0 := time.Now()
		res, err := Estimate(ctx, pt)
		if err != nil {
			return nil, err
		}
		logger.Debug("sweep point",
			"L", res.GridSize, "p", res.Density, "N", res.Trials,
			"estimate", res.Probability, "stderr", res.StdErr,
			"elapsed", time.Since(t0).Round(time.Microsecond))
		results = append(results, res)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].GridSize != results[j].GridSize {
			return results[i].GridSize < results[j].GridSize
		}
		return results[i].Density < results[j].Density
	})
	logger.Info("sweep finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return results, nil
}

// Crossings linearly interpolates, per grid size, the density where the
// estimated probability first reaches 0.5. Grid sizes whose estimates never
// reach 0.5 are omitted.
func Crossings(results []Result) []Crossing {
	bySize := make(map[int][]Result)
	var sizes []int
	for _, r := range results {
		if _, ok := bySize[r.GridSize]; !ok {
			sizes = append(sizes, r.GridSize)
		}
		bySize[r.GridSize] = append(bySize[r.GridSize], r)
	}
	sort.Ints(sizes)

	var out []Crossing
	for _, size := range sizes {
		rs := bySize[size]
		sort.Slice(rs, func(i, j int) bool { return rs[i].Density < rs[j].Density })
		for i, r := range rs {
			if r.Probability < 0.5 {
				continue
			}
			density := r.Density
			if i > 0 {
				prev := rs[i-1]
				if dp := r.Probability - prev.Probability; dp > 0 {
					density = prev.Density + (0.5-prev.Probability)*(r.Density-prev.Density)/dp
				}
			}
			out = append(out, Crossing{GridSize: size, Density: density})
			break
		}
	}
	return out
}
