package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/packmin/internal/config"
)

// Preset builds a run description for a seed.
type Preset func(seed int64) *config.Config

// RunSeeds runs one independent experiment per seed concurrently. Each run
// owns its potential and minimizer. build is called from the run goroutines
// and must be safe for concurrent use. Reports are returned in seed order;
// the first error in seed order is returned.
func RunSeeds(ctx context.Context, build Preset, seeds []int64, logger *slog.Logger) ([]*Report, error) {
	reports := make([]*Report, len(seeds))
	errs := make([]error, len(seeds))

	var wg sync.WaitGroup
	for i, seed := range seeds {
		wg.Add(1)
		go func(idx int, seed int64) {
			defer wg.Done()

			cfg := build(seed)
			if cfg == nil {
				errs[idx] = fmt.Errorf("experiment: no configuration for seed %d", seed)
				return
			}
			exp, err := New(cfg, logger)
			if err != nil {
				errs[idx] = err
				return
			}
			reports[idx], errs[idx] = exp.Run(ctx)
		}(i, seed)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seeds[i], err)
		}
	}
	return reports, nil
}
