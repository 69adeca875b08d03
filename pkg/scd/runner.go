package scd

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/local-community-service/pkg/graph"
)

type expandFunc func(seed int) (*Community, error)

// runSeeds expands every distinct seed and assembles the Result. Workers
// write into disjoint slots, so the result does not depend on scheduling.
func runSeeds(ctx context.Context, g *graph.Graph, seeds []int, config *Config, logger zerolog.Logger, name string, expand expandFunc) (*Result, error) {
	startTime := time.Now()

	unique, err := normalizeSeeds(g, seeds)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("strategy", name).
		Int("seeds", len(unique)).
		Int("nodes", g.NumberOfNodes()).
		Float64("total_weight", g.TotalEdgeWeight()).
		Msg("Starting seed expansion")

	communities := make([]*Community, len(unique))
	work := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		community, err := expand(unique[i])
		if err != nil {
			return fmt.Errorf("expanding seed %d: %w", unique[i], err)
		}
		communities[i] = community

		event := logger.Debug()
		if config.EnableProgress() {
			event = logger.Info()
		}
		event.
			Int("seed", community.Seed).
			Int("size", len(community.Nodes)).
			Int("support", community.SupportSize).
			Float64("conductance", community.Conductance).
			Msg("Seed expanded")
		return nil
	}

	if config.Parallel() && len(unique) > 1 {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(workerLimit(config))
		for i := range unique {
			i := i
			eg.Go(func() error { return work(egCtx, i) })
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range unique {
			if err := work(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	result := &Result{
		Communities: make(map[int]*Community, len(unique)),
		SeedScores:  make([]SeedScore, 0, len(unique)),
	}
	for _, c := range communities {
		result.Communities[c.Seed] = c
		result.SeedScores = append(result.SeedScores, SeedScore{Seed: c.Seed, Conductance: c.Conductance})
		result.Statistics.TotalSupport += c.SupportSize
	}
	result.Statistics.NumSeeds = len(unique)
	result.Statistics.RuntimeMS = time.Since(startTime).Milliseconds()
	result.Statistics.MemoryPeakMB = getMemoryUsage()

	logger.Info().
		Str("strategy", name).
		Int("seeds", result.Statistics.NumSeeds).
		Int("total_support", result.Statistics.TotalSupport).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Seed expansion completed")

	return result, nil
}

// workerLimit returns performance.num_workers, or every CPU when it is not
// positive
func workerLimit(config *Config) int {
	if n := config.NumWorkers(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// getMemoryUsage returns current memory usage in MB
func getMemoryUsage() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
