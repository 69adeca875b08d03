package scd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/local-community-service/pkg/approxpr"
	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/partition"
)

// PageRankNibble is a variant of the PageRank-Nibble algorithm of Andersen,
// Chung and Lang ("Local Graph Partitioning using PageRank Vectors"): the
// community of a seed is the best sweep cut of its approximate personalized
// PageRank vector.
type PageRankNibble struct {
	graph  *graph.Graph
	config *Config
	oracle approxpr.Oracle
	logger zerolog.Logger
}

// NewPageRankNibble creates a detector using algorithm.alpha and
// algorithm.epsilon. Smaller alpha tends to produce larger communities.
func NewPageRankNibble(g *graph.Graph, config *Config) (*PageRankNibble, error) {
	if g == nil || g.NumberOfNodes() == 0 {
		return nil, ErrEmptyGraph
	}

	oracle, err := approxpr.NewPushOracle(approxpr.Options{
		Alpha:   config.Alpha(),
		Epsilon: config.Epsilon(),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid PageRank parameters: %w", err)
	}

	return &PageRankNibble{
		graph:  g,
		config: config,
		oracle: oracle,
		logger: config.CreateLogger(),
	}, nil
}

// WithOracle replaces the PageRank approximation
func (p *PageRankNibble) WithOracle(oracle approxpr.Oracle) *PageRankNibble {
	p.oracle = oracle
	return p
}

// WithLogger replaces the logger created from the config
func (p *PageRankNibble) WithLogger(logger zerolog.Logger) *PageRankNibble {
	p.logger = logger
	return p
}

func (p *PageRankNibble) Name() string { return StrategyPageRankNibble }

// ExpandSeed returns the best sweep set of the seed's PageRank vector
func (p *PageRankNibble) ExpandSeed(seed int) (*Community, error) {
	if !p.graph.HasNode(seed) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSeed, seed)
	}

	support, err := p.oracle.Compute(p.graph, seed)
	if err != nil {
		return nil, fmt.Errorf("approximate PageRank: %w", err)
	}

	nodes, conductance := BestSweepSet(p.graph, support)

	p.logger.Debug().
		Int("seed", seed).
		Int("support", len(support)).
		Float64("conductance", conductance).
		Msg("Best sweep set found")

	return &Community{
		Seed:        seed,
		Nodes:       nodes,
		Conductance: conductance,
		SupportSize: len(support),
	}, nil
}

// Run implements Detector
func (p *PageRankNibble) Run(ctx context.Context, seeds []int) (*Result, error) {
	return runSeeds(ctx, p.graph, seeds, p.config, p.logger, p.Name(), p.ExpandSeed)
}

// RunPartition implements Detector
func (p *PageRankNibble) RunPartition(ctx context.Context, seeds []int) (*partition.Partition, *Result, error) {
	result, err := p.Run(ctx, seeds)
	if err != nil {
		return nil, nil, err
	}

	part, reverted := MergeCommunities(p.graph.UpperNodeIDBound(), result.Communities, result.SeedScores, p.logger)
	result.Statistics.RevertedSeeds = reverted
	return part, result, nil
}
