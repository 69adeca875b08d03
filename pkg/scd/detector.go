// Package scd implements selective (local) community detection: given seed
// nodes it finds a small, well separated community around each seed without
// looking at the whole graph, and can merge those communities into a single
// partition of the graph.
package scd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/partition"
)

const (
	StrategyPageRankNibble = "prn"
	StrategyGCE            = "gce"
)

var (
	ErrInvalidSeed      = errors.New("invalid seed node")
	ErrEmptyGraph       = errors.New("graph has no nodes")
	ErrUnknownStrategy  = errors.New("unknown detection strategy")
	ErrUnknownObjective = errors.New("unknown GCE objective")
)

// Detector finds communities around seed nodes
type Detector interface {
	// Name returns the strategy name
	Name() string

	// Run expands every distinct seed independently
	Run(ctx context.Context, seeds []int) (*Result, error)

	// RunPartition expands the seeds and resolves the communities into one
	// partition of the graph. Subset 0 holds every node no community claimed.
	RunPartition(ctx context.Context, seeds []int) (*partition.Partition, *Result, error)
}

// Community is the node set found around one seed
type Community struct {
	Seed        int     `json:"seed"`
	Nodes       []int   `json:"nodes"` // ascending
	Conductance float64 `json:"conductance"`
	SupportSize int     `json:"support_size"`
}

// Contains reports whether v is a member of the community
func (c *Community) Contains(v int) bool {
	lo, hi := 0, len(c.Nodes)
	for lo < hi {
		mid := (lo + hi) / 2
		if c.Nodes[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(c.Nodes) && c.Nodes[lo] == v
}

// SeedScore records the conductance reached from one seed
type SeedScore struct {
	Seed        int     `json:"seed"`
	Conductance float64 `json:"conductance"`
}

// Result is the output of one Run invocation. SeedScores is in seed order.
type Result struct {
	Communities map[int]*Community `json:"communities"`
	SeedScores  []SeedScore        `json:"seed_scores"`
	Statistics  Statistics         `json:"statistics"`
}

// Statistics contains run metrics
type Statistics struct {
	NumSeeds      int   `json:"num_seeds"`
	TotalSupport  int   `json:"total_support"`
	RevertedSeeds int   `json:"reverted_seeds"`
	RuntimeMS     int64 `json:"runtime_ms"`
	MemoryPeakMB  int64 `json:"memory_peak_mb"`
}

// New creates the detector selected by algorithm.strategy
func New(g *graph.Graph, config *Config) (Detector, error) {
	switch strings.ToLower(config.Strategy()) {
	case StrategyPageRankNibble, "pagerank-nibble", "pagerank_nibble":
		return NewPageRankNibble(g, config)
	case StrategyGCE:
		return NewGCE(g, config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, config.Strategy())
	}
}

// normalizeSeeds validates seeds and drops duplicates, keeping first occurrences
func normalizeSeeds(g *graph.Graph, seeds []int) ([]int, error) {
	if g == nil || g.NumberOfNodes() == 0 {
		return nil, ErrEmptyGraph
	}

	seen := make(map[int]bool, len(seeds))
	unique := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if !g.HasNode(s) {
			return nil, fmt.Errorf("%w: %d (graph has %d nodes)", ErrInvalidSeed, s, g.NumberOfNodes())
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	return unique, nil
}
