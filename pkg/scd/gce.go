package scd

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/partition"
	"github.com/gilchrisn/local-community-service/pkg/quality"
)

const (
	// ObjectiveM is internal weight over boundary weight
	ObjectiveM = "M"
	// ObjectiveL is internal density over boundary density, where densities
	// are taken per member and per boundary member respectively
	ObjectiveL = "L"
)

// GCE is the Greedy Community Expansion algorithm. Starting from the seed
// alone it keeps adding the shell node that improves the objective the most.
type GCE struct {
	graph     *graph.Graph
	config    *Config
	objective string
	logger    zerolog.Logger
}

// NewGCE creates a greedy expansion detector using gce.objective
func NewGCE(g *graph.Graph, config *Config) (*GCE, error) {
	if g == nil || g.NumberOfNodes() == 0 {
		return nil, ErrEmptyGraph
	}

	objective := strings.ToUpper(config.Objective())
	if objective != ObjectiveM && objective != ObjectiveL {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObjective, config.Objective())
	}

	return &GCE{
		graph:     g,
		config:    config,
		objective: objective,
		logger:    config.CreateLogger(),
	}, nil
}

// WithLogger replaces the logger created from the config
func (d *GCE) WithLogger(logger zerolog.Logger) *GCE {
	d.logger = logger
	return d
}

func (d *GCE) Name() string { return StrategyGCE }

// expansion tracks the community being grown
type expansion struct {
	g            *graph.Graph
	member       map[int]bool
	shell        map[int]float64 // outside node -> weight of its edges into the community
	outsideEdges map[int]int     // member -> number of its edges leaving the community
	internal     float64
	boundary     float64
	boundarySize int
}

func newExpansion(g *graph.Graph, seed int) *expansion {
	e := &expansion{
		g:            g,
		member:       make(map[int]bool),
		shell:        make(map[int]float64),
		outsideEdges: make(map[int]int),
	}
	e.add(seed)
	return e
}

// gain describes the community after adding v, without committing it
func (e *expansion) gain(v int) (internal, boundary float64, boundarySize int) {
	internal, boundary, boundarySize = e.internal, e.boundary, e.boundarySize

	vOutside := 0
	toMember := make(map[int]int)
	e.g.ForNeighborsOf(v, func(w int, weight float64) {
		switch {
		case w == v:
			internal += weight
		case e.member[w]:
			internal += weight
			boundary -= weight
			toMember[w]++
		default:
			boundary += weight
			vOutside++
		}
	})
	// members whose only outside edges lead to v leave the boundary
	for w, n := range toMember {
		if e.outsideEdges[w] == n {
			boundarySize--
		}
	}
	if vOutside > 0 {
		boundarySize++
	}
	if boundary < 0 {
		boundary = 0
	}
	return internal, boundary, boundarySize
}

func (e *expansion) add(v int) {
	e.internal, e.boundary, e.boundarySize = e.gain(v)

	e.member[v] = true
	delete(e.shell, v)

	e.g.ForNeighborsOf(v, func(w int, weight float64) {
		switch {
		case w == v:
		case e.member[w]:
			e.outsideEdges[w]--
		default:
			e.outsideEdges[v]++
			e.shell[w] += weight
		}
	})
}

func (e *expansion) score(objective string, size int, internal, boundary float64, boundarySize int) float64 {
	if boundary <= 0 {
		return math.Inf(1)
	}
	if objective == ObjectiveL {
		if boundarySize == 0 {
			return math.Inf(1)
		}
		return (internal / float64(size)) / (boundary / float64(boundarySize))
	}
	return internal / boundary
}

func (e *expansion) nodes() []int {
	out := make([]int, 0, len(e.member))
	for v := range e.member {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// ExpandSeed grows the community of seed until no shell node improves the
// objective or gce.max_community_size is reached
func (d *GCE) ExpandSeed(seed int) (*Community, error) {
	if !d.graph.HasNode(seed) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSeed, seed)
	}

	e := newExpansion(d.graph, seed)
	limit := d.config.MaxCommunitySize()
	current := e.score(d.objective, 1, e.internal, e.boundary, e.boundarySize)
	examined := 0

	for limit <= 0 || len(e.member) < limit {
		candidates := make([]int, 0, len(e.shell))
		for v := range e.shell {
			candidates = append(candidates, v)
		}
		sort.Ints(candidates)
		examined += len(candidates)

		best, bestScore := -1, current
		for _, v := range candidates {
			internal, boundary, boundarySize := e.gain(v)
			s := e.score(d.objective, len(e.member)+1, internal, boundary, boundarySize)
			if s > bestScore {
				best, bestScore = v, s
			}
		}
		if best < 0 {
			break
		}

		e.add(best)
		current = bestScore
	}

	nodes := e.nodes()
	return &Community{
		Seed:        seed,
		Nodes:       nodes,
		Conductance: quality.SetConductance(d.graph, nodes),
		SupportSize: examined,
	}, nil
}

// Run implements Detector
func (d *GCE) Run(ctx context.Context, seeds []int) (*Result, error) {
	return runSeeds(ctx, d.graph, seeds, d.config, d.logger, d.Name(), d.ExpandSeed)
}

// RunPartition implements Detector. Communities are ranked by conductance
// exactly as for PageRank-Nibble.
func (d *GCE) RunPartition(ctx context.Context, seeds []int) (*partition.Partition, *Result, error) {
	result, err := d.Run(ctx, seeds)
	if err != nil {
		return nil, nil, err
	}

	part, reverted := MergeCommunities(d.graph.UpperNodeIDBound(), result.Communities, result.SeedScores, d.logger)
	result.Statistics.RevertedSeeds = reverted
	return part, result, nil
}
