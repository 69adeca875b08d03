// Package seeds selects seed nodes for local community detection.
package seeds

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/network"

	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/parser"
)

var ErrInvalidSpec = errors.New("invalid seed specification")

const (
	prefixPageRank = "top-pagerank"
	prefixDegree   = "top-degree"
	prefixRandom   = "random"
)

// PageRankCalculator computes global PageRank scores
type PageRankCalculator struct {
	dampingFactor float64
	tolerance     float64
}

// NewPageRankCalculator creates a new PageRank calculator
func NewPageRankCalculator() *PageRankCalculator {
	return &PageRankCalculator{
		dampingFactor: 0.85,
		tolerance:     1e-6,
	}
}

// WithDampingFactor sets the damping factor (default: 0.85)
func (pr *PageRankCalculator) WithDampingFactor(factor float64) *PageRankCalculator {
	pr.dampingFactor = factor
	return pr
}

// WithTolerance sets the convergence tolerance (default: 1e-6)
func (pr *PageRankCalculator) WithTolerance(tolerance float64) *PageRankCalculator {
	pr.tolerance = tolerance
	return pr
}

// Calculate returns the PageRank score of every node
func (pr *PageRankCalculator) Calculate(g *graph.Graph) (map[int]float64, error) {
	if g.NumberOfNodes() == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}

	// undirected edges become a pair of directed ones
	scores := network.PageRank(g.ToGonumDirected(), pr.dampingFactor, pr.tolerance)
	if len(scores) == 0 {
		return nil, fmt.Errorf("PageRank computation returned no scores")
	}

	out := make(map[int]float64, len(scores))
	for id, score := range scores {
		out[int(id)] = score
	}
	return out, nil
}

// TopPageRank returns the k nodes with the highest global PageRank
func TopPageRank(g *graph.Graph, k int) ([]int, error) {
	scores, err := NewPageRankCalculator().Calculate(g)
	if err != nil {
		return nil, err
	}
	return topK(g.NumberOfNodes(), k, func(v int) float64 { return scores[v] }), nil
}

// TopDegree returns the k nodes with the largest weighted degree
func TopDegree(g *graph.Graph, k int) []int {
	return topK(g.NumberOfNodes(), k, g.Volume)
}

// Random returns k distinct nodes drawn with the given random seed
func Random(g *graph.Graph, k int, seed int64) []int {
	n := g.NumberOfNodes()
	k = min(k, n)
	rng := rand.New(rand.NewSource(seed))
	return rng.Perm(n)[:k]
}

// topK orders nodes by decreasing score, ties by smaller id
func topK(n, k int, score func(v int) float64) []int {
	nodes := make([]int, n)
	for v := range nodes {
		nodes[v] = v
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return score(nodes[i]) > score(nodes[j])
	})
	return nodes[:min(k, n)]
}

// Parse interprets a seed specification:
//
//	12,40,7            original node ids
//	top-pagerank:K     K nodes with the highest global PageRank
//	top-degree:K       K nodes with the largest weighted degree
//	random:K[:SEED]    K random nodes
//
// Without a parser, explicit ids are taken as normalized indices.
func Parse(spec string, g *graph.Graph, p *parser.GraphParser) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSpec)
	}

	parts := strings.Split(spec, ":")
	switch strings.ToLower(parts[0]) {
	case prefixPageRank:
		k, err := parseCount(parts, 2)
		if err != nil {
			return nil, err
		}
		return TopPageRank(g, k)

	case prefixDegree:
		k, err := parseCount(parts, 2)
		if err != nil {
			return nil, err
		}
		return TopDegree(g, k), nil

	case prefixRandom:
		k, err := parseCount(parts, 3)
		if err != nil {
			return nil, err
		}
		var seed int64 = 1
		if len(parts) == 3 {
			if seed, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
				return nil, fmt.Errorf("%w: random seed %q", ErrInvalidSpec, parts[2])
			}
		}
		return Random(g, k, seed), nil
	}

	ids := strings.Split(spec, ",")
	if p != nil {
		nodes, err := p.NormalizedIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}
		return nodes, nil
	}

	nodes := make([]int, len(ids))
	for i, id := range ids {
		v, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil || !g.HasNode(v) {
			return nil, fmt.Errorf("%w: node %q", ErrInvalidSpec, id)
		}
		nodes[i] = v
	}
	return nodes, nil
}

func parseCount(parts []string, maxParts int) (int, error) {
	if len(parts) < 2 || len(parts) > maxParts {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSpec, strings.Join(parts, ":"))
	}
	k, err := strconv.Atoi(parts[1])
	if err != nil || k <= 0 {
		return 0, fmt.Errorf("%w: count %q", ErrInvalidSpec, parts[1])
	}
	return k, nil
}
