// Package quality scores node sets and partitions of a graph.
package quality

import (
	"math"

	gonumgraph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/partition"
)

// volumeTolerance is the share of the total volume below which a side of a cut
// counts as empty. Summing non-integer weights in a different order than the
// total leaves a residue instead of an exact zero.
const volumeTolerance = 1e-12

// IsZeroVolume reports whether vol is zero up to rounding, relative to the
// total volume of the graph
func IsZeroVolume(vol, totalVolume float64) bool {
	return vol <= volumeTolerance*totalVolume
}

// SetConductance returns cut(S) / min(vol(S), vol(V) - vol(S)), or +Inf when
// the smaller side has no volume. Duplicate and out-of-range nodes are ignored.
func SetConductance(g *graph.Graph, nodes []int) float64 {
	member := make(map[int]bool, len(nodes))
	for _, v := range nodes {
		if g.HasNode(v) {
			member[v] = true
		}
	}

	cut, volume := 0.0, 0.0
	for v := range member {
		volume += g.Volume(v)
		g.ForNeighborsOf(v, func(w int, weight float64) {
			if !member[w] {
				cut += weight
			}
		})
	}

	total := g.TotalVolume()
	denom := math.Min(volume, total-volume)
	if denom <= 0 || IsZeroVolume(denom, total) {
		return math.Inf(1)
	}
	return cut / denom
}

// PartitionConductance returns the conductance of every nonempty subset other
// than the background subset 0, and the worst (largest) of them. The worst
// value is 0 when there are no such subsets.
func PartitionConductance(g *graph.Graph, p *partition.Partition) (map[int]float64, float64) {
	cut := make(map[int]float64)
	volume := make(map[int]float64)

	for v := 0; v < p.NumberOfElements(); v++ {
		id := p.SubsetOf(v)
		if id == 0 {
			continue
		}
		volume[id] += g.Volume(v)
		g.ForNeighborsOf(v, func(w int, weight float64) {
			if p.SubsetOf(w) != id {
				cut[id] += weight
			}
		})
	}

	total := g.TotalVolume()
	scores := make(map[int]float64, len(volume))
	worst := 0.0
	for id, vol := range volume {
		score := math.Inf(1)
		if denom := math.Min(vol, total-vol); denom > 0 {
			score = cut[id] / denom
		}
		scores[id] = score
		worst = math.Max(worst, score)
	}
	return scores, worst
}

// Modularity returns the Newman modularity of the partition at resolution 1.
// Self-loops are not part of the gonum view of the graph and are ignored.
func Modularity(g *graph.Graph, p *partition.Partition) float64 {
	if g.TotalEdgeWeight() == 0 {
		return 0
	}

	subsets := p.Subsets()
	communities := make([][]gonumgraph.Node, 0, len(subsets))
	for _, id := range p.SubsetIDs() {
		nodes := make([]gonumgraph.Node, 0, len(subsets[id]))
		for _, v := range subsets[id] {
			nodes = append(nodes, simple.Node(int64(v)))
		}
		communities = append(communities, nodes)
	}

	return community.Q(g.ToGonum(), communities, 1)
}

// Coverage returns the fraction of total edge weight whose endpoints lie in
// the same subset, not counting the background subset 0.
func Coverage(g *graph.Graph, p *partition.Partition) float64 {
	total := g.TotalEdgeWeight()
	if total == 0 {
		return 0
	}

	inside := 0.0
	for u := 0; u < p.NumberOfElements(); u++ {
		id := p.SubsetOf(u)
		if id == 0 {
			continue
		}
		g.ForNeighborsOf(u, func(v int, weight float64) {
			if u <= v && p.SubsetOf(v) == id {
				inside += weight
			}
		})
	}
	return inside / total
}
