package scd

import (
	"math"
	"sort"

	"github.com/gilchrisn/local-community-service/pkg/approxpr"
	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/quality"
)

// BestSweepSet ranks the support of a PageRank vector by degree-normalized
// score and returns the prefix of that ranking with the lowest conductance.
//
// Cut weight and volume are maintained incrementally, so the whole sweep costs
// one sort plus one pass over the edges incident to the support. A prefix
// whose smaller side has zero volume up to rounding, or that covers every
// node of the graph, is never reported. When no prefix qualifies the returned set is empty and
// the conductance is +Inf.
func BestSweepSet(g *graph.Graph, support []approxpr.Entry) ([]int, float64) {
	ranked := make([]approxpr.Entry, len(support))
	for i, e := range support {
		score := 0.0
		if vol := g.Volume(e.Node); vol > 0 {
			score = e.Score / vol
		}
		ranked[i] = approxpr.Entry{Node: e.Node, Score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	totalVolume := g.TotalVolume()
	inSweep := make([]bool, g.UpperNodeIDBound())
	order := make([]int, 0, len(ranked))

	bestCond := math.Inf(1)
	bestIndex := 0
	cut := 0.0
	volume := 0.0

	for _, e := range ranked {
		v := e.Node
		if inSweep[v] {
			continue
		}

		g.ForNeighborsOf(v, func(w int, weight float64) {
			switch {
			case w == v:
				// self-loops never cross the boundary
			case inSweep[w]:
				cut -= weight
			default:
				cut += weight
			}
		})
		if cut < 0 {
			cut = 0
		}
		volume += g.Volume(v)
		inSweep[v] = true
		order = append(order, v)

		denom := math.Min(volume, totalVolume-volume)
		if denom <= 0 || quality.IsZeroVolume(denom, totalVolume) {
			continue
		}

		cond := cut / denom
		if cond < bestCond && len(order) < g.NumberOfNodes() {
			bestCond = cond
			bestIndex = len(order)
		}
	}

	best := make([]int, bestIndex)
	copy(best, order[:bestIndex])
	sort.Ints(best)
	return best, bestCond
}
