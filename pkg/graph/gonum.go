package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/simple"
)

// ToGonum converts the graph to a gonum weighted undirected graph. Node ids
// are preserved. Self-loops are dropped since gonum simple graphs reject them,
// and parallel edges are merged by summing their weights.
func (g *Graph) ToGonum() *simple.WeightedUndirectedGraph {
	out := simple.NewWeightedUndirectedGraph(0, math.Inf(1))

	for i := 0; i < g.NumNodes; i++ {
		out.AddNode(simple.Node(int64(i)))
	}

	for u := 0; u < g.NumNodes; u++ {
		for j, v := range g.Adjacency[u] {
			if u >= v {
				continue
			}
			w := g.Weights[u][j]
			if existing, ok := out.Weight(int64(u), int64(v)); ok {
				w += existing
			}
			out.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(int64(u)),
				T: simple.Node(int64(v)),
				W: w,
			})
		}
	}

	return out
}

// ToGonumDirected converts the graph to a gonum directed graph by adding
// both directions of every undirected edge. Parallel edges are merged.
func (g *Graph) ToGonumDirected() *simple.WeightedDirectedGraph {
	out := simple.NewWeightedDirectedGraph(0, math.Inf(1))

	for i := 0; i < g.NumNodes; i++ {
		out.AddNode(simple.Node(int64(i)))
	}

	for u := 0; u < g.NumNodes; u++ {
		for j, v := range g.Adjacency[u] {
			if u == v {
				continue
			}
			w := g.Weights[u][j]
			if existing, ok := out.Weight(int64(u), int64(v)); ok {
				w += existing
			}
			out.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(int64(u)),
				T: simple.Node(int64(v)),
				W: w,
			})
		}
	}

	return out
}
