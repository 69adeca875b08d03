package scd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-service/pkg/approxpr"
	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/quality"
)

// rankedSupport gives every node a score of volume * rank weight, so the
// normalized order is exactly the order of nodes
func rankedSupport(g *graph.Graph, nodes ...int) []approxpr.Entry {
	entries := make([]approxpr.Entry, len(nodes))
	for i, v := range nodes {
		entries[i] = approxpr.Entry{Node: v, Score: g.Volume(v) * float64(len(nodes)-i)}
	}
	return entries
}

func TestBestSweepSetFindsClique(t *testing.T) {
	g := twoCliques(t)

	support := make([]approxpr.Entry, 0, 10)
	for v := 0; v < 10; v++ {
		score := 0.01
		if v < 5 {
			score = 0.4
		}
		support = append(support, approxpr.Entry{Node: v, Score: score})
	}

	nodes, conductance := BestSweepSet(g, support)
	assert.Equal(t, cliqueA, nodes)
	assert.InDelta(t, 1.0/21.0, conductance, 1e-12)
}

func TestBestSweepSetMatchesSetConductance(t *testing.T) {
	g := twoCliques(t)
	support := rankedSupport(g, 9, 8, 7, 6, 5, 4, 3)

	nodes, conductance := BestSweepSet(g, support)
	require.NotEmpty(t, nodes)
	assert.Equal(t, cliqueB, nodes)
	assert.InDelta(t, quality.SetConductance(g, nodes), conductance, 1e-12)
}

func TestBestSweepSetDegenerate(t *testing.T) {
	g := graph.NewGraph(4)
	require.NoError(t, g.AddEdge(0, 1, 1.0))
	require.NoError(t, g.AddEdge(1, 2, 1.0))

	t.Run("empty support", func(t *testing.T) {
		nodes, conductance := BestSweepSet(g, nil)
		assert.Empty(t, nodes)
		assert.True(t, math.IsInf(conductance, 1))
	})

	t.Run("isolated seed", func(t *testing.T) {
		nodes, conductance := BestSweepSet(g, []approxpr.Entry{{Node: 3, Score: 1}})
		assert.Empty(t, nodes)
		assert.True(t, math.IsInf(conductance, 1))
	})

	t.Run("whole component never reported", func(t *testing.T) {
		// {0, 1, 2} has all the volume of the graph
		nodes, conductance := BestSweepSet(g, rankedSupport(g, 0, 1, 2))
		assert.Equal(t, []int{0}, nodes)
		assert.InDelta(t, 1.0, conductance, 1e-12)
	})
}

func TestBestSweepSetSkipsDuplicatesAndZeroVolume(t *testing.T) {
	g := twoCliques(t)
	isolated := graph.NewGraph(11)
	for u := 0; u < 10; u++ {
		neighbors, weights := g.GetNeighbors(u)
		for i, v := range neighbors {
			if u < v {
				require.NoError(t, isolated.AddEdge(u, v, weights[i]))
			}
		}
	}

	support := rankedSupport(isolated, 0, 1, 2, 3, 4)
	support = append(support, support[0], approxpr.Entry{Node: 10, Score: 5})

	nodes, conductance := BestSweepSet(isolated, support)
	assert.Equal(t, cliqueA, nodes)
	assert.InDelta(t, 1.0/21.0, conductance, 1e-12)
}

func TestBestSweepSetUsesWeights(t *testing.T) {
	// path 0-1-2-3 with a heavy middle edge
	g := graph.NewGraph(4)
	require.NoError(t, g.AddEdge(0, 1, 1.0))
	require.NoError(t, g.AddEdge(1, 2, 10.0))
	require.NoError(t, g.AddEdge(2, 3, 1.0))

	nodes, conductance := BestSweepSet(g, rankedSupport(g, 0, 1, 2, 3))
	assert.Equal(t, []int{0, 1}, nodes)
	assert.InDelta(t, 10.0/12.0, conductance, 1e-12)

	u := g.Unweighted()
	nodes, conductance = BestSweepSet(u, rankedSupport(u, 0, 1, 2, 3))
	assert.Equal(t, []int{0, 1}, nodes)
	assert.InDelta(t, 1.0/3.0, conductance, 1e-12)
}

func TestBestSweepSetSelfLoopIsInterior(t *testing.T) {
	g := graph.NewGraph(3)
	require.NoError(t, g.AddEdge(0, 0, 1.0))
	require.NoError(t, g.AddEdge(0, 1, 1.0))
	require.NoError(t, g.AddEdge(1, 2, 1.0))

	// vol(0) = 3, total volume = 6, cut({0}) = 1
	nodes, conductance := BestSweepSet(g, rankedSupport(g, 0, 1))
	assert.Equal(t, []int{0}, nodes)
	assert.InDelta(t, 1.0/3.0, conductance, 1e-12)
}

// randomWeightedComponent builds a connected graph on 0..5 with non-dyadic
// weights and leaves node 6 isolated
func randomWeightedComponent(t *testing.T, rng *rand.Rand) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(7)
	for v := 1; v < 6; v++ {
		require.NoError(t, g.AddEdge(rng.Intn(v), v, 0.1+3*rng.Float64()))
	}
	for i := 0; i < 4; i++ {
		u, v := rng.Intn(6), rng.Intn(6)
		if u != v {
			require.NoError(t, g.AddEdge(u, v, 0.1+rng.Float64()))
		}
	}
	return g
}

func TestBestSweepSetWeightedComponentNeverReported(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 2000; trial++ {
		g := randomWeightedComponent(t, rng)

		// the last prefix holds all of the volume, up to rounding
		nodes, conductance := BestSweepSet(g, rankedSupport(g, rng.Perm(6)...))
		require.NotEmpty(t, nodes, "trial %d", trial)
		require.Less(t, len(nodes), 6, "trial %d: whole component returned", trial)
		require.Greater(t, conductance, 0.0, "trial %d", trial)
		require.InDelta(t, quality.SetConductance(g, nodes), conductance, 1e-9, "trial %d", trial)
	}
}
