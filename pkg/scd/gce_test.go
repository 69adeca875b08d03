package scd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/quality"
)

func newGCE(t *testing.T, g *graph.Graph, config *Config) *GCE {
	t.Helper()
	config.Set("algorithm.strategy", StrategyGCE)
	d, err := NewGCE(g, config)
	require.NoError(t, err)
	return d.WithLogger(nopLogger)
}

func TestGCEFindsCliques(t *testing.T) {
	for _, objective := range []string{ObjectiveM, ObjectiveL, "l"} {
		t.Run(objective, func(t *testing.T) {
			config := quietConfig()
			config.Set("gce.objective", objective)
			d := newGCE(t, twoCliques(t), config)

			result, err := d.Run(context.Background(), []int{0, 7})
			require.NoError(t, err)

			assert.Equal(t, cliqueA, result.Communities[0].Nodes)
			assert.Equal(t, cliqueB, result.Communities[7].Nodes)
			assert.InDelta(t, 1.0/21.0, result.Communities[0].Conductance, 1e-12)
		})
	}
}

func TestGCEMaxCommunitySize(t *testing.T) {
	config := quietConfig()
	config.Set("gce.max_community_size", 3)
	g := twoCliques(t)
	d := newGCE(t, g, config)

	community, err := d.ExpandSeed(0)
	require.NoError(t, err)

	// ties among 1, 2 and 3 are broken by the smaller id
	assert.Equal(t, []int{0, 1, 2}, community.Nodes)
	assert.InDelta(t, quality.SetConductance(g, community.Nodes), community.Conductance, 1e-12)
}

func TestGCEPrefersHeavyEdges(t *testing.T) {
	// star around 0 where the edge to 2 dominates
	g := graph.NewGraph(5)
	require.NoError(t, g.AddEdge(0, 1, 1.0))
	require.NoError(t, g.AddEdge(0, 2, 10.0))
	require.NoError(t, g.AddEdge(0, 3, 1.0))
	require.NoError(t, g.AddEdge(3, 4, 1.0))

	config := quietConfig()
	config.Set("gce.max_community_size", 2)
	d := newGCE(t, g, config)

	community, err := d.ExpandSeed(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, community.Nodes)
}

func TestGCEIsolatedSeed(t *testing.T) {
	g := graph.NewGraph(3)
	require.NoError(t, g.AddEdge(0, 1, 1.0))
	d := newGCE(t, g, quietConfig())

	p, result, err := d.RunPartition(context.Background(), []int{2})
	require.NoError(t, err)

	assert.Equal(t, []int{2}, result.Communities[2].Nodes)
	assert.Equal(t, 1, result.Statistics.RevertedSeeds)
	assert.Zero(t, p.SubsetOf(2))
}

func TestGCERunPartition(t *testing.T) {
	d := newGCE(t, twoCliques(t), quietConfig())

	p, result, err := d.RunPartition(context.Background(), []int{0, 1, 9})
	require.NoError(t, err)

	// seed 1 finds the same clique as seed 0 and is reverted into it
	assert.Equal(t, 1, result.Statistics.RevertedSeeds)
	assert.Equal(t, cliqueA, p.Members(p.SubsetOf(1)))
	assert.Equal(t, cliqueB, p.Members(p.SubsetOf(9)))
	assert.Equal(t, 2, p.NumberOfSubsets())
}

func TestNewGCEUnknownObjective(t *testing.T) {
	config := quietConfig()
	config.Set("gce.objective", "Q")
	_, err := NewGCE(twoCliques(t), config)
	assert.ErrorIs(t, err, ErrUnknownObjective)

	_, err = NewGCE(nil, quietConfig())
	assert.ErrorIs(t, err, ErrEmptyGraph)
}
