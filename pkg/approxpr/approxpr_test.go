package approxpr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-service/pkg/graph"
)

// path 0-1-2-3-4 plus a far component 5-6
func pathGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(7)
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {5, 6}} {
		require.NoError(t, g.AddEdge(e[0], e[1], 1.0))
	}
	return g
}

func TestRunConservesMass(t *testing.T) {
	g := pathGraph(t)
	g.AddEdge(2, 2, 1.0)

	vec, err := Run(g, 0, Options{Alpha: 0.15, Epsilon: 1e-4})
	require.NoError(t, err)

	p, r := vec.Mass()
	assert.InDelta(t, 1.0, p+r, 1e-9)
	assert.Greater(t, vec.Pushes, 0)
}

func TestRunResidualBelowTolerance(t *testing.T) {
	g := pathGraph(t)
	opts := Options{Alpha: 0.1, Epsilon: 1e-3}

	vec, err := Run(g, 2, opts)
	require.NoError(t, err)

	for node, res := range vec.Residual {
		assert.Less(t, res, opts.Epsilon*g.Volume(node), "node %d residual too large", node)
	}
}

func TestRunStaysLocal(t *testing.T) {
	g := pathGraph(t)

	vec, err := Run(g, 0, Options{Alpha: 0.1, Epsilon: 1e-6})
	require.NoError(t, err)

	for _, e := range vec.Entries() {
		assert.NotContains(t, []int{5, 6}, e.Node, "mass leaked into a disconnected component")
	}
	assert.Greater(t, vec.PageRank[0], vec.PageRank[4], "seed should outrank far nodes")
}

func TestEntriesSortedAndPositive(t *testing.T) {
	g := pathGraph(t)

	vec, err := Run(g, 4, DefaultOptions())
	require.NoError(t, err)

	entries := vec.Entries()
	require.NotEmpty(t, entries)
	for i, e := range entries {
		assert.Greater(t, e.Score, 0.0)
		if i > 0 {
			assert.Less(t, entries[i-1].Node, e.Node)
		}
	}
}

func TestIsolatedSeed(t *testing.T) {
	g := graph.NewGraph(3)
	require.NoError(t, g.AddEdge(1, 2, 1.0))

	oracle, err := NewPushOracle(DefaultOptions())
	require.NoError(t, err)

	entries, err := oracle.Compute(g, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Node)
	assert.Equal(t, 1.0, entries[0].Score)
}

func TestLargeEpsilonKeepsSupportSmall(t *testing.T) {
	g := pathGraph(t)

	entries, err := (&PushOracle{opts: Options{Alpha: 0.5, Epsilon: 0.4}}).Compute(g, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "a single push should leave only the seed with PageRank mass")
}

func TestRunRejectsBadInput(t *testing.T) {
	g := pathGraph(t)

	_, err := Run(g, 99, DefaultOptions())
	assert.True(t, errors.Is(err, graph.ErrNodeOutOfRange))

	tests := []struct {
		name string
		opts Options
	}{
		{"ZeroAlpha", Options{Alpha: 0, Epsilon: 1e-4}},
		{"AlphaAboveOne", Options{Alpha: 1.5, Epsilon: 1e-4}},
		{"ZeroEpsilon", Options{Alpha: 0.1, Epsilon: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPushOracle(tt.opts)
			assert.Error(t, err)
		})
	}
}
