package scd

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-service/pkg/approxpr"
	"github.com/gilchrisn/local-community-service/pkg/graph"
)

// twoCliques builds two K5s on 0..4 and 5..9 joined by the edge 4-5.
// Each clique has conductance 1/21.
func twoCliques(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(10)
	for _, base := range []int{0, 5} {
		for i := base; i < base+5; i++ {
			for j := i + 1; j < base+5; j++ {
				require.NoError(t, g.AddEdge(i, j, 1.0))
			}
		}
	}
	require.NoError(t, g.AddEdge(4, 5, 1.0))
	return g
}

func quietConfig() *Config {
	config := NewConfig()
	config.Set("logging.level", "disabled")
	return config
}

// fixedOracle returns the same vector for every seed
type fixedOracle struct {
	entries []approxpr.Entry
	err     error
}

func (o fixedOracle) Compute(_ *graph.Graph, _ int) ([]approxpr.Entry, error) {
	return o.entries, o.err
}

var nopLogger = zerolog.Nop()

var (
	cliqueA = []int{0, 1, 2, 3, 4}
	cliqueB = []int{5, 6, 7, 8, 9}
)
