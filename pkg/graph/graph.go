package graph

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNodeOutOfRange    = errors.New("node index out of range")
	ErrNonPositiveWeight = errors.New("edge weight must be positive")
)

// Graph represents a weighted undirected graph with dense integer node ids
type Graph struct {
	NumNodes    int         `json:"num_nodes"`
	Adjacency   [][]int     `json:"-"`            // adjacency[i] = list of neighbors of node i
	Weights     [][]float64 `json:"-"`            // weights[i][j] = weight of edge from node i to adjacency[i][j]
	Degrees     []float64   `json:"degrees"`      // degrees[i] = weighted degree (volume) of node i
	TotalWeight float64     `json:"total_weight"` // sum of all edge weights
	numEdges    int
}

// NewGraph creates a new graph with n nodes and no edges
func NewGraph(numNodes int) *Graph {
	return &Graph{
		NumNodes:  numNodes,
		Adjacency: make([][]int, numNodes),
		Weights:   make([][]float64, numNodes),
		Degrees:   make([]float64, numNodes),
	}
}

// AddEdge adds a weighted undirected edge between u and v
func (g *Graph) AddEdge(u, v int, weight float64) error {
	if !g.HasNode(u) || !g.HasNode(v) {
		return fmt.Errorf("%w: u=%d, v=%d, numNodes=%d", ErrNodeOutOfRange, u, v, g.NumNodes)
	}
	if weight <= 0 || math.IsNaN(weight) {
		return fmt.Errorf("%w: %f", ErrNonPositiveWeight, weight)
	}

	g.Adjacency[u] = append(g.Adjacency[u], v)
	g.Weights[u] = append(g.Weights[u], weight)
	g.Degrees[u] += weight

	if u != v {
		g.Adjacency[v] = append(g.Adjacency[v], u)
		g.Weights[v] = append(g.Weights[v], weight)
		g.Degrees[v] += weight
	} else {
		// Self-loop: count weight twice for degree
		g.Degrees[u] += weight
	}

	g.TotalWeight += weight
	g.numEdges++
	return nil
}

// HasNode reports whether v is a valid node id
func (g *Graph) HasNode(v int) bool {
	return v >= 0 && v < g.NumNodes
}

// GetNeighbors returns neighbors and their edge weights for a node
func (g *Graph) GetNeighbors(node int) ([]int, []float64) {
	if !g.HasNode(node) {
		return nil, nil
	}
	return g.Adjacency[node], g.Weights[node]
}

// ForNeighborsOf calls fn once per incident edge of node. A self-loop is
// reported once with the node itself as neighbor.
func (g *Graph) ForNeighborsOf(node int, fn func(neighbor int, weight float64)) {
	neighbors, weights := g.GetNeighbors(node)
	for i, neighbor := range neighbors {
		fn(neighbor, weights[i])
	}
}

// GetEdgeWeight returns the weight of edge between u and v, or 0 if absent
func (g *Graph) GetEdgeWeight(u, v int) float64 {
	if !g.HasNode(u) || !g.HasNode(v) {
		return 0.0
	}
	for i, neighbor := range g.Adjacency[u] {
		if neighbor == v {
			return g.Weights[u][i]
		}
	}
	return 0.0
}

// Volume returns the weighted degree of a node
func (g *Graph) Volume(node int) float64 {
	if !g.HasNode(node) {
		return 0
	}
	return g.Degrees[node]
}

// TotalEdgeWeight returns the sum of all edge weights
func (g *Graph) TotalEdgeWeight() float64 { return g.TotalWeight }

// TotalVolume returns the summed volume of all nodes (twice the edge weight)
func (g *Graph) TotalVolume() float64 { return 2 * g.TotalWeight }

func (g *Graph) NumberOfNodes() int    { return g.NumNodes }
func (g *Graph) UpperNodeIDBound() int { return g.NumNodes }
func (g *Graph) NumberOfEdges() int    { return g.numEdges }

// Clone creates a deep copy of the graph
func (g *Graph) Clone() *Graph {
	clone := NewGraph(g.NumNodes)
	clone.TotalWeight = g.TotalWeight
	clone.numEdges = g.numEdges
	copy(clone.Degrees, g.Degrees)

	for i := 0; i < g.NumNodes; i++ {
		clone.Adjacency[i] = make([]int, len(g.Adjacency[i]))
		clone.Weights[i] = make([]float64, len(g.Weights[i]))
		copy(clone.Adjacency[i], g.Adjacency[i])
		copy(clone.Weights[i], g.Weights[i])
	}

	return clone
}

// Unweighted returns a copy of the graph with every edge weight set to 1
func (g *Graph) Unweighted() *Graph {
	out := NewGraph(g.NumNodes)
	for u := 0; u < g.NumNodes; u++ {
		for _, v := range g.Adjacency[u] {
			if u <= v {
				out.AddEdge(u, v, 1.0)
			}
		}
	}
	return out
}

// Validate checks graph consistency
func (g *Graph) Validate() error {
	if g.NumNodes <= 0 {
		return fmt.Errorf("graph must have positive number of nodes")
	}

	for i := 0; i < g.NumNodes; i++ {
		if len(g.Adjacency[i]) != len(g.Weights[i]) {
			return fmt.Errorf("adjacency and weights arrays inconsistent for node %d", i)
		}

		for j, neighbor := range g.Adjacency[i] {
			if !g.HasNode(neighbor) {
				return fmt.Errorf("invalid neighbor %d for node %d", neighbor, i)
			}
			if g.Weights[i][j] <= 0 {
				return fmt.Errorf("non-positive weight %f for edge %d-%d", g.Weights[i][j], i, neighbor)
			}
		}
	}

	return nil
}
