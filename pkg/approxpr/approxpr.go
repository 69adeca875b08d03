// Package approxpr computes approximate personalized PageRank vectors with the
// push method of Andersen, Chung and Lang. The result is supported on a small
// neighborhood of the seed, which is what makes local sweep cuts cheap.
package approxpr

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/gilchrisn/local-community-service/pkg/graph"
)

// Entry is one node of a sparse PageRank vector
type Entry struct {
	Node  int     `json:"node"`
	Score float64 `json:"score"`
}

// Options configures the approximation
type Options struct {
	Alpha   float64 // loop (teleport) probability of the lazy walk
	Epsilon float64 // residual tolerance per unit of volume
}

// DefaultOptions returns the parameters used by PageRank-Nibble
func DefaultOptions() Options {
	return Options{
		Alpha:   0.1,
		Epsilon: 1e-5,
	}
}

// Validate checks the parameter ranges
func (o Options) Validate() error {
	if o.Alpha <= 0 || o.Alpha > 1 {
		return fmt.Errorf("alpha must be in (0, 1], got %f", o.Alpha)
	}
	if o.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %f", o.Epsilon)
	}
	return nil
}

// Oracle produces a sparse PageRank vector for a seed node
type Oracle interface {
	Compute(g *graph.Graph, seed int) ([]Entry, error)
}

// PushOracle is the default Oracle
type PushOracle struct {
	opts Options
}

// NewPushOracle creates a push-based oracle
func NewPushOracle(opts Options) (*PushOracle, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &PushOracle{opts: opts}, nil
}

// Compute implements Oracle
func (o *PushOracle) Compute(g *graph.Graph, seed int) ([]Entry, error) {
	vec, err := Run(g, seed, o.opts)
	if err != nil {
		return nil, err
	}
	return vec.Entries(), nil
}

// Vector holds the approximation p together with its residual r
type Vector struct {
	PageRank map[int]float64
	Residual map[int]float64
	Pushes   int
}

// Entries returns the nonzero PageRank entries sorted by node id
func (v *Vector) Entries() []Entry {
	entries := make([]Entry, 0, len(v.PageRank))
	for node, score := range v.PageRank {
		if score > 0 {
			entries = append(entries, Entry{Node: node, Score: score})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Node < entries[j].Node
	})
	return entries
}

// Mass returns the total PageRank and residual mass. Their sum is 1 up to
// floating point error.
func (v *Vector) Mass() (pagerank, residual float64) {
	return floats.Sum(values(v.PageRank)), floats.Sum(values(v.Residual))
}

func values(m map[int]float64) []float64 {
	out := make([]float64, 0, len(m))
	for _, x := range m {
		out = append(out, x)
	}
	return out
}

// Run computes the approximate PageRank vector of seed.
//
// Invariant after every push: sum(p) + sum(r) == 1. On return every node u
// satisfies r[u] < epsilon * vol(u).
func Run(g *graph.Graph, seed int, opts Options) (*Vector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !g.HasNode(seed) {
		return nil, fmt.Errorf("%w: seed %d", graph.ErrNodeOutOfRange, seed)
	}

	vec := &Vector{
		PageRank: make(map[int]float64),
		Residual: map[int]float64{seed: 1.0},
	}

	// An isolated seed keeps all of its mass; the lazy walk never leaves it.
	if g.Volume(seed) == 0 {
		vec.PageRank[seed] = 1.0
		delete(vec.Residual, seed)
		return vec, nil
	}

	queue := []int{seed}
	queued := map[int]bool{seed: true}
	halfLazy := (1 - opts.Alpha) / 2

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		queued[u] = false

		vol := g.Volume(u)
		res := vec.Residual[u]
		if res < opts.Epsilon*vol {
			continue
		}

		vec.PageRank[u] += opts.Alpha * res
		mass := halfLazy * res
		vec.Residual[u] = mass
		vec.Pushes++

		g.ForNeighborsOf(u, func(v int, w float64) {
			if v == u {
				// a self-loop is listed once but counts twice toward vol(u)
				w *= 2
			}
			vec.Residual[v] += mass * w / vol
			if !queued[v] && vec.Residual[v] >= opts.Epsilon*g.Volume(v) {
				queue = append(queue, v)
				queued[v] = true
			}
		})

		if !queued[u] && vec.Residual[u] >= opts.Epsilon*vol {
			queue = append(queue, u)
			queued[u] = true
		}
	}

	return vec, nil
}
