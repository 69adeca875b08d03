// Package parser reads graph files into a graph.Graph with dense node ids,
// remembering the mapping back to the ids used in the file.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/local-community-service/pkg/graph"
)

const (
	FormatEdgeList = "edgelist"
	FormatMETIS    = "metis"
)

var (
	ErrMalformedLine = errors.New("malformed line")
	ErrUnknownFormat = errors.New("unknown graph format")
	ErrUnknownNode   = errors.New("unknown node id")
)

// GraphParser handles parsing and normalizing graph files
type GraphParser struct {
	// Mapping from original node ID to normalized index
	OriginalToNormalized map[string]int
	// Mapping from normalized index to original node ID
	NormalizedToOriginal map[int]string
	// Total number of nodes
	NumNodes int

	logger zerolog.Logger
}

// ParseResult contains the parsed graph and mappings
type ParseResult struct {
	Graph  *graph.Graph
	Parser *GraphParser
}

// NewGraphParser creates a new graph parser
func NewGraphParser() *GraphParser {
	return &GraphParser{
		OriginalToNormalized: make(map[string]int),
		NormalizedToOriginal: make(map[int]string),
		logger:               zerolog.Nop(),
	}
}

// WithLogger sets the logger used for parse diagnostics
func (p *GraphParser) WithLogger(logger zerolog.Logger) *GraphParser {
	p.logger = logger
	return p
}

type rawEdge struct {
	from, to string
	weight   float64
}

// ParseFile parses path in the given format
func (p *GraphParser) ParseFile(path, format string) (*ParseResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(format) {
	case FormatEdgeList, "":
		return p.ParseEdgeList(file)
	case FormatMETIS:
		return p.ParseMETIS(file)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ParseEdgeListFile parses an edge list file
func (p *GraphParser) ParseEdgeListFile(path string) (*ParseResult, error) {
	return p.ParseFile(path, FormatEdgeList)
}

// ParseEdgeList parses an edge list and returns a normalized graph.
// Expected format: "from to weight" or "from to" (weight defaults to 1.0).
// Lines starting with '#' or '%' are comments. Repeated undirected edges
// accumulate their weights; self-loops are kept.
func (p *GraphParser) ParseEdgeList(r io.Reader) (*ParseResult, error) {
	nodeSet := make(map[string]bool)
	var edges []rawEdge

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w %d: expected \"from to [weight]\", got %q", ErrMalformedLine, lineNum, line)
		}

		weight := 1.0
		if len(parts) >= 3 {
			w, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("%w %d: invalid weight %q", ErrMalformedLine, lineNum, parts[2])
			}
			weight = w
		}

		nodeSet[parts[0]] = true
		nodeSet[parts[1]] = true
		edges = append(edges, rawEdge{from: parts[0], to: parts[1], weight: weight})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading edge list: %w", err)
	}

	p.createNormalizedMapping(nodeSet)

	// merge parallel edges so every undirected pair appears once
	type pair struct{ u, v int }
	merged := make(map[pair]float64, len(edges))
	for _, e := range edges {
		u, v := p.OriginalToNormalized[e.from], p.OriginalToNormalized[e.to]
		if u > v {
			u, v = v, u
		}
		merged[pair{u, v}] += e.weight
	}

	pairs := make([]pair, 0, len(merged))
	for k := range merged {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].u != pairs[j].u {
			return pairs[i].u < pairs[j].u
		}
		return pairs[i].v < pairs[j].v
	})

	g := graph.NewGraph(p.NumNodes)
	for _, k := range pairs {
		if err := g.AddEdge(k.u, k.v, merged[k]); err != nil {
			return nil, fmt.Errorf("edge %s-%s: %w", p.NormalizedToOriginal[k.u], p.NormalizedToOriginal[k.v], err)
		}
	}

	p.logger.Debug().
		Int("nodes", g.NumberOfNodes()).
		Int("edges", g.NumberOfEdges()).
		Int("lines", lineNum).
		Msg("Parsed edge list")

	return &ParseResult{Graph: g, Parser: p}, nil
}

// ParseMETIS parses a graph in METIS format: a header "n m [fmt [ncon]]"
// followed by one line of 1-based neighbors per node. When the last digit of
// fmt is 1 every neighbor is followed by an edge weight; when the middle digit
// is 1 each line starts with ncon vertex weights, which are ignored.
func (p *GraphParser) ParseMETIS(r io.Reader) (*ParseResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNum := 0

	nextLine := func() (string, bool) {
		for scanner.Scan() {
			lineNum++
			line := strings.TrimSpace(scanner.Text())
			if strings.HasPrefix(line, "%") {
				continue
			}
			return line, true
		}
		return "", false
	}

	header, ok := nextLine()
	for ok && header == "" {
		header, ok = nextLine()
	}
	if !ok {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading METIS file: %w", err)
		}
		return nil, fmt.Errorf("%w: missing METIS header", ErrMalformedLine)
	}

	fields := strings.Fields(header)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w %d: METIS header needs \"n m\"", ErrMalformedLine, lineNum)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w %d: invalid node count %q", ErrMalformedLine, lineNum, fields[0])
	}
	m, err := strconv.Atoi(fields[1])
	if err != nil || m < 0 {
		return nil, fmt.Errorf("%w %d: invalid edge count %q", ErrMalformedLine, lineNum, fields[1])
	}

	edgeWeights, vertexWeights, ncon := false, false, 1
	if len(fields) >= 3 {
		format := fields[2]
		edgeWeights = strings.HasSuffix(format, "1")
		vertexWeights = len(format) >= 2 && format[len(format)-2] == '1'
	}
	if len(fields) >= 4 {
		if ncon, err = strconv.Atoi(fields[3]); err != nil || ncon < 1 {
			return nil, fmt.Errorf("%w %d: invalid ncon %q", ErrMalformedLine, lineNum, fields[3])
		}
	}

	p.NumNodes = n
	for i := 0; i < n; i++ {
		id := strconv.Itoa(i + 1)
		p.OriginalToNormalized[id] = i
		p.NormalizedToOriginal[i] = id
	}

	g := graph.NewGraph(n)
	step := 1
	if edgeWeights {
		step = 2
	}

	for u := 0; u < n; u++ {
		line, ok := nextLine()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d adjacency lines, got %d", ErrMalformedLine, n, u)
		}

		parts := strings.Fields(line)
		if vertexWeights {
			if len(parts) < ncon {
				return nil, fmt.Errorf("%w %d: missing vertex weights", ErrMalformedLine, lineNum)
			}
			parts = parts[ncon:]
		}
		if len(parts)%step != 0 {
			return nil, fmt.Errorf("%w %d: neighbor without weight", ErrMalformedLine, lineNum)
		}

		for i := 0; i < len(parts); i += step {
			v, err := strconv.Atoi(parts[i])
			if err != nil || v < 1 || v > n {
				return nil, fmt.Errorf("%w %d: invalid neighbor %q", ErrMalformedLine, lineNum, parts[i])
			}
			v--

			weight := 1.0
			if edgeWeights {
				if weight, err = strconv.ParseFloat(parts[i+1], 64); err != nil {
					return nil, fmt.Errorf("%w %d: invalid weight %q", ErrMalformedLine, lineNum, parts[i+1])
				}
			}

			// every undirected edge is listed by both endpoints
			if u > v {
				continue
			}
			if err := g.AddEdge(u, v, weight); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading METIS file: %w", err)
	}

	if g.NumberOfEdges() != m {
		p.logger.Warn().
			Int("header_edges", m).
			Int("parsed_edges", g.NumberOfEdges()).
			Msg("METIS edge count does not match header")
	}

	return &ParseResult{Graph: g, Parser: p}, nil
}

// createNormalizedMapping creates the bidirectional mapping between original and normalized IDs
func (p *GraphParser) createNormalizedMapping(nodeSet map[string]bool) {
	nodes := make([]string, 0, len(nodeSet))
	for node := range nodeSet {
		nodes = append(nodes, node)
	}

	// Try to sort numerically if all nodes are integers
	allIntegers := p.allNodesAreIntegers(nodes)
	if allIntegers {
		sort.Slice(nodes, func(i, j int) bool {
			a, _ := strconv.ParseInt(nodes[i], 10, 64)
			b, _ := strconv.ParseInt(nodes[j], 10, 64)
			return a < b
		})
	} else {
		sort.Strings(nodes)
	}

	p.NumNodes = len(nodes)
	for i, node := range nodes {
		p.OriginalToNormalized[node] = i
		p.NormalizedToOriginal[i] = node
	}

	p.logger.Debug().
		Bool("all_integers", allIntegers).
		Int("nodes", p.NumNodes).
		Msg("Node normalization mapping created")
}

// allNodesAreIntegers checks if all node IDs can be parsed as integers
func (p *GraphParser) allNodesAreIntegers(nodes []string) bool {
	for _, node := range nodes {
		if _, err := strconv.ParseInt(node, 10, 64); err != nil {
			return false
		}
	}
	return true
}

// OriginalIDs maps normalized indices back to original IDs. Unknown indices
// are rendered as their decimal value.
func (p *GraphParser) OriginalIDs(nodes []int) []string {
	out := make([]string, len(nodes))
	for i, v := range nodes {
		if id, ok := p.NormalizedToOriginal[v]; ok {
			out[i] = id
		} else {
			out[i] = strconv.Itoa(v)
		}
	}
	return out
}

// NormalizedIDs maps original IDs to normalized indices
func (p *GraphParser) NormalizedIDs(originals []string) ([]int, error) {
	out := make([]int, len(originals))
	for i, id := range originals {
		v, ok := p.OriginalToNormalized[strings.TrimSpace(id)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
		}
		out[i] = v
	}
	return out, nil
}
