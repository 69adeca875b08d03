package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gilchrisn/local-community-service/pkg/partition"
)

// ParseGroundTruthFile reads a ground truth file for the graph this parser
// loaded. See ParseGroundTruth.
func (p *GraphParser) ParseGroundTruthFile(path string) (*partition.Partition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.ParseGroundTruth(file)
}

// ParseGroundTruth reads "node community" lines into a partition over the
// normalized ids. Community labels are arbitrary strings; each label gets its
// own subset, numbered from 1 in order of first appearance. Nodes that are not
// listed stay in subset 0.
func (p *GraphParser) ParseGroundTruth(r io.Reader) (*partition.Partition, error) {
	part := partition.New(p.NumNodes)
	subsets := make(map[string]int)
	assigned := make(map[int]bool)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w %d: expected \"node community\", got %q", ErrMalformedLine, lineNum, line)
		}

		v, ok := p.OriginalToNormalized[parts[0]]
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %q", lineNum, ErrUnknownNode, parts[0])
		}
		if assigned[v] {
			return nil, fmt.Errorf("%w %d: node %q is listed twice", ErrMalformedLine, lineNum, parts[0])
		}
		assigned[v] = true

		if id, exists := subsets[parts[1]]; exists {
			part.MoveToSubset(id, v)
		} else {
			subsets[parts[1]] = part.ToSingleton(v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ground truth: %w", err)
	}

	p.logger.Debug().
		Int("communities", len(subsets)).
		Int("assigned", len(assigned)).
		Msg("Ground truth loaded")

	return part, nil
}
