package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gilchrisn/local-community-service/pkg/graph"
)

func TestParseEdgeListNumericOrder(t *testing.T) {
	input := `# comment
% another comment
10 2
2 3 2.5

3 100
`
	result, err := NewGraphParser().ParseEdgeList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseEdgeList failed: %v", err)
	}

	p := result.Parser
	want := []string{"2", "3", "10", "100"}
	if p.NumNodes != len(want) {
		t.Fatalf("Expected %d nodes, got %d", len(want), p.NumNodes)
	}
	originals := p.OriginalIDs([]int{0, 1, 2, 3})
	for i, id := range want {
		if got := originals[i]; got != id {
			t.Errorf("Normalized %d: expected original %s, got %s", i, id, got)
		}
	}

	g := result.Graph
	if g.NumberOfEdges() != 3 {
		t.Errorf("Expected 3 edges, got %d", g.NumberOfEdges())
	}
	if w := g.GetEdgeWeight(0, 1); w != 2.5 {
		t.Errorf("Expected weight 2.5 for 2-3, got %f", w)
	}
	if w := g.GetEdgeWeight(2, 0); w != 1.0 {
		t.Errorf("Expected weight 1.0 for 10-2, got %f", w)
	}
}

func TestParseEdgeListLexicographicOrder(t *testing.T) {
	result, err := NewGraphParser().ParseEdgeList(strings.NewReader("b a\nc 1\n"))
	if err != nil {
		t.Fatalf("ParseEdgeList failed: %v", err)
	}

	ids, err := result.Parser.NormalizedIDs([]string{"1", "a", "b", "c"})
	if err != nil {
		t.Fatalf("NormalizedIDs failed: %v", err)
	}
	for i, v := range ids {
		if v != i {
			t.Errorf("Expected normalized %d, got %d", i, v)
		}
	}
}

func TestParseEdgeListAccumulatesDuplicates(t *testing.T) {
	input := "1 2\n2 1 2\n1 2 0.5\n3 3 4\n"
	result, err := NewGraphParser().ParseEdgeList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseEdgeList failed: %v", err)
	}

	g := result.Graph
	if g.NumberOfEdges() != 2 {
		t.Errorf("Expected 2 edges after merging, got %d", g.NumberOfEdges())
	}
	if w := g.GetEdgeWeight(0, 1); w != 3.5 {
		t.Errorf("Expected merged weight 3.5, got %f", w)
	}
	// self-loops count twice toward volume
	if vol := g.Volume(2); vol != 8 {
		t.Errorf("Expected self-loop volume 8, got %f", vol)
	}
	if g.TotalEdgeWeight() != 7.5 {
		t.Errorf("Expected total weight 7.5, got %f", g.TotalEdgeWeight())
	}
}

func TestParseEdgeListErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"single field", "1\n", ErrMalformedLine},
		{"bad weight", "1 2 heavy\n", ErrMalformedLine},
		{"zero weight", "1 2 0\n", graph.ErrNonPositiveWeight},
		{"negative weight", "1 2 -1\n", graph.ErrNonPositiveWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraphParser().ParseEdgeList(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseMETIS(t *testing.T) {
	input := `% triangle plus a pendant and an isolated node
5 4
2 3
1 3
1 2 4
3

`
	result, err := NewGraphParser().ParseMETIS(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseMETIS failed: %v", err)
	}

	g := result.Graph
	if g.NumberOfNodes() != 5 {
		t.Errorf("Expected 5 nodes, got %d", g.NumberOfNodes())
	}
	if g.NumberOfEdges() != 4 {
		t.Errorf("Expected 4 edges, got %d", g.NumberOfEdges())
	}
	if g.Volume(2) != 3 {
		t.Errorf("Expected degree 3 for node 3, got %f", g.Volume(2))
	}
	if g.Volume(4) != 0 {
		t.Errorf("Expected isolated node 5, got volume %f", g.Volume(4))
	}
	if id := result.Parser.OriginalIDs([]int{0})[0]; id != "1" {
		t.Errorf("Expected METIS ids to be 1-based, got %s", id)
	}
}

func TestParseMETISWeighted(t *testing.T) {
	input := "3 2 011 1\n7 2 4\n9 1 4 3 2\n8 2 2\n"
	result, err := NewGraphParser().ParseMETIS(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseMETIS failed: %v", err)
	}

	g := result.Graph
	if w := g.GetEdgeWeight(0, 1); w != 4 {
		t.Errorf("Expected weight 4 for 1-2, got %f", w)
	}
	if w := g.GetEdgeWeight(1, 2); w != 2 {
		t.Errorf("Expected weight 2 for 2-3, got %f", w)
	}
}

func TestParseMETISErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short header", "3\n"},
		{"missing lines", "3 1\n2\n"},
		{"neighbor out of range", "2 1\n3\n1\n"},
		{"missing weight", "2 1 1\n2\n1 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraphParser().ParseMETIS(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformedLine) {
				t.Errorf("Expected ErrMalformedLine, got %v", err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.txt")
	if err := os.WriteFile(path, []byte("1 2\n2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := NewGraphParser().ParseEdgeListFile(path)
	if err != nil {
		t.Fatalf("ParseEdgeListFile failed: %v", err)
	}
	if result.Graph.NumberOfNodes() != 3 {
		t.Errorf("Expected 3 nodes, got %d", result.Graph.NumberOfNodes())
	}

	if _, err := NewGraphParser().ParseFile(path, "graphml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
	if _, err := NewGraphParser().ParseEdgeListFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestIDConversion(t *testing.T) {
	result, err := NewGraphParser().ParseEdgeList(strings.NewReader("a b\nb c\n"))
	if err != nil {
		t.Fatalf("ParseEdgeList failed: %v", err)
	}
	p := result.Parser

	ids, err := p.NormalizedIDs([]string{"c", " a"})
	if err != nil {
		t.Fatalf("NormalizedIDs failed: %v", err)
	}
	if ids[0] != 2 || ids[1] != 0 {
		t.Errorf("Expected [2 0], got %v", ids)
	}
	if _, err := p.NormalizedIDs([]string{"z"}); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Expected ErrUnknownNode, got %v", err)
	}

	originals := p.OriginalIDs([]int{1, 7})
	if originals[0] != "b" || originals[1] != "7" {
		t.Errorf("Expected [b 7], got %v", originals)
	}
}

func TestParseGroundTruth(t *testing.T) {
	result, err := NewGraphParser().ParseEdgeList(strings.NewReader("a b\nb c\nc d\nd e\n"))
	if err != nil {
		t.Fatalf("ParseEdgeList failed: %v", err)
	}

	truth, err := result.Parser.ParseGroundTruth(strings.NewReader("# node community\na x\nb x\nd y\ne y\n"))
	if err != nil {
		t.Fatalf("ParseGroundTruth failed: %v", err)
	}

	want := []int{1, 1, 0, 2, 2}
	for v, id := range want {
		if got := truth.SubsetOf(v); got != id {
			t.Errorf("Node %d: expected subset %d, got %d", v, id, got)
		}
	}

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown node", "z x\n", ErrUnknownNode},
		{"listed twice", "a x\na y\n", ErrMalformedLine},
		{"missing label", "a\n", ErrMalformedLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := result.Parser.ParseGroundTruth(strings.NewReader(tt.input)); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}
