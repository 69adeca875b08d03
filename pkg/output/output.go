// Package output renders detection results with original node ids.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/parser"
	"github.com/gilchrisn/local-community-service/pkg/partition"
	"github.com/gilchrisn/local-community-service/pkg/quality"
	"github.com/gilchrisn/local-community-service/pkg/scd"
)

const (
	CommunitiesFile = "communities.json"
	PartitionFile   = "partition.txt"
)

// Report is the serializable view of a detection run. Conductances that are
// infinite are reported as null.
type Report struct {
	Strategy    string          `json:"strategy"`
	Communities []CommunityView `json:"communities"`
	Partition   *PartitionView  `json:"partition,omitempty"`
	Statistics  scd.Statistics  `json:"statistics"`
}

// CommunityView is one seed's community with original ids
type CommunityView struct {
	Seed        string   `json:"seed"`
	Nodes       []string `json:"nodes"`
	Size        int      `json:"size"`
	Conductance *float64 `json:"conductance"`
	SupportSize int      `json:"support_size"`
}

// PartitionView summarizes the merged partition
type PartitionView struct {
	Subsets          []SubsetView `json:"subsets"`
	Unassigned       int          `json:"unassigned"`
	Modularity       float64      `json:"modularity"`
	Coverage         float64      `json:"coverage"`
	WorstConductance *float64     `json:"worst_conductance"`
	NMI              *float64     `json:"nmi,omitempty"`
}

// SubsetView is one nonempty subset other than the background
type SubsetView struct {
	ID          int      `json:"id"`
	Nodes       []string `json:"nodes"`
	Conductance *float64 `json:"conductance"`
}

func finite(x float64) *float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return nil
	}
	return &x
}

// ids resolves normalized ids, falling back to decimal when there is no parser
func ids(p *parser.GraphParser, nodes []int) []string {
	if p == nil {
		return parser.NewGraphParser().OriginalIDs(nodes)
	}
	return p.OriginalIDs(nodes)
}

// BuildReport converts a result, and optionally its merged partition, into a
// Report. Communities appear in seed order.
func BuildReport(strategy string, result *scd.Result, part *partition.Partition, g *graph.Graph, p *parser.GraphParser) *Report {
	report := &Report{
		Strategy:    strategy,
		Communities: make([]CommunityView, 0, len(result.SeedScores)),
		Statistics:  result.Statistics,
	}

	for _, score := range result.SeedScores {
		c := result.Communities[score.Seed]
		report.Communities = append(report.Communities, CommunityView{
			Seed:        ids(p, []int{c.Seed})[0],
			Nodes:       ids(p, c.Nodes),
			Size:        len(c.Nodes),
			Conductance: finite(c.Conductance),
			SupportSize: c.SupportSize,
		})
	}

	if part != nil {
		report.Partition = buildPartitionView(part, g, p)
	}
	return report
}

func buildPartitionView(part *partition.Partition, g *graph.Graph, p *parser.GraphParser) *PartitionView {
	scores, worst := quality.PartitionConductance(g, part)
	subsets := part.Subsets()

	view := &PartitionView{
		Subsets:          make([]SubsetView, 0, len(subsets)),
		Unassigned:       part.SubsetSize(0),
		Modularity:       quality.Modularity(g, part),
		Coverage:         quality.Coverage(g, part),
		WorstConductance: finite(worst),
	}

	for _, id := range part.SubsetIDs() {
		if id == 0 {
			continue
		}
		view.Subsets = append(view.Subsets, SubsetView{
			ID:          id,
			Nodes:       ids(p, subsets[id]),
			Conductance: finite(scores[id]),
		})
	}
	return view
}

// AddGroundTruth scores the report's partition against a reference partition
// of the same graph. It is a no-op for reports without a partition.
func AddGroundTruth(report *Report, part, truth *partition.Partition) error {
	if report.Partition == nil || part == nil {
		return nil
	}
	nmi, err := quality.NMI(part, truth)
	if err != nil {
		return fmt.Errorf("failed to compare with ground truth: %w", err)
	}
	report.Partition.NMI = &nmi
	return nil
}

// WriteCommunitiesJSON writes the report as indented JSON
func WriteCommunitiesJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode communities: %w", err)
	}
	return nil
}

// WritePartitionText writes one "original_id subset_id" line per node, in
// normalized node order
func WritePartitionText(w io.Writer, part *partition.Partition, p *parser.GraphParser) error {
	nodes := make([]int, part.NumberOfElements())
	for v := range nodes {
		nodes[v] = v
	}
	originals := ids(p, nodes)

	for v, id := range originals {
		if _, err := fmt.Fprintf(w, "%s %d\n", id, part.SubsetOf(v)); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary writes a short human readable summary of the report
func WriteSummary(w io.Writer, report *Report) error {
	fmt.Fprintf(w, "Strategy:      %s\n", report.Strategy)
	fmt.Fprintf(w, "Seeds:         %d\n", report.Statistics.NumSeeds)
	fmt.Fprintf(w, "Runtime:       %d ms\n", report.Statistics.RuntimeMS)

	sorted := make([]CommunityView, len(report.Communities))
	copy(sorted, report.Communities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return conductanceOrder(sorted[i].Conductance) < conductanceOrder(sorted[j].Conductance)
	})

	fmt.Fprintf(w, "\n%-12s %8s %12s\n", "Seed", "Size", "Conductance")
	for _, c := range sorted {
		fmt.Fprintf(w, "%-12s %8d %12s\n", c.Seed, c.Size, formatConductance(c.Conductance))
	}

	if report.Partition != nil {
		fmt.Fprintf(w, "\nSubsets:       %d\n", len(report.Partition.Subsets))
		fmt.Fprintf(w, "Unassigned:    %d\n", report.Partition.Unassigned)
		fmt.Fprintf(w, "Reverted:      %d\n", report.Statistics.RevertedSeeds)
		fmt.Fprintf(w, "Modularity:    %.6f\n", report.Partition.Modularity)
		fmt.Fprintf(w, "Coverage:      %.6f\n", report.Partition.Coverage)
		fmt.Fprintf(w, "Worst cond.:   %s\n", formatConductance(report.Partition.WorstConductance))
		if report.Partition.NMI != nil {
			fmt.Fprintf(w, "NMI:           %.6f\n", *report.Partition.NMI)
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

func conductanceOrder(c *float64) float64 {
	if c == nil {
		return math.Inf(1)
	}
	return *c
}

func formatConductance(c *float64) string {
	if c == nil {
		return "inf"
	}
	return fmt.Sprintf("%.6f", *c)
}

// FileWriter writes reports into a directory
type FileWriter struct{}

// NewFileWriter creates a new file-based output writer
func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

// WriteAll writes communities.json and, when part is not nil, partition.txt
func (fw *FileWriter) WriteAll(report *Report, part *partition.Partition, p *parser.GraphParser, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeFile(filepath.Join(outputDir, CommunitiesFile), func(w io.Writer) error {
		return WriteCommunitiesJSON(w, report)
	}); err != nil {
		return fmt.Errorf("failed to write communities: %w", err)
	}

	if part == nil {
		return nil
	}
	if err := writeFile(filepath.Join(outputDir, PartitionFile), func(w io.Writer) error {
		return WritePartitionText(w, part, p)
	}); err != nil {
		return fmt.Errorf("failed to write partition: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
