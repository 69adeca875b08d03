package output

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/local-community-service/pkg/parser"
	"github.com/gilchrisn/local-community-service/pkg/partition"
	"github.com/gilchrisn/local-community-service/pkg/scd"
)

const triangles = `a b
b c
c a
c d
d e
e f
f d
`

func fixture(t *testing.T) (*parser.ParseResult, *scd.Result, *partition.Partition) {
	t.Helper()
	parsed, err := parser.NewGraphParser().ParseEdgeList(strings.NewReader(triangles))
	require.NoError(t, err)

	// a..f are normalized to 0..5
	result := &scd.Result{
		Communities: map[int]*scd.Community{
			0: {Seed: 0, Nodes: []int{0, 1, 2}, Conductance: 1.0 / 7.0, SupportSize: 4},
			5: {Seed: 5, Nodes: nil, Conductance: math.Inf(1)},
		},
		SeedScores: []scd.SeedScore{
			{Seed: 5, Conductance: math.Inf(1)},
			{Seed: 0, Conductance: 1.0 / 7.0},
		},
		Statistics: scd.Statistics{NumSeeds: 2, TotalSupport: 5},
	}

	part, _ := scd.MergeCommunities(parsed.Graph.NumberOfNodes(), result.Communities, result.SeedScores, zerolog.Nop())
	return parsed, result, part
}

func TestBuildReport(t *testing.T) {
	parsed, result, part := fixture(t)

	report := BuildReport("prn", result, part, parsed.Graph, parsed.Parser)

	require.Len(t, report.Communities, 2)
	assert.Equal(t, "f", report.Communities[0].Seed)
	assert.Nil(t, report.Communities[0].Conductance)
	assert.Equal(t, "a", report.Communities[1].Seed)
	assert.Equal(t, []string{"a", "b", "c"}, report.Communities[1].Nodes)
	require.NotNil(t, report.Communities[1].Conductance)
	assert.InDelta(t, 1.0/7.0, *report.Communities[1].Conductance, 1e-12)

	require.NotNil(t, report.Partition)
	require.Len(t, report.Partition.Subsets, 1)
	assert.Equal(t, []string{"a", "b", "c"}, report.Partition.Subsets[0].Nodes)
	assert.Equal(t, 3, report.Partition.Unassigned)
	assert.InDelta(t, 3.0/7.0, report.Partition.Coverage, 1e-12)

	assert.Nil(t, BuildReport("prn", result, nil, parsed.Graph, parsed.Parser).Partition)
}

func TestWriteCommunitiesJSONEncodesInfinityAsNull(t *testing.T) {
	parsed, result, part := fixture(t)
	report := BuildReport("prn", result, part, parsed.Graph, parsed.Parser)

	var buf bytes.Buffer
	require.NoError(t, WriteCommunitiesJSON(&buf, report))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	communities := decoded["communities"].([]any)
	first := communities[0].(map[string]any)
	assert.Nil(t, first["conductance"])
	assert.Equal(t, "f", first["seed"])
	assert.Contains(t, decoded, "partition")
}

func TestWritePartitionText(t *testing.T) {
	parsed, _, part := fixture(t)

	var buf bytes.Buffer
	require.NoError(t, WritePartitionText(&buf, part, parsed.Parser))

	want := "a 1\nb 1\nc 1\nd 0\ne 0\nf 0\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, WritePartitionText(&buf, partition.New(2), nil))
	assert.Equal(t, "0 0\n1 0\n", buf.String())
}

func TestWriteSummary(t *testing.T) {
	parsed, result, part := fixture(t)
	report := BuildReport("gce", result, part, parsed.Graph, parsed.Parser)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, report))
	out := buf.String()

	assert.Contains(t, out, "Strategy:      gce")
	assert.Contains(t, out, "inf")
	assert.Contains(t, out, "Modularity:")
	// best conductance is listed first
	assert.Less(t, strings.Index(out, "0.142857"), strings.Index(out, "inf"))
}

func TestFileWriterWriteAll(t *testing.T) {
	parsed, result, part := fixture(t)
	report := BuildReport("prn", result, part, parsed.Graph, parsed.Parser)
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, NewFileWriter().WriteAll(report, part, parsed.Parser, dir))
	assert.FileExists(t, filepath.Join(dir, CommunitiesFile))
	assert.FileExists(t, filepath.Join(dir, PartitionFile))

	other := filepath.Join(t.TempDir(), "communities-only")
	require.NoError(t, NewFileWriter().WriteAll(report, nil, parsed.Parser, other))
	_, err := os.Stat(filepath.Join(other, PartitionFile))
	assert.True(t, os.IsNotExist(err))
}

func TestAddGroundTruth(t *testing.T) {
	parsed, result, part := fixture(t)
	report := BuildReport("prn", result, part, parsed.Graph, parsed.Parser)

	truth, err := parsed.Parser.ParseGroundTruth(strings.NewReader("d x\ne x\nf x\n"))
	require.NoError(t, err)
	require.NoError(t, AddGroundTruth(report, part, truth))

	// a..c and d..f are split the same way in both partitions
	require.NotNil(t, report.Partition.NMI)
	assert.InDelta(t, 1.0, *report.Partition.NMI, 1e-12)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, report))
	assert.Contains(t, buf.String(), "NMI:           1.000000")

	communitiesOnly := BuildReport("prn", result, nil, parsed.Graph, parsed.Parser)
	require.NoError(t, AddGroundTruth(communitiesOnly, nil, truth))
	assert.Nil(t, communitiesOnly.Partition)
}
