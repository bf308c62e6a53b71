package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphutil"
	"github.com/specialistvlad/mapfuse/internal/graphutil/graphtest"
	"github.com/specialistvlad/mapfuse/internal/hcl_adapter"
	"github.com/specialistvlad/mapfuse/internal/mapfusion"
	"github.com/specialistvlad/mapfuse/internal/yaml_adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePipeline writes range -> map1 -> map2 as an HCL file and returns its
// directory.
func writePipeline(t *testing.T) string {
	t.Helper()
	nodes := append(graphtest.RangeNodes(),
		graphtest.MakeMapNode("map1", "range"),
		graphtest.MakeMapNode("map2", "map1"),
	)
	g := graphtest.GDef(t, nodes, []*graphdef.FunctionDef{graphtest.XTimesTwo()})

	var buf bytes.Buffer
	require.NoError(t, hcl_adapter.NewWriter().Write(context.Background(), &buf, g))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipeline.hcl"), buf.Bytes(), 0o644))
	return dir
}

func TestApp_RunWritesFusedGraph(t *testing.T) {
	dir := writePipeline(t)
	a, out, logs := SetupAppTest(t, Config{GraphPaths: []string{dir}})

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalChanges())

	g, err := hcl_adapter.NewLoader().LoadBytes(context.Background(), []byte(out.String()), "out.hcl")
	require.NoError(t, err, out.String())
	assert.True(t, graphutil.ContainsGraphNodeWithName("fused_map1_map2", g))
	assert.False(t, graphutil.ContainsGraphNodeWithName("map1", g))
	assert.True(t, g.Library.Contains("composed_XTimesTwo_XTimesTwo"))
	assert.NoError(t, graphdef.Validate(g))

	assert.Contains(t, logs.String(), "Optimization finished.")
	assert.Contains(t, logs.String(), "map_nodes_after=1")
}

func TestApp_RunWritesYAMLFile(t *testing.T) {
	dir := writePipeline(t)
	outPath := filepath.Join(t.TempDir(), "optimized.yml")
	a, out, _ := SetupAppTest(t, Config{GraphPaths: []string{dir}, OutputPath: outPath})

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.String())

	src, err := os.ReadFile(outPath)
	require.NoError(t, err)
	g, err := yaml_adapter.NewLoader().LoadBytes(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, graphutil.ContainsGraphNodeWithName("fused_map1_map2", g))
}

// failingCloser accepts every write and fails on Close.
type failingCloser struct {
	bytes.Buffer
}

func (*failingCloser) Close() error { return errors.New("disk full") }

func TestApp_RunReportsCloseError(t *testing.T) {
	dir := writePipeline(t)
	a, _, _ := SetupAppTest(t, Config{GraphPaths: []string{dir}, OutputPath: "optimized.hcl"})
	sink := &failingCloser{}
	a.createOutput = func(string) (io.WriteCloser, error) { return sink, nil }

	_, err := a.Run(context.Background())

	assert.ErrorContains(t, err, "failed to close output file: disk full")
	assert.NotEmpty(t, sink.String(), "the graph was written before Close")
}

func TestApp_RunPreservesFetchNodes(t *testing.T) {
	dir := writePipeline(t)
	a, out, _ := SetupAppTest(t, Config{GraphPaths: []string{dir}, Fetch: []string{"map2"}})

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.TotalChanges())

	g, err := hcl_adapter.NewLoader().LoadBytes(context.Background(), []byte(out.String()), "out.hcl")
	require.NoError(t, err)
	assert.True(t, graphutil.ContainsGraphNodeWithName("map1", g))
	assert.True(t, graphutil.ContainsGraphNodeWithName("map2", g))
}

func TestApp_RunRespectsMaxIterations(t *testing.T) {
	dir := writePipeline(t)
	a, _, _ := SetupAppTest(t, Config{GraphPaths: []string{dir}, MaxIterations: 1})

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalChanges())
}

func TestApp_RunErrors(t *testing.T) {
	t.Run("unknown fetch node", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{GraphPaths: []string{writePipeline(t)}, Fetch: []string{"nope"}})
		_, err := a.Run(context.Background())
		assert.ErrorContains(t, err, `fetch node "nope" not found`)
	})

	t.Run("empty directory", func(t *testing.T) {
		a, _, _ := SetupAppTest(t, Config{GraphPaths: []string{t.TempDir()}})
		_, err := a.Run(context.Background())
		assert.ErrorContains(t, err, "no graph nodes found")
	})

	t.Run("malformed graph", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "g.hcl"), []byte(`
node "m" {
  op     = "MapDataset"
  inputs = ["missing"]
}
`), 0o644))
		a, _, _ := SetupAppTest(t, Config{GraphPaths: []string{dir}})
		_, err := a.Run(context.Background())
		assert.ErrorIs(t, err, mapfusion.ErrMalformedGraph)
	})
}

func TestApp_Validate(t *testing.T) {
	a, out, logs := SetupAppTest(t, Config{GraphPaths: []string{writePipeline(t)}})
	require.NoError(t, a.Validate(context.Background()))
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "Graph is valid.")
	assert.Contains(t, logs.String(), "map_nodes=2")
}

func TestNewApp_UnknownPass(t *testing.T) {
	cfg, err := NewConfig(Config{
		GraphPaths: []string{"."},
		LogFormat:  "text",
		LogLevel:   "info",
		Passes:     []string{"map_fusion", "loop_unrolling"},
	})
	require.NoError(t, err)

	_, err = NewApp(&SafeBuffer{}, &SafeBuffer{}, cfg)
	assert.ErrorContains(t, err, `unknown optimizer pass "loop_unrolling"`)
}
