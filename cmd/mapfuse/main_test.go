package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/mapfuse/internal/cli"
	"github.com/stretchr/testify/require"
)

const pipelineYAML = `
nodes:
  - name: range
    op: RangeDataset
    attrs:
      output_types: {list: [{type: int64}]}
      output_shapes: {list: [{shape: {}}]}
  - name: map1
    op: MapDataset
    inputs: [range]
    attrs:
      f: {func: {name: XTimesTwo}}
      Targuments: {list: []}
  - name: map2
    op: MapDataset
    inputs: [map1]
    attrs:
      f: {func: {name: XTimesTwo}}
      Targuments: {list: []}
functions:
  - name: XTimesTwo
    inputs: [{name: x, type: int64}]
    outputs: [{name: y, type: int64}]
    nodes:
      - name: two
        op: Const
        attrs:
          value: {tensor: {dtype: int64, int64_val: [2]}}
      - name: y
        op: Mul
        inputs: [x, "two:output:0"]
    ret: {y: "y:z:0"}
`

func writeGraph(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "failed to set up test file")
	return path
}

func TestRun_Optimize(t *testing.T) {
	t.Parallel()

	path := writeGraph(t, "pipeline.yaml", pipelineYAML)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(out, errOut, []string{"optimize", path, "--output-format", "yaml"})

	require.NoError(t, err, errOut.String())
	require.Contains(t, out.String(), "name: fused_map1_map2")
	require.Contains(t, out.String(), "name: composed_XTimesTwo_XTimesTwo")
	require.Contains(t, errOut.String(), "Optimization finished.")
}

func TestRun_Validate(t *testing.T) {
	t.Parallel()

	path := writeGraph(t, "pipeline.yml", pipelineYAML)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(out, errOut, []string{"validate", path})

	require.NoError(t, err)
	require.Empty(t, out.String())
	require.Contains(t, errOut.String(), "Graph is valid.")
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	// A block missing its closing brace fails in the HCL parser.
	path := writeGraph(t, "main.hcl", `
node "map" {
  op = "MapDataset"
`)

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"optimize", path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	errOut := &bytes.Buffer{}
	err := run(&bytes.Buffer{}, errOut, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, errOut.String(), "Usage:", "Expected help text to be printed to the error output")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"optimize", "--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
