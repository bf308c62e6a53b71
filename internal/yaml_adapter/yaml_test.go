package yaml_adapter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphutil/graphtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineYAML = `
nodes:
  - name: range
    op: RangeDataset
    attrs:
      output_types: {list: [{type: int64}]}
      output_shapes: {list: [{shape: {}}]}
  - name: map
    op: MapDataset
    inputs: [range]
    attrs:
      f: {func: {name: XTimesTwo}}
      Targuments: {list: []}
      preserve_cardinality: {b: true}
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

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graph.yaml"), []byte(pipelineYAML), 0o644))

	g, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, graphdef.Validate(g))

	m, ok := g.Node("map")
	require.True(t, ok)
	want := map[string]graphdef.AttrValue{
		"f":                    graphdef.Func("XTimesTwo", nil),
		"Targuments":           graphdef.List(),
		"preserve_cardinality": graphdef.Bool(true),
	}
	assert.Empty(t, cmp.Diff(want, m.Attrs, cmpopts.EquateEmpty()))

	f, ok := g.Library.Find("XTimesTwo")
	require.True(t, ok)
	assert.Equal(t, graphtest.XTimesTwo().Signature, f.Signature)
}

func TestLoader_RejectsAmbiguousAttr(t *testing.T) {
	_, err := NewLoader().LoadBytes(context.Background(), []byte(`
nodes:
  - name: a
    op: NoOp
    attrs:
      x: {s: hello, i: 1}
`))
	assert.ErrorContains(t, err, "exactly one kind")
}

func TestWriter_RoundTrip(t *testing.T) {
	nodes := append(graphtest.RangeNodes(),
		graphtest.ScalarConst("npc", 4),
		graphtest.MakeParallelMapNode("map1", "range", "npc", "XTimesTwo", true),
		graphtest.MakeCapturingMapNode("map2", "map1", "npc", "XPlusY"),
	)
	nodes[len(nodes)-1].Attrs["empty"] = graphdef.String("")
	nodes[len(nodes)-1].Attrs["dims"] = graphdef.UnknownShape()
	g := graphtest.GDef(t, nodes, []*graphdef.FunctionDef{graphtest.XTimesTwo(), graphtest.XPlusY()})

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(context.Background(), &buf, g))

	loaded, err := NewLoader().LoadBytes(context.Background(), buf.Bytes())
	require.NoError(t, err, buf.String())

	opts := cmpopts.EquateEmpty()
	for _, want := range g.Nodes() {
		got, ok := loaded.Node(want.Name)
		require.True(t, ok, want.Name)
		assert.Empty(t, cmp.Diff(want, got, opts), want.Name)
	}
	for _, name := range g.Library.Names() {
		want, _ := g.Library.Find(name)
		got, ok := loaded.Library.Find(name)
		require.True(t, ok, name)
		assert.Empty(t, cmp.Diff(want, got, opts), name)
	}
}
