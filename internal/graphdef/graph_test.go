package graphdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.Zero(t, g.Len())
	require.NotNil(t, g.Library)
	assert.Zero(t, g.Library.Len())
}

func TestAddNode(t *testing.T) {
	g := New()

	require.NoError(t, g.AddNode(&Node{Name: "a", Op: "Const"}))
	require.NoError(t, g.AddNode(&Node{Name: "b", Op: "Identity", Inputs: []string{"a"}}))
	assert.Equal(t, 2, g.Len())

	err := g.AddNode(&Node{Name: "a", Op: "Const"})
	assert.ErrorContains(t, err, "already exists")

	err = g.AddNode(&Node{Op: "Const"})
	assert.ErrorContains(t, err, "cannot be empty")

	names := make([]string, 0, g.Len())
	for _, n := range g.Nodes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"a", "b"}, names, "insertion order is preserved")
}

func TestRemoveNodes(t *testing.T) {
	g := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, g.AddNode(&Node{Name: name, Op: "NoOp"}))
	}

	g.RemoveNodes("b", "d", "missing")

	_, ok := g.Node("b")
	assert.False(t, ok)
	_, ok = g.Node("a")
	assert.True(t, ok)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, "c", g.Nodes()[1].Name)
}

func TestClone_IsDeep(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(&Node{
		Name:   "map",
		Op:     "MapDataset",
		Inputs: []string{"range"},
		Attrs: map[string]AttrValue{
			"f":            Func("F", nil),
			"output_types": TypeList(DTInt64),
		},
	}))
	require.NoError(t, g.Library.Add(&FunctionDef{
		Signature: Signature{Name: "F", InputArgs: []ArgDef{{Name: "x", Type: DTInt64}}},
		Ret:       map[string]string{},
	}))

	c := g.Clone()
	n, _ := c.Node("map")
	n.Inputs[0] = "other"
	n.Attrs["f"].Func.Name = "G"
	n.Attrs["output_types"].List[0] = Type(DTString)
	f, _ := c.Library.Find("F")
	f.Signature.InputArgs[0].Name = "y"

	orig, _ := g.Node("map")
	assert.Equal(t, "range", orig.Inputs[0])
	assert.Equal(t, "F", orig.Attrs["f"].Func.Name)
	assert.Equal(t, DTInt64, orig.Attrs["output_types"].List[0].Type)
	origF, _ := g.Library.Find("F")
	assert.Equal(t, "x", origF.Signature.InputArgs[0].Name)
}

func TestReplaceWith(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(&Node{Name: "a", Op: "Const"}))

	other := New()
	require.NoError(t, other.AddNode(&Node{Name: "z", Op: "Const"}))

	g.ReplaceWith(other)
	_, ok := g.Node("a")
	assert.False(t, ok)
	_, ok = g.Node("z")
	assert.True(t, ok)
}

func TestNode_InputPartitions(t *testing.T) {
	n := &Node{Name: "m", Inputs: []string{"range", "cap", "^init", "npc", "^other"}}
	assert.Equal(t, []string{"range", "cap", "npc"}, n.DataInputs())
	assert.Equal(t, []string{"^init", "^other"}, n.ControlInputs())
}

func TestAttrValue_FuncNames(t *testing.T) {
	v := List(
		Func("outer", map[string]AttrValue{
			"then_branch": Func("inner", nil),
			"T":           Type(DTInt32),
		}),
		String("ignored"),
		Func("second", nil),
	)
	assert.Equal(t, []string{"outer", "inner", "second"}, v.FuncNames())
}

func TestShape_String(t *testing.T) {
	assert.Equal(t, "[]", Shape{}.String())
	assert.Equal(t, "[2,?]", Shape{Dims: []int64{2, -1}}.String())
	assert.Equal(t, "<unknown>", Shape{UnknownRank: true}.String())
}
