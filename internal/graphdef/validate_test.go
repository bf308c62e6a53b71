package graphdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityFunction(name string) *FunctionDef {
	return &FunctionDef{
		Signature: Signature{
			Name:       name,
			InputArgs:  []ArgDef{{Name: "x", Type: DTInt64}},
			OutputArgs: []ArgDef{{Name: "y", Type: DTInt64}},
		},
		Nodes: []*Node{{Name: "id", Op: "Identity", Inputs: []string{"x"}}},
		Ret:   map[string]string{"y": "id:output:0"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("consistent graph", func(t *testing.T) {
		g := New()
		require.NoError(t, g.Library.Add(identityFunction("Id")))
		require.NoError(t, g.AddNode(&Node{Name: "range", Op: "RangeDataset"}))
		require.NoError(t, g.AddNode(&Node{
			Name:   "map",
			Op:     "MapDataset",
			Inputs: []string{"range", "^range"},
			Attrs:  map[string]AttrValue{"f": Func("Id", nil)},
		}))
		assert.NoError(t, Validate(g))
	})

	t.Run("dangling input", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode(&Node{Name: "map", Op: "MapDataset", Inputs: []string{"gone"}}))
		assert.ErrorIs(t, Validate(g), ErrDanglingReference)
	})

	t.Run("dangling function", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode(&Node{
			Name:  "map",
			Op:    "MapDataset",
			Attrs: map[string]AttrValue{"f": Func("Missing", nil)},
		}))
		assert.ErrorIs(t, Validate(g), ErrDanglingReference)
	})

	t.Run("malformed function body", func(t *testing.T) {
		g := New()
		f := identityFunction("Broken")
		f.Ret["y"] = "nope:output:0"
		require.NoError(t, g.Library.Add(f))
		err := Validate(g)
		assert.ErrorIs(t, err, ErrDanglingReference)
		assert.ErrorContains(t, err, "Broken")
	})

	t.Run("missing return value", func(t *testing.T) {
		g := New()
		f := identityFunction("NoRet")
		f.Ret = map[string]string{}
		require.NoError(t, g.Library.Add(f))
		assert.ErrorContains(t, Validate(g), "has no return value")
	})

	t.Run("cycle", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddNode(&Node{Name: "a", Op: "Identity", Inputs: []string{"c"}}))
		require.NoError(t, g.AddNode(&Node{Name: "b", Op: "Identity", Inputs: []string{"a"}}))
		require.NoError(t, g.AddNode(&Node{Name: "c", Op: "Identity", Inputs: []string{"^b"}}))
		assert.ErrorIs(t, Validate(g), ErrCycle)
	})
}
