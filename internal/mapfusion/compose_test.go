package mapfusion

import (
	"testing"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphutil/graphtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyNode(t *testing.T, f *graphdef.FunctionDef, name string) *graphdef.Node {
	t.Helper()
	n, ok := f.Node(name)
	require.True(t, ok, "body node %q missing", name)
	return n
}

func TestComposeFunctions_WiresOutputsIntoElementArgs(t *testing.T) {
	f, g := graphtest.XTimesTwo(), graphtest.XTimesFour()

	h, err := composeFunctions(f, g, 0)
	require.NoError(t, err)

	assert.Equal(t, "composed_XTimesTwo_XTimesFour", h.Name())
	assert.Equal(t, f.Signature.InputArgs, h.Signature.InputArgs)
	assert.Equal(t, g.Signature.OutputArgs, h.Signature.OutputArgs)
	require.Len(t, h.Nodes, 4)

	assert.Equal(t, []string{"x", "XTimesTwo_0/two:output:0"}, bodyNode(t, h, "XTimesTwo_0/y").Inputs)
	assert.Equal(t, []string{"XTimesTwo_0/y:z:0", "XTimesFour_1/two:output:0"}, bodyNode(t, h, "XTimesFour_1/y").Inputs)
	assert.Equal(t, map[string]string{"y": "XTimesFour_1/y:z:0"}, h.Ret)

	// The sources are untouched.
	assert.Equal(t, graphtest.XTimesTwo(), f)
	assert.Equal(t, graphtest.XTimesFour(), g)
}

func TestComposeFunctions_SameFunctionTwice(t *testing.T) {
	h, err := composeFunctions(graphtest.XTimesTwo(), graphtest.XTimesTwo(), 0)
	require.NoError(t, err)

	names := make(map[string]struct{})
	for _, n := range h.Nodes {
		names[n.Name] = struct{}{}
	}
	assert.Len(t, names, 4, "stage prefixes keep body node names distinct")

	g := graphdef.New()
	require.NoError(t, g.Library.Add(h))
	assert.NoError(t, graphdef.Validate(g))
}

func TestComposeFunctions_AppendsCapturedArgs(t *testing.T) {
	f, g := graphtest.XPlusY(), graphtest.XPlusY()

	h, err := composeFunctions(f, g, 1)
	require.NoError(t, err)

	assert.Equal(t, []graphdef.ArgDef{
		{Name: "x", Type: graphdef.DTInt64},
		{Name: "y", Type: graphdef.DTInt64},
		{Name: "y_1", Type: graphdef.DTInt64},
	}, h.Signature.InputArgs)
	assert.Equal(t, []string{"x", "y"}, bodyNode(t, h, "XPlusY_0/add").Inputs)
	assert.Equal(t, []string{"XPlusY_0/add:z:0", "y_1"}, bodyNode(t, h, "XPlusY_1/add").Inputs)
	assert.Equal(t, map[string]string{"sum": "XPlusY_1/add:z:0"}, h.Ret)
}

func TestComposeFunctions_PassThroughReturn(t *testing.T) {
	// Pair returns its argument directly, so g's element args bind to "x".
	h, err := composeFunctions(graphtest.XTimesTwo(), graphtest.Pair(), 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "XTimesTwo_0/y:z:0", "b": "XTimesTwo_0/y:z:0"}, h.Ret)
}

func TestComposeFunctions_ArityMismatch(t *testing.T) {
	testCases := []struct {
		name      string
		f, g      *graphdef.FunctionDef
		gCaptured int
	}{
		{name: "two outputs into one element", f: graphtest.Pair(), g: graphtest.XTimesTwo()},
		{name: "captures exceed inputs", f: graphtest.XTimesTwo(), g: graphtest.XTimesTwo(), gCaptured: 2},
		{name: "one output into two elements", f: graphtest.XTimesTwo(), g: graphtest.XPlusY()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := composeFunctions(tc.f, tc.g, tc.gCaptured)
			assert.ErrorIs(t, err, ErrArityMismatch)
		})
	}
}

func TestComposeFunctions_MissingReturn(t *testing.T) {
	f := graphtest.XTimesTwo()
	f.Ret = nil

	_, err := composeFunctions(f, graphtest.XTimesTwo(), 0)
	assert.ErrorContains(t, err, `output "y" has no return value`)
}
