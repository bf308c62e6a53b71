package mapfusion

import (
	"context"
	"testing"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphindex"
	"github.com/specialistvlad/mapfuse/internal/graphutil/graphtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detect(t *testing.T, g *graphdef.Graph, preserve map[string]struct{}, rejected map[edge]struct{}) []chain {
	t.Helper()
	ix, err := graphindex.Build(g)
	require.NoError(t, err)
	d := &chainDetector{
		g:         g,
		ix:        ix,
		preserve:  preserve,
		rejected:  rejected,
		recursion: newRecursionCache(g.Library),
	}
	return d.findChains(context.Background())
}

func TestFindChains(t *testing.T) {
	nodes := append(graphtest.RangeNodes(),
		graphtest.MakeMapNode("a1", "range"),
		graphtest.MakeMapNode("a2", "a1"),
		graphtest.MakeMapNode("a3", "a2"),
		graphtest.NDef("split", "Identity", []string{"a3"}, nil),
		graphtest.MakeMapNode("b1", "split"),
		graphtest.MakeMapNode("b2", "b1"),
		graphtest.MakeMapNode("lonely", "range"),
	)
	g := graphtest.GDef(t, nodes, []*graphdef.FunctionDef{graphtest.XTimesTwo()})

	chains := detect(t, g, nil, nil)

	assert.Equal(t, []chain{{"a1", "a2", "a3"}, {"b1", "b2"}}, chains)
}

func TestFindChains_RejectedEdgeSplitsChain(t *testing.T) {
	nodes := append(graphtest.RangeNodes(),
		graphtest.MakeMapNode("m1", "range"),
		graphtest.MakeMapNode("m2", "m1"),
		graphtest.MakeMapNode("m3", "m2"),
		graphtest.MakeMapNode("m4", "m3"),
	)
	g := graphtest.GDef(t, nodes, []*graphdef.FunctionDef{graphtest.XTimesTwo()})

	chains := detect(t, g, nil, map[edge]struct{}{{from: "m2", to: "m3"}: {}})

	assert.Equal(t, []chain{{"m1", "m2"}, {"m3", "m4"}}, chains)
}

func TestFindChains_DuplicateReferenceIsNotAChain(t *testing.T) {
	// b consumes a twice, once as a captured argument.
	nodes := append(graphtest.RangeNodes(),
		graphtest.MakeMapNode("a", "range"),
		graphtest.MakeCapturingMapNode("b", "a", "a", "XPlusY"),
	)
	g := graphtest.GDef(t, nodes, []*graphdef.FunctionDef{graphtest.XTimesTwo(), graphtest.XPlusY()})

	assert.Empty(t, detect(t, g, nil, nil))
}

func TestFindChains_PreservedMemberBreaksChain(t *testing.T) {
	nodes := append(graphtest.RangeNodes(),
		graphtest.MakeMapNode("m1", "range"),
		graphtest.MakeMapNode("m2", "m1"),
		graphtest.MakeMapNode("m3", "m2"),
		graphtest.MakeMapNode("m4", "m3"),
	)
	g := graphtest.GDef(t, nodes, []*graphdef.FunctionDef{graphtest.XTimesTwo()})

	chains := detect(t, g, map[string]struct{}{"m2": {}}, nil)

	assert.Equal(t, []chain{{"m3", "m4"}}, chains)
}
