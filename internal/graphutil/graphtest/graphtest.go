// Package graphtest provides builders for small dataset graphs and functions
// used across package tests.
package graphtest

import (
	"testing"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphutil"
	"github.com/stretchr/testify/require"
)

// NDef builds a node.
func NDef(name, op string, inputs []string, attrs map[string]graphdef.AttrValue) *graphdef.Node {
	return &graphdef.Node{Name: name, Op: op, Inputs: inputs, Attrs: attrs}
}

// GDef assembles a graph from nodes and library functions, failing the test
// on duplicate names.
func GDef(t *testing.T, nodes []*graphdef.Node, funcs []*graphdef.FunctionDef) *graphdef.Graph {
	t.Helper()
	g := graphdef.New()
	for _, n := range nodes {
		require.NoError(t, g.AddNode(n))
	}
	for _, f := range funcs {
		require.NoError(t, g.Library.Add(f))
	}
	return g
}

// ScalarConst builds a scalar int64 Const node.
func ScalarConst(name string, value int64) *graphdef.Node {
	return NDef(name, graphutil.ConstOp, nil, map[string]graphdef.AttrValue{
		"dtype": graphdef.Type(graphdef.DTInt64),
		"value": graphdef.TensorValue(graphdef.Tensor{
			DType:    graphdef.DTInt64,
			Int64Val: []int64{value},
		}),
	})
}

// RangeNodes returns start/stop/step constants and a RangeDataset named "range".
func RangeNodes() []*graphdef.Node {
	return []*graphdef.Node{
		ScalarConst("start", 0),
		ScalarConst("stop", 10),
		ScalarConst("step", 1),
		NDef("range", graphutil.RangeDatasetOp, []string{"start", "stop", "step"}, map[string]graphdef.AttrValue{
			graphutil.OutputTypesAttr:  graphdef.TypeList(graphdef.DTInt64),
			graphutil.OutputShapesAttr: graphdef.ShapeList(graphdef.Shape{}),
		}),
	}
}

func mapAttrs(fn string, captured []graphdef.DataType) map[string]graphdef.AttrValue {
	return map[string]graphdef.AttrValue{
		"f":                        graphdef.Func(fn, nil),
		"Targuments":               graphdef.TypeList(captured...),
		graphutil.OutputTypesAttr:  graphdef.TypeList(graphdef.DTInt64),
		graphutil.OutputShapesAttr: graphdef.ShapeList(graphdef.Shape{}),
		"use_inter_op_parallelism": graphdef.Bool(true),
		"preserve_cardinality":     graphdef.Bool(true),
	}
}

// MakeMapNode builds a MapDataset applying XTimesTwo to the input dataset.
func MakeMapNode(name, input string) *graphdef.Node {
	return MakeMapNodeWithFunc(name, input, "XTimesTwo")
}

// MakeMapNodeWithFunc builds a MapDataset applying fn to the input dataset.
func MakeMapNodeWithFunc(name, input, fn string) *graphdef.Node {
	return NDef(name, graphutil.MapDatasetOp, []string{input}, mapAttrs(fn, nil))
}

// MakeCapturingMapNode builds a MapDataset whose function captures one int64
// argument fed from the captured node.
func MakeCapturingMapNode(name, input, captured, fn string) *graphdef.Node {
	return NDef(name, graphutil.MapDatasetOp, []string{input, captured}, mapAttrs(fn, []graphdef.DataType{graphdef.DTInt64}))
}

// MakeParallelMapNode builds a ParallelMapDataset (sloppy flag variant).
func MakeParallelMapNode(name, input, numParallelCalls, fn string, sloppy bool) *graphdef.Node {
	attrs := mapAttrs(fn, nil)
	attrs["sloppy"] = graphdef.Bool(sloppy)
	return NDef(name, graphutil.ParallelMapDatasetOp, []string{input, numParallelCalls}, attrs)
}

// MakeParallelMapV2Node builds a ParallelMapDatasetV2 with the given
// `deterministic` setting ("true", "false" or "default").
func MakeParallelMapV2Node(name, input, numParallelCalls, fn, deterministic string) *graphdef.Node {
	attrs := mapAttrs(fn, nil)
	attrs["deterministic"] = graphdef.String(deterministic)
	return NDef(name, graphutil.ParallelMapDatasetV2Op, []string{input, numParallelCalls}, attrs)
}

// XTimesTwo returns the function x -> x * 2 over int64.
func XTimesTwo() *graphdef.FunctionDef {
	return scaleFunction("XTimesTwo", 2)
}

// XTimesFour returns the function x -> x * 4 over int64.
func XTimesFour() *graphdef.FunctionDef {
	return scaleFunction("XTimesFour", 4)
}

func scaleFunction(name string, factor int64) *graphdef.FunctionDef {
	return &graphdef.FunctionDef{
		Signature: graphdef.Signature{
			Name:       name,
			InputArgs:  []graphdef.ArgDef{{Name: "x", Type: graphdef.DTInt64}},
			OutputArgs: []graphdef.ArgDef{{Name: "y", Type: graphdef.DTInt64}},
		},
		Nodes: []*graphdef.Node{
			NDef("two", graphutil.ConstOp, nil, map[string]graphdef.AttrValue{
				"dtype": graphdef.Type(graphdef.DTInt64),
				"value": graphdef.TensorValue(graphdef.Tensor{DType: graphdef.DTInt64, Int64Val: []int64{factor}}),
			}),
			NDef("y", "Mul", []string{"x", "two:output:0"}, map[string]graphdef.AttrValue{
				"T": graphdef.Type(graphdef.DTInt64),
			}),
		},
		Ret: map[string]string{"y": "y:z:0"},
	}
}

// XPlusY returns the capturing function (x, y) -> x + y, where y is captured.
func XPlusY() *graphdef.FunctionDef {
	return &graphdef.FunctionDef{
		Signature: graphdef.Signature{
			Name: "XPlusY",
			InputArgs: []graphdef.ArgDef{
				{Name: "x", Type: graphdef.DTInt64},
				{Name: "y", Type: graphdef.DTInt64},
			},
			OutputArgs: []graphdef.ArgDef{{Name: "sum", Type: graphdef.DTInt64}},
		},
		Nodes: []*graphdef.Node{
			NDef("add", "AddV2", []string{"x", "y"}, map[string]graphdef.AttrValue{
				"T": graphdef.Type(graphdef.DTInt64),
			}),
		},
		Ret: map[string]string{"sum": "add:z:0"},
	}
}

// Pair returns x -> (x, x), a two-output function.
func Pair() *graphdef.FunctionDef {
	return &graphdef.FunctionDef{
		Signature: graphdef.Signature{
			Name:      "Pair",
			InputArgs: []graphdef.ArgDef{{Name: "x", Type: graphdef.DTInt64}},
			OutputArgs: []graphdef.ArgDef{
				{Name: "a", Type: graphdef.DTInt64},
				{Name: "b", Type: graphdef.DTInt64},
			},
		},
		Ret: map[string]string{"a": "x", "b": "x"},
	}
}
