// Package graphutil collects small, generic helpers over graphdef graphs that
// optimizer passes share: lookup by name or op, unique naming, and attribute
// copying.
package graphutil

import (
	"fmt"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
)

// Attribute keys shared by dataset ops.
const (
	OutputTypesAttr  = "output_types"
	OutputShapesAttr = "output_shapes"
)

// ContainsGraphNodeWithName reports whether the graph has a node with the name.
func ContainsGraphNodeWithName(name string, g *graphdef.Graph) bool {
	_, ok := g.Node(name)
	return ok
}

// ContainsNodeWithOp reports whether any node in the graph has the op.
func ContainsNodeWithOp(op string, g *graphdef.Graph) bool {
	return len(FindAllGraphNodesWithOp(op, g)) > 0
}

// ContainsGraphFunctionWithName reports whether the library has the function.
func ContainsGraphFunctionWithName(name string, lib *graphdef.Library) bool {
	return lib.Contains(name)
}

// FindAllGraphNodesWithOp returns every node with the op, in graph order.
func FindAllGraphNodesWithOp(op string, g *graphdef.Graph) []*graphdef.Node {
	var out []*graphdef.Node
	for _, n := range g.Nodes() {
		if n.Op == op {
			out = append(out, n)
		}
	}
	return out
}

// SetUniqueGraphNodeName names the node `prefix`, or `prefix_<k>` for the
// smallest k that is free in the graph.
func SetUniqueGraphNodeName(prefix string, g *graphdef.Graph, n *graphdef.Node) {
	n.Name = uniqueName(prefix, func(name string) bool {
		_, taken := g.Node(name)
		return taken
	})
}

// SetUniqueGraphFunctionName names the function `prefix`, or `prefix_<k>` for
// the smallest k that is free in the library.
func SetUniqueGraphFunctionName(prefix string, lib *graphdef.Library, f *graphdef.FunctionDef) {
	f.Signature.Name = uniqueName(prefix, lib.Contains)
}

func uniqueName(prefix string, taken func(string) bool) string {
	if !taken(prefix) {
		return prefix
	}
	for k := 1; ; k++ {
		candidate := fmt.Sprintf("%s_%d", prefix, k)
		if !taken(candidate) {
			return candidate
		}
	}
}

// CopyAttribute copies one attribute, if present, from one node to another.
func CopyAttribute(key string, from, to *graphdef.Node) {
	if v, ok := from.Attr(key); ok {
		to.SetAttr(key, v.Clone())
	}
}

// CopyShapesAndTypesAttrs copies `output_types` and `output_shapes`.
func CopyShapesAndTypesAttrs(from, to *graphdef.Node) {
	CopyAttribute(OutputTypesAttr, from, to)
	CopyAttribute(OutputShapesAttr, from, to)
}

// FuncAttrName returns the name of the function held in a func attribute.
func FuncAttrName(n *graphdef.Node, key string) (string, bool) {
	v, ok := n.Attr(key)
	if !ok || v.Kind != graphdef.KindFunc || v.Func == nil || v.Func.Name == "" {
		return "", false
	}
	return v.Func.Name, true
}

// ListLen returns the length of a list attribute, or 0 when absent.
func ListLen(n *graphdef.Node, key string) int {
	v, ok := n.Attr(key)
	if !ok || v.Kind != graphdef.KindList {
		return 0
	}
	return len(v.List)
}

// BoolAttr returns a bool attribute, or def when absent.
func BoolAttr(n *graphdef.Node, key string, def bool) bool {
	v, ok := n.Attr(key)
	if !ok || v.Kind != graphdef.KindBool {
		return def
	}
	return v.B
}

// StringAttr returns a string attribute, or def when absent.
func StringAttr(n *graphdef.Node, key string, def string) string {
	v, ok := n.Attr(key)
	if !ok || v.Kind != graphdef.KindString {
		return def
	}
	return v.S
}
