package graphdef

import (
	"slices"

	"github.com/specialistvlad/mapfuse/internal/nodeid"
)

// Node is a single vertex in the computation graph.
type Node struct {
	// Name is unique within the owning graph (or function body).
	Name string
	// Op is the operation-type tag, e.g. "MapDataset".
	Op string
	// Inputs are ordered references to producer outputs, followed by any
	// `^control` references.
	Inputs []string
	// Device is an optional placement hint.
	Device string
	// Attrs maps attribute names to typed values.
	Attrs map[string]AttrValue
}

// Attr returns the named attribute.
func (n *Node) Attr(key string) (AttrValue, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// SetAttr sets the named attribute, allocating the map on first use.
func (n *Node) SetAttr(key string, v AttrValue) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]AttrValue)
	}
	n.Attrs[key] = v
}

// DataInputs returns the inputs that carry data, in positional order.
func (n *Node) DataInputs() []string {
	out := make([]string, 0, len(n.Inputs))
	for _, in := range n.Inputs {
		if !nodeid.IsControl(in) {
			out = append(out, in)
		}
	}
	return out
}

// ControlInputs returns the `^control` inputs.
func (n *Node) ControlInputs() []string {
	var out []string
	for _, in := range n.Inputs {
		if nodeid.IsControl(in) {
			out = append(out, in)
		}
	}
	return out
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	return &Node{
		Name:   n.Name,
		Op:     n.Op,
		Inputs: slices.Clone(n.Inputs),
		Device: n.Device,
		Attrs:  cloneAttrs(n.Attrs),
	}
}

// FuncNames returns every function referenced by the node's attributes, in
// deterministic (attribute-key) order.
func (n *Node) FuncNames() []string {
	var names []string
	for _, k := range sortedKeys(n.Attrs) {
		names = append(names, n.Attrs[k].FuncNames()...)
	}
	return names
}
