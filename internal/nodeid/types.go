// internal/nodeid/types.go
package nodeid

// Ref is the structured representation of a graph-level input reference.
type Ref struct {
	Node    string
	Port    int // -1 indicates no explicit port is present.
	Control bool
}

// NewRef creates a data reference to the default output of a node.
func NewRef(node string) Ref {
	return Ref{Node: node, Port: -1}
}

// NewRefWithPort creates a data reference to an explicit output port.
func NewRefWithPort(node string, port int) Ref {
	return Ref{Node: node, Port: port}
}

// NewControlRef creates a control-dependency reference.
func NewControlRef(node string) Ref {
	return Ref{Node: node, Port: -1, Control: true}
}

// HasPort returns true if the reference names an explicit output port.
func (r Ref) HasPort() bool {
	return r.Port != -1
}

// OutputPort returns the effective output port. An implicit port is 0.
func (r Ref) OutputPort() int {
	if r.Port < 0 {
		return 0
	}
	return r.Port
}

// WithNode returns a copy of the reference pointing at another node, keeping
// its port and control-ness.
func (r Ref) WithNode(node string) Ref {
	r.Node = node
	return r
}

// BodyRef is the structured representation of a reference inside a function
// body. A BodyRef with an empty Output and no Control flag names a function
// input argument.
type BodyRef struct {
	Node    string
	Output  string
	Index   int
	Control bool
}

// NewArgRef creates a reference to a function input argument.
func NewArgRef(arg string) BodyRef {
	return BodyRef{Node: arg}
}

// NewOutputRef creates a reference to a named output of a body node.
func NewOutputRef(node, output string, index int) BodyRef {
	return BodyRef{Node: node, Output: output, Index: index}
}

// IsArg returns true if the reference names a function input argument.
func (b BodyRef) IsArg() bool {
	return b.Output == "" && !b.Control
}
