package graphdef

import (
	"fmt"
	"slices"
)

// Graph is an ordered collection of nodes plus the function library they
// reference.
type Graph struct {
	// nodes keeps insertion order, which loaders and writers preserve.
	nodes []*Node
	// byName indexes nodes by their unique name.
	byName map[string]*Node
	// Library holds the functions referenced from node attributes.
	Library *Library
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		byName:  make(map[string]*Node),
		Library: NewLibrary(),
	}
}

// AddNode appends a node. An error is returned if the name is empty or
// already taken.
func (g *Graph) AddNode(n *Node) error {
	if n.Name == "" {
		return fmt.Errorf("node name cannot be empty")
	}
	if _, exists := g.byName[n.Name]; exists {
		return fmt.Errorf("node %q already exists in graph", n.Name)
	}
	g.nodes = append(g.nodes, n)
	g.byName[n.Name] = n
	return nil
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Nodes returns a snapshot of all nodes in insertion order. The slice is
// safe to iterate while the graph is mutated.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// RemoveNodes deletes the named nodes. Unknown names are ignored. References
// held by other nodes are not touched; callers validate afterwards.
func (g *Graph) RemoveNodes(names ...string) {
	if len(names) == 0 {
		return
	}
	doomed := make(map[string]struct{}, len(names))
	for _, name := range names {
		doomed[name] = struct{}{}
		delete(g.byName, name)
	}
	g.nodes = slices.DeleteFunc(g.nodes, func(n *Node) bool {
		_, ok := doomed[n.Name]
		return ok
	})
}

// Clone returns a deep copy of the graph and its library.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		nodes:   make([]*Node, 0, len(g.nodes)),
		byName:  make(map[string]*Node, len(g.nodes)),
		Library: g.Library.Clone(),
	}
	for _, n := range g.nodes {
		c := n.Clone()
		out.nodes = append(out.nodes, c)
		out.byName[c.Name] = c
	}
	return out
}

// ReplaceWith overwrites g in place with the contents of other. It is used to
// commit a rewritten clone back into a caller-owned graph.
func (g *Graph) ReplaceWith(other *Graph) {
	g.nodes = other.nodes
	g.byName = other.byName
	g.Library = other.Library
}
