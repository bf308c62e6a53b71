// Package graphindex builds read-only lookup tables over a graphdef.Graph:
// node-by-name and, for every node, who consumes its outputs.
//
// An Index is a snapshot. Any mutation of the graph makes it stale, and a
// stale fan-out count is enough to fuse a node that another consumer still
// observes. Callers rebuild after every rewrite round.
package graphindex

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/nodeid"
)

// Consumer is one data edge into a node.
type Consumer struct {
	// Node is the consuming node's name.
	Node string
	// Position is the index into the consumer's Inputs slice.
	Position int
	// Port is the producer output observed by the edge.
	Port int
}

// Index holds name and consumer lookups for one graph snapshot.
type Index struct {
	byName           map[string]*graphdef.Node
	consumers        map[string][]Consumer
	controlConsumers map[string][]string
}

// Build indexes the graph. An error is returned if any input reference is
// malformed.
func Build(g *graphdef.Graph) (*Index, error) {
	ix := &Index{
		byName:           make(map[string]*graphdef.Node, g.Len()),
		consumers:        make(map[string][]Consumer),
		controlConsumers: make(map[string][]string),
	}
	for _, n := range g.Nodes() {
		ix.byName[n.Name] = n
	}
	for _, n := range g.Nodes() {
		for pos, in := range n.Inputs {
			ref, err := nodeid.Parse(in)
			if err != nil {
				return nil, fmt.Errorf("indexing node %q: %w", n.Name, err)
			}
			if ref.Control {
				if !slices.Contains(ix.controlConsumers[ref.Node], n.Name) {
					ix.controlConsumers[ref.Node] = append(ix.controlConsumers[ref.Node], n.Name)
				}
				continue
			}
			ix.consumers[ref.Node] = append(ix.consumers[ref.Node], Consumer{
				Node:     n.Name,
				Position: pos,
				Port:     ref.OutputPort(),
			})
		}
	}
	return ix, nil
}

// Node returns the node with the given name.
func (ix *Index) Node(name string) (*graphdef.Node, bool) {
	n, ok := ix.byName[name]
	return n, ok
}

// Consumers returns every data edge out of the node, in graph order.
func (ix *Index) Consumers(name string) []Consumer {
	return slices.Clone(ix.consumers[name])
}

// ControlConsumers returns the names of nodes holding a `^name` input.
func (ix *Index) ControlConsumers(name string) []string {
	return slices.Clone(ix.controlConsumers[name])
}

// FanOut returns the number of distinct nodes consuming any data output of
// the node.
func (ix *Index) FanOut(name string) int {
	seen := make(map[string]struct{})
	for _, c := range ix.consumers[name] {
		seen[c.Node] = struct{}{}
	}
	return len(seen)
}

// SoleConsumer returns the consuming node when exactly one distinct node
// consumes the node's data outputs.
func (ix *Index) SoleConsumer(name string) (*graphdef.Node, bool) {
	if ix.FanOut(name) != 1 {
		return nil, false
	}
	return ix.Node(ix.consumers[name][0].Node)
}

// IsReferenced reports whether any node holds a data or control reference to
// the node.
func (ix *Index) IsReferenced(name string) bool {
	return len(ix.consumers[name]) > 0 || len(ix.controlConsumers[name]) > 0
}
