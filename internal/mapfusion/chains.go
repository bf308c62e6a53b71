package mapfusion

import (
	"context"
	"fmt"

	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphindex"
	"github.com/specialistvlad/mapfuse/internal/graphutil"
	"github.com/specialistvlad/mapfuse/internal/nodeid"
)

// chain is an ordered run of map nodes, head first, in which each node is the
// sole consumer of its predecessor.
type chain []string

func (c chain) head() string { return c[0] }
func (c chain) tail() string { return c[len(c)-1] }

// edge identifies a producer/consumer pair of map nodes.
type edge struct {
	from, to string
}

func (e edge) String() string { return e.from + "->" + e.to }

// chainDetector finds fusable chains in one graph snapshot.
type chainDetector struct {
	g         *graphdef.Graph
	ix        *graphindex.Index
	preserve  map[string]struct{}
	rejected  map[edge]struct{}
	recursion *recursionCache
}

// findChains returns maximal, pairwise disjoint chains of length >= 2 in
// graph order of their heads.
func (d *chainDetector) findChains(ctx context.Context) []chain {
	logger := ctxlog.FromContext(ctx)

	var out []chain
	visited := make(map[string]struct{})
	for _, n := range d.g.Nodes() {
		if !graphutil.IsMapFamily(n.Op) {
			continue
		}
		if _, seen := visited[n.Name]; seen {
			continue
		}
		if producer, ok := d.producer(n); ok {
			if err := d.canFuse(producer, n); err == nil {
				// n is interior; the walk from its head picks it up.
				continue
			}
		}

		c := chain{n.Name}
		visited[n.Name] = struct{}{}
		cur := n
		for {
			next, ok := d.ix.SoleConsumer(cur.Name)
			if !ok {
				break
			}
			if err := d.canFuse(cur, next); err != nil {
				if graphutil.IsMapFamily(next.Op) {
					logger.Debug("Map pair not fusable.", "producer", cur.Name, "consumer", next.Name, "reason", err)
				}
				break
			}
			if _, seen := visited[next.Name]; seen {
				break
			}
			c = append(c, next.Name)
			visited[next.Name] = struct{}{}
			cur = next
		}
		if len(c) >= 2 {
			out = append(out, c)
		}
	}
	return out
}

// producer returns the node feeding the map node's dataset input.
func (d *chainDetector) producer(n *graphdef.Node) (*graphdef.Node, bool) {
	if len(n.Inputs) == 0 {
		return nil, false
	}
	ref, err := nodeid.Parse(n.Inputs[0])
	if err != nil || ref.Control {
		return nil, false
	}
	return d.ix.Node(ref.Node)
}

// canFuse returns nil when b may be fused onto a, or an error describing the
// first violated condition.
func (d *chainDetector) canFuse(a, b *graphdef.Node) error {
	if !graphutil.IsMapFamily(a.Op) || !graphutil.IsMapFamily(b.Op) {
		return fmt.Errorf("not a map pair")
	}
	if a.Op != b.Op {
		return fmt.Errorf("variant mismatch: %s vs %s", a.Op, b.Op)
	}
	if _, ok := d.preserve[a.Name]; ok {
		return fmt.Errorf("node %q is preserved", a.Name)
	}
	if _, ok := d.preserve[b.Name]; ok {
		return fmt.Errorf("node %q is preserved", b.Name)
	}
	if _, ok := d.rejected[edge{a.Name, b.Name}]; ok {
		return fmt.Errorf("composition previously rejected")
	}

	consumers := d.ix.Consumers(a.Name)
	if len(consumers) != 1 {
		return fmt.Errorf("node %q has %d data consumers", a.Name, len(consumers))
	}
	if c := consumers[0]; c.Node != b.Name || c.Position != 0 || c.Port != 0 {
		return fmt.Errorf("node %q is not consumed as the dataset input of %q", a.Name, b.Name)
	}
	if cc := d.ix.ControlConsumers(a.Name); len(cc) > 0 {
		return fmt.Errorf("node %q has control consumers %v", a.Name, cc)
	}
	if ci := b.ControlInputs(); len(ci) > 0 {
		return fmt.Errorf("node %q has control inputs %v", b.Name, ci)
	}

	for _, n := range []*graphdef.Node{a, b} {
		layout, err := parseMapLayout(n)
		if err != nil {
			return err
		}
		if !d.g.Library.Contains(layout.function) {
			return fmt.Errorf("function %q of %q not in library", layout.function, n.Name)
		}
		if d.recursion.isRecursive(layout.function) {
			return fmt.Errorf("function %q is recursive", layout.function)
		}
	}
	return nil
}
