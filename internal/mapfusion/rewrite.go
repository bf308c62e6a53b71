package mapfusion

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphutil"
	"github.com/specialistvlad/mapfuse/internal/nodeid"
)

// fusion is the outcome of rewriting one chain.
type fusion struct {
	// node is the fused node added to the graph.
	node *graphdef.Node
	// function is the composed function registered in the library.
	function string
	// released names nodes that lost a reference when the chain was removed.
	released []string
}

// rejection explains why a chain was left in place.
type rejection struct {
	// at is the pair whose functions could not be composed.
	at  edge
	err error
}

func (r *rejection) Error() string {
	return fmt.Sprintf("cannot fuse %s: %v", r.at, r.err)
}

func (r *rejection) Unwrap() error { return r.err }

// fuseChain replaces the chain with a single map node. Everything that can
// fail is computed before the graph is touched, so a rejection leaves g as it
// was.
func fuseChain(g *graphdef.Graph, c chain) (*fusion, *rejection, error) {
	members := make([]*graphdef.Node, len(c))
	layouts := make([]mapLayout, len(c))
	for i, name := range c {
		n, ok := g.Node(name)
		if !ok {
			return nil, nil, fmt.Errorf("chain member %q not in graph", name)
		}
		layout, err := parseMapLayout(n)
		if err != nil {
			return nil, nil, err
		}
		members[i], layouts[i] = n, layout
	}

	composed, err := lookupFunction(g.Library, layouts[0].function)
	if err != nil {
		return nil, nil, err
	}
	for i := 1; i < len(c); i++ {
		next, err := lookupFunction(g.Library, layouts[i].function)
		if err != nil {
			return nil, nil, err
		}
		composed, err = composeFunctions(composed, next, len(layouts[i].captured))
		if err != nil {
			return nil, &rejection{at: edge{c[i-1], c[i]}, err: err}, nil
		}
	}

	inst, conflict, err := mergeInstantiations(members)
	if err != nil {
		return nil, &rejection{at: edge{c[conflict-1], c[conflict]}, err: err}, nil
	}

	head, tail := members[0], members[len(members)-1]
	fused := buildFusedNode(head, tail, members, layouts)
	graphutil.SetUniqueGraphNodeName("fused_"+head.Name+"_"+tail.Name, g, fused)
	graphutil.SetUniqueGraphFunctionName(composed.Name(), g.Library, composed)
	fused.SetAttr(funcAttr, graphdef.Func(composed.Name(), inst))

	if err := g.Library.Add(composed); err != nil {
		return nil, nil, err
	}
	if err := g.AddNode(fused); err != nil {
		return nil, nil, err
	}
	if err := repointConsumers(g, tail.Name, fused.Name, c); err != nil {
		return nil, nil, err
	}
	g.RemoveNodes(c...)

	return &fusion{
		node:     fused,
		function: composed.Name(),
		released: releasedInputs(members, c),
	}, nil, nil
}

func lookupFunction(lib *graphdef.Library, name string) (*graphdef.FunctionDef, error) {
	f, ok := lib.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: function %q not in library", ErrMalformedGraph, name)
	}
	return f, nil
}

// buildFusedNode assembles the fused node's op, inputs and attributes. The
// name and function are filled in by the caller.
func buildFusedNode(head, tail *graphdef.Node, members []*graphdef.Node, layouts []mapLayout) *graphdef.Node {
	fused := &graphdef.Node{Op: head.Op, Device: tail.Device}

	fused.Inputs = append(fused.Inputs, layouts[0].input)
	var targs []graphdef.AttrValue
	for i, layout := range layouts {
		fused.Inputs = append(fused.Inputs, layout.captured...)
		if v, ok := members[i].Attr(targumentsAttr); ok && v.Kind == graphdef.KindList {
			for _, t := range v.List {
				targs = append(targs, t.Clone())
			}
		}
	}
	if graphutil.IsParallelMap(head.Op) {
		fused.Inputs = append(fused.Inputs, layouts[len(layouts)-1].parallelism)
	}
	for _, ctrl := range layouts[0].controls {
		if !slices.Contains(fused.Inputs, ctrl) {
			fused.Inputs = append(fused.Inputs, ctrl)
		}
	}

	fused.SetAttr(targumentsAttr, graphdef.List(targs...))
	graphutil.CopyShapesAndTypesAttrs(tail, fused)
	mergeBoolAttr(fused, members, useInterOpAttr, true)
	mergeBoolAttr(fused, members, preserveCardinalityAttr, true)
	mergeBoolAttr(fused, members, sloppyAttr, false)
	mergeDeterministic(fused, members)
	return fused
}

// mergeInstantiations unions the attrs every member's `f` was instantiated
// with. A key bound to different values by two members is a conflict; the
// index of the later member is returned with the error.
func mergeInstantiations(members []*graphdef.Node) (map[string]graphdef.AttrValue, int, error) {
	var out map[string]graphdef.AttrValue
	for i, m := range members {
		v, ok := m.Attr(funcAttr)
		if !ok || v.Func == nil {
			continue
		}
		for key, val := range v.Func.Attrs {
			if prev, seen := out[key]; seen {
				if !cmp.Equal(prev, val, cmpopts.EquateEmpty()) {
					return nil, i, fmt.Errorf("%w: %q differs on %q", ErrInstantiationConflict, key, m.Name)
				}
				continue
			}
			if out == nil {
				out = make(map[string]graphdef.AttrValue)
			}
			out[key] = val.Clone()
		}
	}
	return out, 0, nil
}

// mergeBoolAttr sets key on the fused node when any member carries it. With
// all=true the result is the AND of the members' values, otherwise the OR.
// Members without the attribute count as the neutral value.
func mergeBoolAttr(fused *graphdef.Node, members []*graphdef.Node, key string, all bool) {
	present := false
	result := all
	for _, m := range members {
		v, ok := m.Attr(key)
		if !ok || v.Kind != graphdef.KindBool {
			continue
		}
		present = true
		if all {
			result = result && v.B
		} else {
			result = result || v.B
		}
	}
	if present {
		fused.SetAttr(key, graphdef.Bool(result))
	}
}

// mergeDeterministic combines `deterministic`: any "false" wins, all "true"
// stays "true", anything else is "default".
func mergeDeterministic(fused *graphdef.Node, members []*graphdef.Node) {
	present := false
	allTrue := true
	anyFalse := false
	for _, m := range members {
		v, ok := m.Attr(deterministicAttr)
		if !ok {
			allTrue = false
			continue
		}
		present = true
		switch v.S {
		case deterministicFalse:
			anyFalse = true
			allTrue = false
		case deterministicTrue:
		default:
			allTrue = false
		}
	}
	if !present {
		return
	}
	result := deterministicDefault
	switch {
	case anyFalse:
		result = deterministicFalse
	case allTrue:
		result = deterministicTrue
	}
	fused.SetAttr(deterministicAttr, graphdef.String(result))
}

// repointConsumers rewrites every reference to from (data or control, any
// port) so it names to instead. Nodes in skip are left alone.
func repointConsumers(g *graphdef.Graph, from, to string, skip []string) error {
	for _, n := range g.Nodes() {
		if slices.Contains(skip, n.Name) {
			continue
		}
		for i, in := range n.Inputs {
			ref, err := nodeid.Parse(in)
			if err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
			if ref.Node == from {
				n.Inputs[i] = ref.WithNode(to).String()
			}
		}
	}
	return nil
}

// releasedInputs lists the nodes the removed chain members referenced,
// excluding the members themselves.
func releasedInputs(members []*graphdef.Node, c chain) []string {
	var out []string
	for _, m := range members {
		for _, in := range m.Inputs {
			ref, err := nodeid.Parse(in)
			if err != nil || slices.Contains(c, ref.Node) || slices.Contains(out, ref.Node) {
				continue
			}
			out = append(out, ref.Node)
		}
	}
	return out
}
