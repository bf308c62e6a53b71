package graphdef

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/mapfuse/internal/nodeid"
)

var (
	// ErrDanglingReference is returned when an input or attribute names a
	// node or function that does not exist.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrCycle is returned when data and control edges do not form a DAG.
	ErrCycle = errors.New("cycle detected")
)

// Validate checks that the graph is internally consistent: every input
// resolves to an existing node, every function attribute resolves to a
// library function, every function body is well formed, and the graph is
// acyclic.
func Validate(g *Graph) error {
	for _, n := range g.nodes {
		for _, in := range n.Inputs {
			ref, err := nodeid.Parse(in)
			if err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
			if _, ok := g.byName[ref.Node]; !ok {
				return fmt.Errorf("node %q input %q: %w", n.Name, in, ErrDanglingReference)
			}
		}
		for _, fname := range n.FuncNames() {
			if !g.Library.Contains(fname) {
				return fmt.Errorf("node %q references function %q: %w", n.Name, fname, ErrDanglingReference)
			}
		}
	}

	for _, name := range g.Library.Names() {
		f, _ := g.Library.Find(name)
		if err := validateFunction(f, g.Library); err != nil {
			return fmt.Errorf("function %q: %w", name, err)
		}
	}

	return g.detectCycles()
}

// validateFunction checks that every body reference and return value resolves
// to a declared argument or a body node.
func validateFunction(f *FunctionDef, lib *Library) error {
	args := make(map[string]struct{}, len(f.Signature.InputArgs))
	for _, a := range f.Signature.InputArgs {
		if _, dup := args[a.Name]; dup {
			return fmt.Errorf("duplicate input argument %q", a.Name)
		}
		args[a.Name] = struct{}{}
	}
	body := make(map[string]struct{}, len(f.Nodes))
	for _, n := range f.Nodes {
		if _, dup := body[n.Name]; dup {
			return fmt.Errorf("duplicate body node %q", n.Name)
		}
		body[n.Name] = struct{}{}
	}

	resolve := func(raw string) error {
		ref, err := nodeid.ParseBody(raw)
		if err != nil {
			return err
		}
		if ref.IsArg() {
			if _, ok := args[ref.Node]; !ok {
				return fmt.Errorf("argument %q: %w", ref.Node, ErrDanglingReference)
			}
			return nil
		}
		if _, ok := body[ref.Node]; !ok {
			return fmt.Errorf("body node %q: %w", ref.Node, ErrDanglingReference)
		}
		return nil
	}

	for _, n := range f.Nodes {
		for _, in := range n.Inputs {
			if err := resolve(in); err != nil {
				return fmt.Errorf("body node %q: %w", n.Name, err)
			}
		}
		for _, fname := range n.FuncNames() {
			if !lib.Contains(fname) {
				return fmt.Errorf("body node %q references function %q: %w", n.Name, fname, ErrDanglingReference)
			}
		}
	}
	for _, out := range f.Signature.OutputArgs {
		raw, ok := f.Ret[out.Name]
		if !ok {
			return fmt.Errorf("output %q has no return value", out.Name)
		}
		if err := resolve(raw); err != nil {
			return fmt.Errorf("output %q: %w", out.Name, err)
		}
	}
	return nil
}

// detectCycles checks the graph for any cycles over data and control edges.
func (g *Graph) detectCycles() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: nodes fully visited and known not to be part of a cycle.
	// temporary: nodes on the current recursion stack.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.Name] {
			return nil
		}
		if temporary[n.Name] {
			return fmt.Errorf("node %q: %w", n.Name, ErrCycle)
		}

		temporary[n.Name] = true
		for _, in := range n.Inputs {
			ref, err := nodeid.Parse(in)
			if err != nil {
				return err
			}
			if producer, ok := g.byName[ref.Node]; ok {
				if err := visit(producer); err != nil {
					return err
				}
			}
		}
		delete(temporary, n.Name)
		permanent[n.Name] = true
		return nil
	}

	for _, n := range g.nodes {
		if !permanent[n.Name] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
