package mapfusion

import (
	"slices"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/nodeid"
)

// pruneNodes removes candidates that nothing references any more, then
// cascades to whatever those nodes referenced. Preserved nodes are never
// removed. It returns the removed nodes in removal order.
func pruneNodes(g *graphdef.Graph, candidates []string, preserve map[string]struct{}) []*graphdef.Node {
	refs := make(map[string]int)
	for _, n := range g.Nodes() {
		for _, target := range referencedNodes(n) {
			refs[target]++
		}
	}

	var removed []*graphdef.Node
	queue := slices.Clone(candidates)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		n, ok := g.Node(name)
		if !ok || refs[name] > 0 {
			continue
		}
		if _, keep := preserve[name]; keep {
			continue
		}
		for _, target := range referencedNodes(n) {
			refs[target]--
			queue = append(queue, target)
		}
		g.RemoveNodes(name)
		removed = append(removed, n)
	}
	return removed
}

// referencedNodes returns the node names referenced by n's inputs, one entry
// per input.
func referencedNodes(n *graphdef.Node) []string {
	out := make([]string, 0, len(n.Inputs))
	for _, in := range n.Inputs {
		ref, err := nodeid.Parse(in)
		if err != nil {
			continue
		}
		out = append(out, ref.Node)
	}
	return out
}

// pruneFunctions removes every library function that is no longer reachable
// from a graph node, either through a function attribute or an op naming the
// function, following calls between functions transitively. It returns the
// removed names in sorted order.
func pruneFunctions(g *graphdef.Graph) []string {
	lib := g.Library
	var roots []string
	for _, n := range g.Nodes() {
		if lib.Contains(n.Op) {
			roots = append(roots, n.Op)
		}
		roots = append(roots, n.FuncNames()...)
	}
	live := reachableFunctions(lib, roots)

	var removed []string
	for _, name := range lib.Names() {
		if _, ok := live[name]; !ok {
			lib.Remove(name)
			removed = append(removed, name)
		}
	}
	return removed
}

// reachableFunctions returns the roots present in the library plus every
// library function they call, transitively.
func reachableFunctions(lib *graphdef.Library, roots []string) map[string]struct{} {
	seen := make(map[string]struct{})
	stack := slices.Clone(roots)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := seen[name]; done {
			continue
		}
		f, ok := lib.Find(name)
		if !ok {
			continue
		}
		seen[name] = struct{}{}
		stack = append(stack, f.Callees(lib)...)
	}
	return seen
}
