// Package optimizer defines how graph-rewriting passes are packaged, registered
// and driven.
//
// # Responsibilities
//
//   - **Item:** the unit of work handed to a pass: the graph (which owns its
//     function library) plus the names of nodes that must survive any rewrite.
//   - **Optimizer:** the interface a pass implements.
//   - **Registry:** passes register themselves by name through a Module, the
//     same way handlers are registered with the application.
//   - **Driver:** runs a sequence of passes over an Item, recording metrics and
//     a trace span per pass.
package optimizer

import (
	"context"
	"slices"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
)

// Item is the graph being optimized together with the caller's constraints.
type Item struct {
	// ID identifies the item in logs and traces.
	ID string
	// Graph is mutated in place by passes.
	Graph *graphdef.Graph
	// Fetch names the nodes whose outputs the caller reads. They are never
	// removed or renamed, even if nothing in the graph consumes them.
	Fetch []string
}

// NodesToPreserve returns the set of node names passes must keep.
func (i *Item) NodesToPreserve() map[string]struct{} {
	out := make(map[string]struct{}, len(i.Fetch))
	for _, name := range i.Fetch {
		out[name] = struct{}{}
	}
	return out
}

// IsPreserved reports whether the node is in the fetch set.
func (i *Item) IsPreserved(name string) bool {
	return slices.Contains(i.Fetch, name)
}

// Stats collects what a pass changed.
type Stats struct {
	// NumChanges counts rewrites applied by the pass.
	NumChanges int
}

// Optimizer is a single graph-rewriting pass.
type Optimizer interface {
	// Name is the registry key and the label used in metrics.
	Name() string
	// Optimize rewrites item.Graph. On error the graph must be left exactly
	// as it was.
	Optimize(ctx context.Context, item *Item, stats *Stats) error
}
