package mapfusion

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphutil"
)

// Attribute keys on map-family nodes.
const (
	funcAttr                = "f"
	targumentsAttr          = "Targuments"
	useInterOpAttr          = "use_inter_op_parallelism"
	preserveCardinalityAttr = "preserve_cardinality"
	sloppyAttr              = "sloppy"
	deterministicAttr       = "deterministic"
)

// Values of the `deterministic` attribute.
const (
	deterministicTrue    = "true"
	deterministicFalse   = "false"
	deterministicDefault = "default"
)

var (
	// ErrMalformedGraph is returned when the input graph cannot be rewritten
	// consistently, e.g. a map node names a function missing from the library.
	ErrMalformedGraph = errors.New("malformed graph")
	// ErrArityMismatch is returned when f's outputs do not line up with g's
	// element arguments.
	ErrArityMismatch = errors.New("function arity mismatch")
	// ErrInstantiationConflict is returned when chain members instantiate
	// their functions with different values for the same attr.
	ErrInstantiationConflict = errors.New("conflicting function instantiation")
)

// mapLayout is the positional breakdown of a map node's inputs.
type mapLayout struct {
	// input is the upstream dataset reference.
	input string
	// captured are the `other_arguments` fed to the function after the element.
	captured []string
	// parallelism is the `num_parallel_calls` reference; empty for MapDataset.
	parallelism string
	// controls are the node's `^control` inputs.
	controls []string
	// function is the name held in the `f` attribute.
	function string
}

// parseMapLayout splits a map-family node's inputs by role. The number of
// captured inputs comes from the length of `Targuments`.
func parseMapLayout(n *graphdef.Node) (mapLayout, error) {
	fn, ok := graphutil.FuncAttrName(n, funcAttr)
	if !ok {
		return mapLayout{}, fmt.Errorf("map node %q has no %q function attribute", n.Name, funcAttr)
	}

	data := n.DataInputs()
	numCaptured := graphutil.ListLen(n, targumentsAttr)
	want := 1 + numCaptured
	if graphutil.IsParallelMap(n.Op) {
		want++
	}
	if len(data) != want {
		return mapLayout{}, fmt.Errorf("map node %q expects %d data inputs, has %d", n.Name, want, len(data))
	}

	layout := mapLayout{
		input:    data[0],
		captured: data[1 : 1+numCaptured],
		controls: n.ControlInputs(),
		function: fn,
	}
	if graphutil.IsParallelMap(n.Op) {
		layout.parallelism = data[1+numCaptured]
	}
	return layout, nil
}
