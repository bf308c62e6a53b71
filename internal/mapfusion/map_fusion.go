package mapfusion

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphindex"
	"github.com/specialistvlad/mapfuse/internal/graphutil"
	"github.com/specialistvlad/mapfuse/internal/optimizer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Name is the registry key of the pass.
const Name = "map_fusion"

// DefaultMaxIterations bounds the detect/rewrite/prune rounds.
const DefaultMaxIterations = 16

var (
	chainsFusedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mapfuse_map_chains_fused_total",
		Help: "Total map chains replaced by a fused node",
	})
	chainsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mapfuse_map_chains_rejected_total",
		Help: "Total map chains left in place because their functions could not be composed",
	})
	functionsPrunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mapfuse_functions_pruned_total",
		Help: "Total library functions removed because no graph node reaches them",
	})
)

// MapFusion fuses chains of map nodes into single map nodes.
type MapFusion struct {
	// MaxIterations caps the number of rounds. Zero means DefaultMaxIterations.
	MaxIterations int
}

// New returns the pass with default settings.
func New() *MapFusion {
	return &MapFusion{MaxIterations: DefaultMaxIterations}
}

// Name implements optimizer.Optimizer.
func (*MapFusion) Name() string { return Name }

// Optimize implements optimizer.Optimizer. stats.NumChanges is incremented
// once per fused chain. Library functions no graph node reaches are removed
// on every run, including runs that fuse nothing.
func (m *MapFusion) Optimize(ctx context.Context, item *optimizer.Item, stats *optimizer.Stats) error {
	logger := ctxlog.FromContext(ctx)
	span := trace.SpanFromContext(ctx)

	if err := checkInput(item.Graph); err != nil {
		return err
	}

	maxIterations := m.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	g := item.Graph.Clone()
	preserve := item.NodesToPreserve()
	rejected := make(map[edge]struct{})
	changes := 0

	for iter := 0; iter < maxIterations; iter++ {
		ix, err := graphindex.Build(g)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedGraph, err)
		}
		detector := &chainDetector{
			g:         g,
			ix:        ix,
			preserve:  preserve,
			rejected:  rejected,
			recursion: newRecursionCache(g.Library),
		}
		chains := detector.findChains(ctx)
		if len(chains) == 0 {
			break
		}
		logger.Debug("Map chains detected.", "iteration", iter, "chains", len(chains))

		fusedThisRound := 0
		var released []string
		for _, c := range chains {
			res, rej, err := fuseChain(g, c)
			if err != nil {
				return err
			}
			if rej != nil {
				rejected[rej.at] = struct{}{}
				chainsRejectedTotal.Inc()
				logger.Debug("Map chain skipped.", "head", c.head(), "tail", c.tail(), "reason", rej)
				continue
			}
			fusedThisRound++
			chainsFusedTotal.Inc()
			released = append(released, res.released...)
			span.AddEvent("map chain fused", trace.WithAttributes(
				attribute.String("fused_node", res.node.Name),
				attribute.String("function", res.function),
				attribute.StringSlice("chain", c),
			))
			logger.Debug("Map chain fused.", "chain", []string(c), "fused_node", res.node.Name, "function", res.function)
		}

		for _, n := range pruneNodes(g, released, preserve) {
			logger.Debug("Pruned orphaned node.", "node", n.Name, "op", n.Op)
		}
		changes += fusedThisRound
	}

	swept := pruneFunctions(g)
	for _, name := range swept {
		logger.Debug("Pruned unreferenced function.", "function", name)
	}
	functionsPrunedTotal.Add(float64(len(swept)))

	if changes == 0 && len(swept) == 0 {
		logger.Debug("No fusable map chains.")
		return nil
	}
	if err := graphdef.Validate(g); err != nil {
		return fmt.Errorf("rewritten graph is inconsistent: %w", err)
	}

	item.Graph.ReplaceWith(g)
	stats.NumChanges += changes
	return nil
}

// checkInput rejects graphs the pass cannot rewrite consistently: any
// structural inconsistency, or a map node whose function attribute is
// missing or names nothing in the library.
func checkInput(g *graphdef.Graph) error {
	if err := graphdef.Validate(g); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedGraph, err)
	}
	for _, n := range g.Nodes() {
		if !graphutil.IsMapFamily(n.Op) {
			continue
		}
		fn, ok := graphutil.FuncAttrName(n, funcAttr)
		if !ok {
			return fmt.Errorf("%w: map node %q has no %q function attribute", ErrMalformedGraph, n.Name, funcAttr)
		}
		if !g.Library.Contains(fn) {
			return fmt.Errorf("%w: map node %q references missing function %q", ErrMalformedGraph, n.Name, fn)
		}
	}
	return nil
}

// Module registers the pass with an optimizer registry.
type Module struct {
	// MaxIterations is handed to every pass instance. Zero means
	// DefaultMaxIterations.
	MaxIterations int
}

// Register implements optimizer.Module.
func (m Module) Register(r *optimizer.Registry) {
	r.Register(Name, func() optimizer.Optimizer {
		return &MapFusion{MaxIterations: m.MaxIterations}
	})
}
