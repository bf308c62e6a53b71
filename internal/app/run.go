package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphutil"
	"github.com/specialistvlad/mapfuse/internal/optimizer"
)

// Run loads the graph, runs the configured passes over it and writes the
// result.
func (a *App) Run(ctx context.Context) (optimizer.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	g, err := a.loadGraph(ctx)
	if err != nil {
		return optimizer.Report{}, err
	}
	mapsBefore := countMapNodes(g)
	a.logger.Info("Graph loaded.", "nodes", g.Len(), "functions", g.Library.Len(), "map_nodes", mapsBefore)

	for _, name := range a.config.Fetch {
		if !graphutil.ContainsGraphNodeWithName(name, g) {
			return optimizer.Report{}, fmt.Errorf("fetch node %q not found in graph", name)
		}
	}

	item := &optimizer.Item{
		ID:    strings.Join(a.config.GraphPaths, ","),
		Graph: g,
		Fetch: a.config.Fetch,
	}
	report, err := optimizer.NewDriver(a.registry, a.config.Passes...).Run(ctx, item)
	if err != nil {
		return report, err
	}

	if err := a.writeGraph(ctx, item.Graph); err != nil {
		return report, err
	}

	a.logger.Info("Optimization finished.",
		"changes", report.TotalChanges(),
		"nodes", item.Graph.Len(),
		"functions", item.Graph.Library.Len(),
		"map_nodes_before", mapsBefore,
		"map_nodes_after", countMapNodes(item.Graph),
	)
	a.logger.Debug("App.Run method finished.")
	return report, nil
}

// Validate loads the graph and checks its consistency without rewriting it.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	g, err := a.loadGraph(ctx)
	if err != nil {
		return err
	}
	if err := graphdef.Validate(g); err != nil {
		return fmt.Errorf("graph is inconsistent: %w", err)
	}
	a.logger.Info("Graph is valid.", "nodes", g.Len(), "functions", g.Library.Len(), "map_nodes", countMapNodes(g))
	return nil
}

func (a *App) writeGraph(ctx context.Context, g *graphdef.Graph) (err error) {
	format := a.outputFormat()
	w, ok := a.writers[format]
	if !ok {
		return fmt.Errorf("no writer for output format %q", format)
	}

	var out io.Writer = a.outW
	if a.config.OutputPath != "" && a.config.OutputPath != "-" {
		f, err := a.createOutput(a.config.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		out = f
	}

	if err := w.Write(ctx, out, g); err != nil {
		return fmt.Errorf("failed to write %s graph: %w", format, err)
	}
	a.logger.Debug("Optimized graph written.", "format", format, "path", a.config.OutputPath)
	return nil
}

// createFile opens path for writing, truncating any existing file.
func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func countMapNodes(g *graphdef.Graph) int {
	count := 0
	for _, op := range []string{graphutil.MapDatasetOp, graphutil.ParallelMapDatasetOp, graphutil.ParallelMapDatasetV2Op} {
		count += len(graphutil.FindAllGraphNodesWithOp(op, g))
	}
	return count
}
