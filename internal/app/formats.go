package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphfile"
	"github.com/specialistvlad/mapfuse/internal/hcl_adapter"
	"github.com/specialistvlad/mapfuse/internal/yaml_adapter"
)

// inputFormats is the order in which loaders are asked for their files.
var inputFormats = []graphfile.Format{graphfile.FormatHCL, graphfile.FormatYAML}

func defaultLoaders() map[graphfile.Format]graphfile.Loader {
	return map[graphfile.Format]graphfile.Loader{
		graphfile.FormatHCL:  hcl_adapter.NewLoader(),
		graphfile.FormatYAML: yaml_adapter.NewLoader(),
	}
}

func defaultWriters() map[graphfile.Format]graphfile.Writer {
	return map[graphfile.Format]graphfile.Writer{
		graphfile.FormatHCL:  hcl_adapter.NewWriter(),
		graphfile.FormatYAML: yaml_adapter.NewWriter(),
	}
}

// loadGraph asks every loader for its files under paths and merges the
// results into one graph.
func (a *App) loadGraph(ctx context.Context) (*graphdef.Graph, error) {
	g := graphdef.New()
	for _, format := range inputFormats {
		loader, ok := a.loaders[format]
		if !ok {
			continue
		}
		part, err := loader.Load(ctx, a.config.GraphPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s graph files: %w", format, err)
		}
		if err := graphfile.Merge(g, part); err != nil {
			return nil, fmt.Errorf("failed to merge %s graph files: %w", format, err)
		}
	}
	if g.Len() == 0 {
		return nil, fmt.Errorf("no graph nodes found in %v", a.config.GraphPaths)
	}
	return g, nil
}

// outputFormat picks the explicit format, then the one implied by the output
// path, then HCL.
func (a *App) outputFormat() graphfile.Format {
	if a.config.OutputFormat != "" {
		return graphfile.Format(a.config.OutputFormat)
	}
	if f, ok := graphfile.FormatOf(a.config.OutputPath); ok {
		return f
	}
	return graphfile.FormatHCL
}
