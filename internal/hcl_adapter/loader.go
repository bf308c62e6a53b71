package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphfile"
)

// Loader is the HCL implementation of graphfile.Loader.
type Loader struct{}

// NewLoader creates a new HCL graph loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Nodes     []*NodeBlock     `hcl:"node,block"`
	Functions []*FunctionBlock `hcl:"function,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// Load parses every .hcl file under the given paths and merges their nodes
// and functions into one graph, in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*graphdef.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := graphfile.FindGraphFiles(paths, graphfile.FormatHCL.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	g := graphdef.New()
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		part, err := l.decode(ctx, hclFile.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		if err := graphfile.Merge(g, part); err != nil {
			return nil, fmt.Errorf("failed to merge HCL file %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "nodes", g.Len(), "functions", g.Library.Len())
	return g, nil
}

// LoadBytes decodes a single in-memory HCL document.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*graphdef.Graph, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	return l.decode(ctx, hclFile.Body)
}

func (l *Loader) decode(ctx context.Context, body hcl.Body) (*graphdef.Graph, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	g := graphdef.New()
	evalCtx := newEvalContext()
	for _, nb := range root.Nodes {
		n, err := translateNode(ctx, nb, evalCtx)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, fb := range root.Functions {
		f, err := translateFunction(ctx, fb, evalCtx)
		if err != nil {
			return nil, err
		}
		if err := g.Library.Add(f); err != nil {
			return nil, err
		}
	}
	return g, nil
}
