package yaml_adapter

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/graphfile"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of graphfile.Loader.
type Loader struct{}

// NewLoader creates a new YAML graph loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .yaml/.yml file under the given paths and merges them
// into one graph.
func (l *Loader) Load(ctx context.Context, paths ...string) (*graphdef.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := graphfile.FindGraphFiles(paths, graphfile.FormatYAML.Extensions()...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	g := graphdef.New()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
		}
		part, err := l.LoadBytes(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to decode YAML file %s: %w", file, err)
		}
		if err := graphfile.Merge(g, part); err != nil {
			return nil, fmt.Errorf("failed to merge YAML file %s: %w", file, err)
		}
	}

	logger.Debug("YAML loading complete.", "nodes", g.Len(), "functions", g.Library.Len())
	return g, nil
}

// LoadBytes decodes a single YAML document.
func (l *Loader) LoadBytes(_ context.Context, src []byte) (*graphdef.Graph, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}

	g := graphdef.New()
	for _, nd := range doc.Nodes {
		n, err := toNode(nd)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, fd := range doc.Functions {
		f, err := toFunction(fd)
		if err != nil {
			return nil, err
		}
		if err := g.Library.Add(f); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func toNode(nd nodeDoc) (*graphdef.Node, error) {
	if nd.Name == "" || nd.Op == "" {
		return nil, fmt.Errorf("node %q: name and op are required", nd.Name)
	}
	attrs, err := toAttrMap(nd.Attrs)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", nd.Name, err)
	}
	return &graphdef.Node{Name: nd.Name, Op: nd.Op, Inputs: nd.Inputs, Device: nd.Device, Attrs: attrs}, nil
}

func toFunction(fd functionDoc) (*graphdef.FunctionDef, error) {
	f := &graphdef.FunctionDef{Signature: graphdef.Signature{Name: fd.Name}, Ret: fd.Ret}
	for _, a := range fd.Inputs {
		f.Signature.InputArgs = append(f.Signature.InputArgs, graphdef.ArgDef{Name: a.Name, Type: graphdef.DataType(a.Type)})
	}
	for _, a := range fd.Outputs {
		f.Signature.OutputArgs = append(f.Signature.OutputArgs, graphdef.ArgDef{Name: a.Name, Type: graphdef.DataType(a.Type)})
	}
	for _, nd := range fd.Nodes {
		n, err := toNode(nd)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", fd.Name, err)
		}
		f.Nodes = append(f.Nodes, n)
	}
	attrs, err := toAttrMap(fd.Attrs)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", fd.Name, err)
	}
	f.Attrs = attrs
	return f, nil
}
