package yaml_adapter

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"gopkg.in/yaml.v3"
)

// Writer is the YAML implementation of graphfile.Writer.
type Writer struct{}

// NewWriter creates a new YAML graph writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write emits nodes in graph order followed by functions in name order.
func (w *Writer) Write(ctx context.Context, out io.Writer, g *graphdef.Graph) error {
	var doc fileDoc
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, fromNode(n))
	}
	for _, name := range g.Library.Names() {
		f, _ := g.Library.Find(name)
		doc.Functions = append(doc.Functions, fromFunction(f))
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("YAML graph written.", "nodes", g.Len(), "functions", g.Library.Len())
	return nil
}

func fromNode(n *graphdef.Node) nodeDoc {
	return nodeDoc{Name: n.Name, Op: n.Op, Inputs: n.Inputs, Device: n.Device, Attrs: fromAttrMap(n.Attrs)}
}

func fromFunction(f *graphdef.FunctionDef) functionDoc {
	fd := functionDoc{Name: f.Name(), Attrs: fromAttrMap(f.Attrs), Ret: f.Ret}
	for _, a := range f.Signature.InputArgs {
		fd.Inputs = append(fd.Inputs, argDoc{Name: a.Name, Type: string(a.Type)})
	}
	for _, a := range f.Signature.OutputArgs {
		fd.Outputs = append(fd.Outputs, argDoc{Name: a.Name, Type: string(a.Type)})
	}
	for _, n := range f.Nodes {
		fd.Nodes = append(fd.Nodes, fromNode(n))
	}
	return fd
}
