package hcl_adapter

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/zclconf/go-cty/cty"
)

// Writer is the HCL implementation of graphfile.Writer. Its output loads back
// through Loader unchanged.
type Writer struct{}

// NewWriter creates a new HCL graph writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write emits nodes in graph order followed by functions in name order.
func (w *Writer) Write(ctx context.Context, out io.Writer, g *graphdef.Graph) error {
	logger := ctxlog.FromContext(ctx)

	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, n := range g.Nodes() {
		if i > 0 {
			body.AppendNewline()
		}
		writeNode(body, n)
	}
	for _, name := range g.Library.Names() {
		fn, _ := g.Library.Find(name)
		body.AppendNewline()
		writeFunction(body, fn)
	}

	if _, err := out.Write(f.Bytes()); err != nil {
		return fmt.Errorf("failed to write HCL: %w", err)
	}
	logger.Debug("HCL graph written.", "nodes", g.Len(), "functions", g.Library.Len())
	return nil
}

func writeNode(body *hclwrite.Body, n *graphdef.Node) {
	nb := body.AppendNewBlock("node", []string{n.Name}).Body()
	nb.SetAttributeValue("op", cty.StringVal(n.Op))
	if len(n.Inputs) > 0 {
		inputs := make([]cty.Value, len(n.Inputs))
		for i, in := range n.Inputs {
			inputs[i] = cty.StringVal(in)
		}
		nb.SetAttributeValue("inputs", cty.ListVal(inputs))
	}
	if n.Device != "" {
		nb.SetAttributeValue("device", cty.StringVal(n.Device))
	}
	if len(n.Attrs) > 0 {
		nb.SetAttributeRaw("attrs", tokensForAttrMap(n.Attrs))
	}
}

func writeFunction(body *hclwrite.Body, f *graphdef.FunctionDef) {
	fb := body.AppendNewBlock("function", []string{f.Name()}).Body()
	for _, a := range f.Signature.InputArgs {
		writeArg(fb, "input", a)
	}
	for _, a := range f.Signature.OutputArgs {
		writeArg(fb, "output", a)
	}
	for _, n := range f.Nodes {
		writeNode(fb, n)
	}
	if len(f.Attrs) > 0 {
		fb.SetAttributeRaw("attrs", tokensForAttrMap(f.Attrs))
	}
	if len(f.Ret) > 0 {
		ret := make(map[string]cty.Value, len(f.Ret))
		for k, v := range f.Ret {
			ret[k] = cty.StringVal(v)
		}
		fb.SetAttributeValue("ret", cty.ObjectVal(ret))
	}
}

func writeArg(body *hclwrite.Body, blockType string, a graphdef.ArgDef) {
	ab := body.AppendNewBlock(blockType, []string{a.Name}).Body()
	if hclsyntax.ValidIdentifier(string(a.Type)) {
		ab.SetAttributeTraversal("type", hcl.Traversal{hcl.TraverseRoot{Name: string(a.Type)}})
		return
	}
	ab.SetAttributeValue("type", cty.StringVal(string(a.Type)))
}

func tokensForAttrMap(attrs map[string]graphdef.AttrValue) hclwrite.Tokens {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	items := make([]hclwrite.ObjectAttrTokens, 0, len(keys))
	for _, k := range keys {
		if attrs[k].Kind == graphdef.KindNone {
			continue
		}
		name := hclwrite.TokensForValue(cty.StringVal(k))
		if hclsyntax.ValidIdentifier(k) {
			name = hclwrite.TokensForIdentifier(k)
		}
		items = append(items, hclwrite.ObjectAttrTokens{Name: name, Value: tokensForAttr(attrs[k])})
	}
	return hclwrite.TokensForObject(items)
}

func tokensForAttr(v graphdef.AttrValue) hclwrite.Tokens {
	switch v.Kind {
	case graphdef.KindString:
		return hclwrite.TokensForValue(cty.StringVal(v.S))
	case graphdef.KindInt:
		return hclwrite.TokensForValue(cty.NumberIntVal(v.I))
	case graphdef.KindFloat:
		return hclwrite.TokensForFunctionCall("float", hclwrite.TokensForValue(cty.NumberFloatVal(v.F)))
	case graphdef.KindBool:
		return hclwrite.TokensForValue(cty.BoolVal(v.B))
	case graphdef.KindType:
		return hclwrite.TokensForFunctionCall("dtype", hclwrite.TokensForValue(cty.StringVal(string(v.Type))))
	case graphdef.KindShape:
		return tokensForShape(v.Shape)
	case graphdef.KindTensor:
		return tokensForTensor(v.Tensor)
	case graphdef.KindFunc:
		name := hclwrite.TokensForValue(cty.StringVal(v.Func.Name))
		if len(v.Func.Attrs) == 0 {
			return hclwrite.TokensForFunctionCall("fn", name)
		}
		return hclwrite.TokensForFunctionCall("fn", name, tokensForAttrMap(v.Func.Attrs))
	case graphdef.KindList:
		items := make([]hclwrite.Tokens, len(v.List))
		for i, item := range v.List {
			items[i] = tokensForAttr(item)
		}
		return hclwrite.TokensForTuple(items)
	default:
		return hclwrite.TokensForValue(cty.NullVal(cty.DynamicPseudoType))
	}
}

func tokensForShape(s *graphdef.Shape) hclwrite.Tokens {
	if s == nil || s.UnknownRank {
		return hclwrite.TokensForFunctionCall("unknown_shape")
	}
	dims := make([]hclwrite.Tokens, len(s.Dims))
	for i, d := range s.Dims {
		dims[i] = hclwrite.TokensForValue(cty.NumberIntVal(d))
	}
	return hclwrite.TokensForFunctionCall("shape", dims...)
}

func tokensForTensor(t *graphdef.Tensor) hclwrite.Tokens {
	dims := make([]hclwrite.Tokens, len(t.Shape.Dims))
	for i, d := range t.Shape.Dims {
		dims[i] = hclwrite.TokensForValue(cty.NumberIntVal(d))
	}

	var values []hclwrite.Tokens
	for _, i := range t.Int64Val {
		values = append(values, hclwrite.TokensForValue(cty.NumberIntVal(i)))
	}
	for _, f := range t.FloatVal {
		values = append(values, hclwrite.TokensForValue(cty.NumberFloatVal(f)))
	}
	for _, s := range t.StringVal {
		values = append(values, hclwrite.TokensForValue(cty.StringVal(s)))
	}
	for _, b := range t.BoolVal {
		values = append(values, hclwrite.TokensForValue(cty.BoolVal(b)))
	}

	return hclwrite.TokensForFunctionCall("tensor",
		hclwrite.TokensForValue(cty.StringVal(string(t.DType))),
		hclwrite.TokensForTuple(dims),
		hclwrite.TokensForTuple(values),
	)
}
