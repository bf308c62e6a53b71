// This file contains the logic for translating HCL schema structs into the
// graphdef model.

package hcl_adapter

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

func translateNode(ctx context.Context, nb *NodeBlock, evalCtx *hcl.EvalContext) (*graphdef.Node, error) {
	attrs, err := translateAttrsExpr(ctx, nb.Attrs, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", nb.Name, err)
	}
	return &graphdef.Node{
		Name:   nb.Name,
		Op:     nb.Op,
		Inputs: slices.Clone(nb.Inputs),
		Device: nb.Device,
		Attrs:  attrs,
	}, nil
}

func translateFunction(ctx context.Context, fb *FunctionBlock, evalCtx *hcl.EvalContext) (*graphdef.FunctionDef, error) {
	logger := ctxlog.FromContext(ctx).With("function", fb.Name)
	logger.Debug("Translating function block.", "inputs", len(fb.Inputs), "outputs", len(fb.Outputs), "nodes", len(fb.Nodes))

	f := &graphdef.FunctionDef{Signature: graphdef.Signature{Name: fb.Name}}
	for _, in := range fb.Inputs {
		dt, err := typeExprToDataType(ctx, in.Type)
		if err != nil {
			return nil, fmt.Errorf("function %q, input %q: %w", fb.Name, in.Name, err)
		}
		f.Signature.InputArgs = append(f.Signature.InputArgs, graphdef.ArgDef{Name: in.Name, Type: dt})
	}
	for _, out := range fb.Outputs {
		dt, err := typeExprToDataType(ctx, out.Type)
		if err != nil {
			return nil, fmt.Errorf("function %q, output %q: %w", fb.Name, out.Name, err)
		}
		f.Signature.OutputArgs = append(f.Signature.OutputArgs, graphdef.ArgDef{Name: out.Name, Type: dt})
	}
	for _, nb := range fb.Nodes {
		n, err := translateNode(ctx, nb, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", fb.Name, err)
		}
		f.Nodes = append(f.Nodes, n)
	}
	attrs, err := translateAttrsExpr(ctx, fb.Attrs, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", fb.Name, err)
	}
	f.Attrs = attrs
	if len(fb.Ret) > 0 {
		f.Ret = fb.Ret
	}
	return f, nil
}

// translateAttrsExpr evaluates an `attrs = { ... }` expression. An omitted
// expression yields nil.
func translateAttrsExpr(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) (map[string]graphdef.AttrValue, error) {
	if !isExprDefined(ctx, expr, "attrs") {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid attrs: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("attrs must be an object, got %s", val.Type().FriendlyName())
	}
	return translateAttrMap(val)
}

func translateAttrMap(val cty.Value) (map[string]graphdef.AttrValue, error) {
	if val.LengthInt() == 0 {
		return nil, nil
	}
	out := make(map[string]graphdef.AttrValue, val.LengthInt())
	for key, item := range val.AsValueMap() {
		av, err := translateAttr(item)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		out[key] = av
	}
	return out, nil
}

// translateAttr converts an evaluated attribute value. Integral numbers
// become ints; float(x) forces a float.
func translateAttr(val cty.Value) (graphdef.AttrValue, error) {
	if val.IsNull() || !val.IsWhollyKnown() {
		return graphdef.AttrValue{}, fmt.Errorf("attribute value must be known and non-null")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return graphdef.String(val.AsString()), nil
	case ty == cty.Bool:
		return graphdef.Bool(val.True()), nil
	case ty == cty.Number:
		return translateNumber(val.AsBigFloat()), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		items := make([]graphdef.AttrValue, 0, val.LengthInt())
		for _, item := range val.AsValueSlice() {
			av, err := translateAttr(item)
			if err != nil {
				return graphdef.AttrValue{}, err
			}
			items = append(items, av)
		}
		return graphdef.List(items...), nil
	case ty.IsObjectType() && ty.HasAttribute(kindKey):
		return translateTagged(val)
	default:
		return graphdef.AttrValue{}, fmt.Errorf("unsupported attribute value of type %s", ty.FriendlyName())
	}
}

func translateNumber(bf *big.Float) graphdef.AttrValue {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return graphdef.Int(i)
		}
	}
	f, _ := bf.Float64()
	return graphdef.Float(f)
}

// translateTagged converts an object built by one of the helper functions.
func translateTagged(val cty.Value) (graphdef.AttrValue, error) {
	switch kind := val.GetAttr(kindKey).AsString(); kind {
	case kindFunc:
		attrs, err := translateAttrMap(val.GetAttr("attrs"))
		if err != nil {
			return graphdef.AttrValue{}, fmt.Errorf("fn(): %w", err)
		}
		return graphdef.Func(val.GetAttr("name").AsString(), attrs), nil

	case kindType:
		return graphdef.Type(graphdef.DataType(val.GetAttr("name").AsString())), nil

	case kindFloat:
		f, _ := val.GetAttr("value").AsBigFloat().Float64()
		return graphdef.Float(f), nil

	case kindShape:
		if val.Type().HasAttribute("unknown") {
			return graphdef.UnknownShape(), nil
		}
		dims, err := int64Slice(val.GetAttr("dims"))
		if err != nil {
			return graphdef.AttrValue{}, fmt.Errorf("shape(): %w", err)
		}
		return graphdef.ShapeOf(dims...), nil

	case kindTensor:
		t, err := translateTensor(val)
		if err != nil {
			return graphdef.AttrValue{}, fmt.Errorf("tensor(): %w", err)
		}
		return graphdef.TensorValue(t), nil

	default:
		return graphdef.AttrValue{}, fmt.Errorf("unknown attribute kind %q", kind)
	}
}

func translateTensor(val cty.Value) (graphdef.Tensor, error) {
	t := graphdef.Tensor{DType: graphdef.DataType(val.GetAttr("dtype").AsString())}
	dims, err := int64Slice(val.GetAttr("dims"))
	if err != nil {
		return t, fmt.Errorf("dims: %w", err)
	}
	t.Shape = graphdef.Shape{Dims: dims}

	values := val.GetAttr("values")
	if !values.CanIterateElements() {
		return t, fmt.Errorf("values must be a list, got %s", values.Type().FriendlyName())
	}
	for _, item := range values.AsValueSlice() {
		switch t.DType {
		case graphdef.DTInt32, graphdef.DTInt64:
			var i int64
			if err := gocty.FromCtyValue(item, &i); err != nil {
				return t, err
			}
			t.Int64Val = append(t.Int64Val, i)
		case graphdef.DTFloat, graphdef.DTDouble:
			var f float64
			if err := gocty.FromCtyValue(item, &f); err != nil {
				return t, err
			}
			t.FloatVal = append(t.FloatVal, f)
		case graphdef.DTString:
			var s string
			if err := gocty.FromCtyValue(item, &s); err != nil {
				return t, err
			}
			t.StringVal = append(t.StringVal, s)
		case graphdef.DTBool:
			var b bool
			if err := gocty.FromCtyValue(item, &b); err != nil {
				return t, err
			}
			t.BoolVal = append(t.BoolVal, b)
		default:
			return t, fmt.Errorf("unsupported tensor dtype %q", t.DType)
		}
	}
	return t, nil
}

func int64Slice(val cty.Value) ([]int64, error) {
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("expected a list of numbers, got %s", val.Type().FriendlyName())
	}
	var out []int64
	for _, item := range val.AsValueSlice() {
		var i int64
		if err := gocty.FromCtyValue(item, &i); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}
