// This file defines the HCL functions available inside `attrs` expressions.
// Each returns a tagged object that translateAttr turns into a typed
// graphdef.AttrValue.

package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// kindKey tags objects produced by the helper functions.
const kindKey = "__kind"

const (
	kindFunc   = "func"
	kindType   = "type"
	kindShape  = "shape"
	kindTensor = "tensor"
	kindFloat  = "float"
)

// newEvalContext returns the evaluation context for attribute expressions.
func newEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"fn":            fnFunc,
			"dtype":         dtypeFunc,
			"shape":         shapeFunc,
			"unknown_shape": unknownShapeFunc,
			"tensor":        tensorFunc,
			"float":         floatFunc,
		},
	}
}

// tagged builds a tagged object and derives the function's return type from
// it, so the type is exact for literal arguments.
func tagged(kind string, build func(args []cty.Value) map[string]cty.Value) (function.TypeFunc, function.ImplFunc) {
	impl := func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		attrs := build(args)
		attrs[kindKey] = cty.StringVal(kind)
		return cty.ObjectVal(attrs), nil
	}
	typ := func(args []cty.Value) (cty.Type, error) {
		for _, a := range args {
			if !a.IsWhollyKnown() {
				return cty.DynamicPseudoType, nil
			}
		}
		v, err := impl(args, cty.DynamicPseudoType)
		if err != nil {
			return cty.NilType, err
		}
		return v.Type(), nil
	}
	return typ, impl
}

// fn("name") or fn("name", { attr = value }) references a library function.
var fnFunc = func() function.Function {
	typ, impl := tagged(kindFunc, func(args []cty.Value) map[string]cty.Value {
		attrs := cty.EmptyObjectVal
		if len(args) > 1 {
			attrs = args[1]
		}
		return map[string]cty.Value{"name": args[0], "attrs": attrs}
	})
	return function.New(&function.Spec{
		Params:   []function.Parameter{{Name: "name", Type: cty.String}},
		VarParam: &function.Parameter{Name: "attrs", Type: cty.DynamicPseudoType},
		Type:     typ,
		Impl:     impl,
	})
}()

// dtype("int64") is an element type tag.
var dtypeFunc = func() function.Function {
	typ, impl := tagged(kindType, func(args []cty.Value) map[string]cty.Value {
		return map[string]cty.Value{"name": args[0]}
	})
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "name", Type: cty.String}},
		Type:   typ,
		Impl:   impl,
	})
}()

// shape(2, 3) is a known-rank shape; -1 marks an unknown dimension.
var shapeFunc = func() function.Function {
	typ, impl := tagged(kindShape, func(args []cty.Value) map[string]cty.Value {
		return map[string]cty.Value{"dims": cty.TupleVal(args)}
	})
	return function.New(&function.Spec{
		VarParam: &function.Parameter{Name: "dims", Type: cty.Number},
		Type:     typ,
		Impl:     impl,
	})
}()

// unknown_shape() is a shape of unknown rank.
var unknownShapeFunc = func() function.Function {
	typ, impl := tagged(kindShape, func([]cty.Value) map[string]cty.Value {
		return map[string]cty.Value{"unknown": cty.True}
	})
	return function.New(&function.Spec{Type: typ, Impl: impl})
}()

// tensor("int64", [dims], [values]) is a small constant tensor.
var tensorFunc = func() function.Function {
	typ, impl := tagged(kindTensor, func(args []cty.Value) map[string]cty.Value {
		return map[string]cty.Value{"dtype": args[0], "dims": args[1], "values": args[2]}
	})
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "dtype", Type: cty.String},
			{Name: "dims", Type: cty.DynamicPseudoType},
			{Name: "values", Type: cty.DynamicPseudoType},
		},
		Type: typ,
		Impl: impl,
	})
}()

// float(2) forces a float attribute for an integral literal.
var floatFunc = func() function.Function {
	typ, impl := tagged(kindFloat, func(args []cty.Value) map[string]cty.Value {
		return map[string]cty.Value{"value": args[0]}
	})
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "value", Type: cty.Number}},
		Type:   typ,
		Impl:   impl,
	})
}()
