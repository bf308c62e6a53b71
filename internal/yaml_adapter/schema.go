// Package yaml_adapter reads and writes graphs as YAML documents.
//
// Each attribute is a single-key mapping naming its kind, e.g.
//
//	attrs:
//	  f: {func: {name: XTimesTwo}}
//	  Targuments: {list: []}
//	  output_types: {list: [{type: int64}]}
//	  output_shapes: {list: [{shape: {}}]}
package yaml_adapter

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
)

type fileDoc struct {
	Nodes     []nodeDoc     `yaml:"nodes,omitempty"`
	Functions []functionDoc `yaml:"functions,omitempty"`
}

type nodeDoc struct {
	Name   string             `yaml:"name"`
	Op     string             `yaml:"op"`
	Inputs []string           `yaml:"inputs,omitempty"`
	Device string             `yaml:"device,omitempty"`
	Attrs  map[string]attrDoc `yaml:"attrs,omitempty"`
}

type argDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type functionDoc struct {
	Name    string             `yaml:"name"`
	Inputs  []argDoc           `yaml:"inputs,omitempty"`
	Outputs []argDoc           `yaml:"outputs,omitempty"`
	Nodes   []nodeDoc          `yaml:"nodes,omitempty"`
	Attrs   map[string]attrDoc `yaml:"attrs,omitempty"`
	Ret     map[string]string  `yaml:"ret,omitempty"`
}

type shapeDoc struct {
	Dims        []int64 `yaml:"dims,omitempty,flow"`
	UnknownRank bool    `yaml:"unknown_rank,omitempty"`
}

type tensorDoc struct {
	DType     string    `yaml:"dtype"`
	Dims      []int64   `yaml:"dims,omitempty,flow"`
	Int64Val  []int64   `yaml:"int64_val,omitempty,flow"`
	FloatVal  []float64 `yaml:"float_val,omitempty,flow"`
	StringVal []string  `yaml:"string_val,omitempty,flow"`
	BoolVal   []bool    `yaml:"bool_val,omitempty,flow"`
}

type funcDoc struct {
	Name  string             `yaml:"name"`
	Attrs map[string]attrDoc `yaml:"attrs,omitempty"`
}

// attrDoc holds exactly one populated field.
type attrDoc struct {
	S      *string    `yaml:"s,omitempty"`
	I      *int64     `yaml:"i,omitempty"`
	F      *float64   `yaml:"f,omitempty"`
	B      *bool      `yaml:"b,omitempty"`
	Type   *string    `yaml:"type,omitempty"`
	Shape  *shapeDoc  `yaml:"shape,omitempty"`
	Tensor *tensorDoc `yaml:"tensor,omitempty"`
	Func   *funcDoc   `yaml:"func,omitempty"`
	List   *[]attrDoc `yaml:"list,omitempty"`
}

func toAttr(d attrDoc) (graphdef.AttrValue, error) {
	set := 0
	var out graphdef.AttrValue
	if d.S != nil {
		set++
		out = graphdef.String(*d.S)
	}
	if d.I != nil {
		set++
		out = graphdef.Int(*d.I)
	}
	if d.F != nil {
		set++
		out = graphdef.Float(*d.F)
	}
	if d.B != nil {
		set++
		out = graphdef.Bool(*d.B)
	}
	if d.Type != nil {
		set++
		out = graphdef.Type(graphdef.DataType(*d.Type))
	}
	if d.Shape != nil {
		set++
		if d.Shape.UnknownRank {
			out = graphdef.UnknownShape()
		} else {
			out = graphdef.ShapeOf(slices.Clone(d.Shape.Dims)...)
		}
	}
	if d.Tensor != nil {
		set++
		out = graphdef.TensorValue(graphdef.Tensor{
			DType:     graphdef.DataType(d.Tensor.DType),
			Shape:     graphdef.Shape{Dims: d.Tensor.Dims},
			Int64Val:  d.Tensor.Int64Val,
			FloatVal:  d.Tensor.FloatVal,
			StringVal: d.Tensor.StringVal,
			BoolVal:   d.Tensor.BoolVal,
		})
	}
	if d.Func != nil {
		set++
		attrs, err := toAttrMap(d.Func.Attrs)
		if err != nil {
			return graphdef.AttrValue{}, fmt.Errorf("func %q: %w", d.Func.Name, err)
		}
		out = graphdef.Func(d.Func.Name, attrs)
	}
	if d.List != nil {
		set++
		items := make([]graphdef.AttrValue, 0, len(*d.List))
		for i, item := range *d.List {
			av, err := toAttr(item)
			if err != nil {
				return graphdef.AttrValue{}, fmt.Errorf("list item %d: %w", i, err)
			}
			items = append(items, av)
		}
		out = graphdef.List(items...)
	}
	if set != 1 {
		return graphdef.AttrValue{}, fmt.Errorf("attribute must set exactly one kind, got %d", set)
	}
	return out, nil
}

func toAttrMap(docs map[string]attrDoc) (map[string]graphdef.AttrValue, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make(map[string]graphdef.AttrValue, len(docs))
	for k, d := range docs {
		av, err := toAttr(d)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = av
	}
	return out, nil
}

func fromAttr(v graphdef.AttrValue) attrDoc {
	switch v.Kind {
	case graphdef.KindString:
		return attrDoc{S: &v.S}
	case graphdef.KindInt:
		return attrDoc{I: &v.I}
	case graphdef.KindFloat:
		return attrDoc{F: &v.F}
	case graphdef.KindBool:
		return attrDoc{B: &v.B}
	case graphdef.KindType:
		t := string(v.Type)
		return attrDoc{Type: &t}
	case graphdef.KindShape:
		if v.Shape == nil {
			return attrDoc{Shape: &shapeDoc{UnknownRank: true}}
		}
		return attrDoc{Shape: &shapeDoc{Dims: v.Shape.Dims, UnknownRank: v.Shape.UnknownRank}}
	case graphdef.KindTensor:
		return attrDoc{Tensor: &tensorDoc{
			DType:     string(v.Tensor.DType),
			Dims:      v.Tensor.Shape.Dims,
			Int64Val:  v.Tensor.Int64Val,
			FloatVal:  v.Tensor.FloatVal,
			StringVal: v.Tensor.StringVal,
			BoolVal:   v.Tensor.BoolVal,
		}}
	case graphdef.KindFunc:
		return attrDoc{Func: &funcDoc{Name: v.Func.Name, Attrs: fromAttrMap(v.Func.Attrs)}}
	case graphdef.KindList:
		items := make([]attrDoc, len(v.List))
		for i, item := range v.List {
			items[i] = fromAttr(item)
		}
		return attrDoc{List: &items}
	default:
		return attrDoc{}
	}
}

func fromAttrMap(attrs map[string]graphdef.AttrValue) map[string]attrDoc {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]attrDoc, len(attrs))
	for k, v := range attrs {
		if v.Kind == graphdef.KindNone {
			continue
		}
		out[k] = fromAttr(v)
	}
	return out
}
