package graphdef

import (
	"fmt"
	"slices"
	"strings"
)

// DataType is a tensor element type tag such as "int64" or "variant".
type DataType string

// Common element types.
const (
	DTInt32   DataType = "int32"
	DTInt64   DataType = "int64"
	DTFloat   DataType = "float"
	DTDouble  DataType = "double"
	DTBool    DataType = "bool"
	DTString  DataType = "string"
	DTVariant DataType = "variant"
)

// AttrKind distinguishes the populated member of an AttrValue.
type AttrKind int

const (
	KindNone AttrKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindType
	KindShape
	KindTensor
	KindFunc
	KindList
)

var attrKindNames = map[AttrKind]string{
	KindNone:   "none",
	KindString: "s",
	KindInt:    "i",
	KindFloat:  "f",
	KindBool:   "b",
	KindType:   "type",
	KindShape:  "shape",
	KindTensor: "tensor",
	KindFunc:   "func",
	KindList:   "list",
}

func (k AttrKind) String() string {
	if name, ok := attrKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("AttrKind(%d)", int(k))
}

// Shape describes tensor dimensions. A dimension of -1 is unknown.
type Shape struct {
	Dims        []int64
	UnknownRank bool
}

// String renders the shape in a compact, human-readable form.
func (s Shape) String() string {
	if s.UnknownRank {
		return "<unknown>"
	}
	parts := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		if d < 0 {
			parts[i] = "?"
			continue
		}
		parts[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Tensor is a small constant tensor carried in an attribute. Exactly one of
// the value slices is expected to be populated, matching DType.
type Tensor struct {
	DType     DataType
	Shape     Shape
	Int64Val  []int64
	FloatVal  []float64
	StringVal []string
	BoolVal   []bool
}

// NameAttrList is a function reference together with its instantiation
// attributes.
type NameAttrList struct {
	Name  string
	Attrs map[string]AttrValue
}

// AttrValue is a tagged union holding a single node or function attribute.
type AttrValue struct {
	Kind   AttrKind
	S      string
	I      int64
	F      float64
	B      bool
	Type   DataType
	Shape  *Shape
	Tensor *Tensor
	Func   *NameAttrList
	List   []AttrValue
}

func String(s string) AttrValue     { return AttrValue{Kind: KindString, S: s} }
func Int(i int64) AttrValue         { return AttrValue{Kind: KindInt, I: i} }
func Float(f float64) AttrValue     { return AttrValue{Kind: KindFloat, F: f} }
func Bool(b bool) AttrValue         { return AttrValue{Kind: KindBool, B: b} }
func Type(dt DataType) AttrValue    { return AttrValue{Kind: KindType, Type: dt} }
func List(v ...AttrValue) AttrValue { return AttrValue{Kind: KindList, List: v} }

// ShapeOf builds a shape attribute with known rank.
func ShapeOf(dims ...int64) AttrValue {
	return AttrValue{Kind: KindShape, Shape: &Shape{Dims: dims}}
}

// UnknownShape builds a shape attribute of unknown rank.
func UnknownShape() AttrValue {
	return AttrValue{Kind: KindShape, Shape: &Shape{UnknownRank: true}}
}

// TensorValue wraps a constant tensor.
func TensorValue(t Tensor) AttrValue {
	return AttrValue{Kind: KindTensor, Tensor: &t}
}

// Func builds a function reference attribute.
func Func(name string, attrs map[string]AttrValue) AttrValue {
	return AttrValue{Kind: KindFunc, Func: &NameAttrList{Name: name, Attrs: attrs}}
}

// TypeList builds a list of type tags, as used by `output_types` and `Targuments`.
func TypeList(types ...DataType) AttrValue {
	items := make([]AttrValue, len(types))
	for i, t := range types {
		items[i] = Type(t)
	}
	return List(items...)
}

// ShapeList builds a list of shapes, as used by `output_shapes`.
func ShapeList(shapes ...Shape) AttrValue {
	items := make([]AttrValue, len(shapes))
	for i, s := range shapes {
		sc := s
		sc.Dims = slices.Clone(s.Dims)
		items[i] = AttrValue{Kind: KindShape, Shape: &sc}
	}
	return List(items...)
}

// FuncNames returns the names of every function referenced by the value,
// including references nested in lists and in function attributes.
func (v AttrValue) FuncNames() []string {
	var names []string
	var walk func(AttrValue)
	walk = func(a AttrValue) {
		switch a.Kind {
		case KindFunc:
			if a.Func == nil {
				return
			}
			names = append(names, a.Func.Name)
			for _, k := range sortedKeys(a.Func.Attrs) {
				walk(a.Func.Attrs[k])
			}
		case KindList:
			for _, item := range a.List {
				walk(item)
			}
		}
	}
	walk(v)
	return names
}

// Clone returns a deep copy of the value.
func (v AttrValue) Clone() AttrValue {
	out := v
	if v.Shape != nil {
		s := *v.Shape
		s.Dims = slices.Clone(v.Shape.Dims)
		out.Shape = &s
	}
	if v.Tensor != nil {
		t := *v.Tensor
		t.Shape.Dims = slices.Clone(v.Tensor.Shape.Dims)
		t.Int64Val = slices.Clone(v.Tensor.Int64Val)
		t.FloatVal = slices.Clone(v.Tensor.FloatVal)
		t.StringVal = slices.Clone(v.Tensor.StringVal)
		t.BoolVal = slices.Clone(v.Tensor.BoolVal)
		out.Tensor = &t
	}
	if v.Func != nil {
		out.Func = &NameAttrList{Name: v.Func.Name, Attrs: cloneAttrs(v.Func.Attrs)}
	}
	if v.List != nil {
		out.List = make([]AttrValue, len(v.List))
		for i, item := range v.List {
			out.List[i] = item.Clone()
		}
	}
	return out
}

func cloneAttrs(attrs map[string]AttrValue) map[string]AttrValue {
	if attrs == nil {
		return nil
	}
	out := make(map[string]AttrValue, len(attrs))
	for k, v := range attrs {
		out[k] = v.Clone()
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
