package graphdef

import (
	"fmt"
	"maps"
	"slices"
)

// ArgDef declares a single function input or output.
type ArgDef struct {
	Name string
	Type DataType
}

// Signature is the declared interface of a function. For per-element
// functions the element arguments come first and captured arguments follow.
type Signature struct {
	Name       string
	InputArgs  []ArgDef
	OutputArgs []ArgDef
}

// FunctionDef is a named, pure, reusable subgraph.
type FunctionDef struct {
	Signature Signature
	Attrs     map[string]AttrValue
	// Nodes is the body. Inputs use the function-body reference grammar.
	Nodes []*Node
	// Ret maps each output argument name to the body reference producing it.
	Ret map[string]string
}

// Name is a shorthand for Signature.Name.
func (f *FunctionDef) Name() string {
	return f.Signature.Name
}

// Node returns the body node with the given name.
func (f *FunctionDef) Node(name string) (*Node, bool) {
	for _, n := range f.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the function.
func (f *FunctionDef) Clone() *FunctionDef {
	out := &FunctionDef{
		Signature: Signature{
			Name:       f.Signature.Name,
			InputArgs:  slices.Clone(f.Signature.InputArgs),
			OutputArgs: slices.Clone(f.Signature.OutputArgs),
		},
		Attrs: cloneAttrs(f.Attrs),
		Ret:   maps.Clone(f.Ret),
	}
	for _, n := range f.Nodes {
		out.Nodes = append(out.Nodes, n.Clone())
	}
	return out
}

// Callees returns the names of functions this function invokes, either via a
// body node whose op names a library function or via a function attribute.
func (f *FunctionDef) Callees(lib *Library) []string {
	var out []string
	for _, n := range f.Nodes {
		if lib != nil && lib.Contains(n.Op) {
			out = append(out, n.Op)
		}
		out = append(out, n.FuncNames()...)
	}
	return out
}

// Library is the shared set of function definitions, keyed by unique name.
type Library struct {
	funcs map[string]*FunctionDef
}

// NewLibrary creates an empty function library.
func NewLibrary() *Library {
	return &Library{funcs: make(map[string]*FunctionDef)}
}

// Add registers a function. Names must be unique.
func (l *Library) Add(f *FunctionDef) error {
	name := f.Name()
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if _, exists := l.funcs[name]; exists {
		return fmt.Errorf("function %q already exists in library", name)
	}
	l.funcs[name] = f
	return nil
}

// Find returns the function with the given name.
func (l *Library) Find(name string) (*FunctionDef, bool) {
	f, ok := l.funcs[name]
	return f, ok
}

// Contains reports whether a function with the given name is registered.
func (l *Library) Contains(name string) bool {
	_, ok := l.funcs[name]
	return ok
}

// Remove deletes the named function. Removing a missing name is a no-op.
func (l *Library) Remove(name string) {
	delete(l.funcs, name)
}

// Names returns all function names in sorted order.
func (l *Library) Names() []string {
	return sortedKeys(l.funcs)
}

// Len returns the number of registered functions.
func (l *Library) Len() int {
	return len(l.funcs)
}

// Clone returns a deep copy of the library.
func (l *Library) Clone() *Library {
	out := NewLibrary()
	for name, f := range l.funcs {
		out.funcs[name] = f.Clone()
	}
	return out
}
