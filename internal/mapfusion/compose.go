package mapfusion

import (
	"fmt"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/specialistvlad/mapfuse/internal/nodeid"
)

// composeFunctions builds h = g∘f. The last gCaptured inputs of g are its
// captured arguments; the leading ones receive f's outputs in order.
//
// h takes f's inputs followed by g's captured inputs and returns g's outputs.
// Body nodes of f and g are prefixed so they cannot collide. Neither f nor g
// is modified, and h is not registered anywhere.
func composeFunctions(f, g *graphdef.FunctionDef, gCaptured int) (*graphdef.FunctionDef, error) {
	gElements := len(g.Signature.InputArgs) - gCaptured
	if gElements < 0 || gElements != len(f.Signature.OutputArgs) {
		return nil, fmt.Errorf("%w: %q returns %d values, %q takes %d element arguments",
			ErrArityMismatch, f.Name(), len(f.Signature.OutputArgs), g.Name(), gElements)
	}

	h := &graphdef.FunctionDef{
		Signature: graphdef.Signature{
			Name:       "composed_" + f.Name() + "_" + g.Name(),
			InputArgs:  append([]graphdef.ArgDef(nil), f.Signature.InputArgs...),
			OutputArgs: append([]graphdef.ArgDef(nil), g.Signature.OutputArgs...),
		},
		Ret: make(map[string]string, len(g.Signature.OutputArgs)),
	}

	argNames := make(map[string]struct{}, len(f.Signature.InputArgs))
	for _, a := range f.Signature.InputArgs {
		argNames[a.Name] = struct{}{}
	}

	fPrefix := stagePrefix(f, 0)
	gPrefix := stagePrefix(g, 1)

	// f's body: arguments keep their names, nodes get the stage prefix.
	fRewrite := func(raw string) (string, error) {
		return rewriteBodyRef(raw, fPrefix, func(arg string) string { return arg })
	}
	for _, n := range f.Nodes {
		c, err := prefixedNode(n, fPrefix, fRewrite)
		if err != nil {
			return nil, fmt.Errorf("composing %q: %w", f.Name(), err)
		}
		h.Nodes = append(h.Nodes, c)
	}

	// f's outputs, as references valid inside h.
	fOutputs := make([]string, len(f.Signature.OutputArgs))
	for i, out := range f.Signature.OutputArgs {
		raw, ok := f.Ret[out.Name]
		if !ok {
			return nil, fmt.Errorf("composing %q: output %q has no return value", f.Name(), out.Name)
		}
		ref, err := fRewrite(raw)
		if err != nil {
			return nil, fmt.Errorf("composing %q: %w", f.Name(), err)
		}
		fOutputs[i] = ref
	}

	// g's arguments: element arguments are bound to f's outputs, captured
	// arguments are appended to h's inputs under a free name.
	gArgs := make(map[string]string, len(g.Signature.InputArgs))
	for i, a := range g.Signature.InputArgs {
		if i < gElements {
			gArgs[a.Name] = fOutputs[i]
			continue
		}
		name := freeArgName(a.Name, argNames)
		argNames[name] = struct{}{}
		h.Signature.InputArgs = append(h.Signature.InputArgs, graphdef.ArgDef{Name: name, Type: a.Type})
		gArgs[a.Name] = name
	}
	gRewrite := func(raw string) (string, error) {
		return rewriteBodyRef(raw, gPrefix, func(arg string) string {
			if bound, ok := gArgs[arg]; ok {
				return bound
			}
			return arg
		})
	}
	for _, n := range g.Nodes {
		c, err := prefixedNode(n, gPrefix, gRewrite)
		if err != nil {
			return nil, fmt.Errorf("composing %q: %w", g.Name(), err)
		}
		h.Nodes = append(h.Nodes, c)
	}

	for _, out := range g.Signature.OutputArgs {
		raw, ok := g.Ret[out.Name]
		if !ok {
			return nil, fmt.Errorf("composing %q: output %q has no return value", g.Name(), out.Name)
		}
		ref, err := gRewrite(raw)
		if err != nil {
			return nil, fmt.Errorf("composing %q: %w", g.Name(), err)
		}
		h.Ret[out.Name] = ref
	}
	return h, nil
}

func stagePrefix(f *graphdef.FunctionDef, stage int) string {
	return fmt.Sprintf("%s_%d/", f.Name(), stage)
}

// prefixedNode clones a body node under the prefix and rewrites its inputs.
func prefixedNode(n *graphdef.Node, prefix string, rewrite func(string) (string, error)) (*graphdef.Node, error) {
	c := n.Clone()
	c.Name = prefix + n.Name
	for i, in := range c.Inputs {
		out, err := rewrite(in)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		c.Inputs[i] = out
	}
	return c, nil
}

// rewriteBodyRef moves a body reference into the composed function: node
// references get the prefix and argument references go through bindArg.
func rewriteBodyRef(raw, prefix string, bindArg func(string) string) (string, error) {
	ref, err := nodeid.ParseBody(raw)
	if err != nil {
		return "", err
	}
	if ref.IsArg() {
		return bindArg(ref.Node), nil
	}
	ref.Node = prefix + ref.Node
	return ref.String(), nil
}

// freeArgName returns name, or name_<k> for the smallest k not in taken.
func freeArgName(name string, taken map[string]struct{}) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for k := 1; ; k++ {
		candidate := fmt.Sprintf("%s_%d", name, k)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
