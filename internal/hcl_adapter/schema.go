// This file defines the Go structs that map directly to the HCL graph schema.

package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// NodeBlock is a `node "<name>" { ... }` block, at file level or inside a
// function body.
type NodeBlock struct {
	Name   string         `hcl:"name,label"`
	Op     string         `hcl:"op"`
	Inputs []string       `hcl:"inputs,optional"`
	Device string         `hcl:"device,optional"`
	Attrs  hcl.Expression `hcl:"attrs,optional"`
}

// ArgBlock declares one function input or output, e.g.
// `input "x" { type = int64 }`.
type ArgBlock struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type"`
}

// FunctionBlock is a `function "<name>" { ... }` block.
type FunctionBlock struct {
	Name    string            `hcl:"name,label"`
	Inputs  []*ArgBlock       `hcl:"input,block"`
	Outputs []*ArgBlock       `hcl:"output,block"`
	Nodes   []*NodeBlock      `hcl:"node,block"`
	Attrs   hcl.Expression    `hcl:"attrs,optional"`
	Ret     map[string]string `hcl:"ret,optional"`
}
