// Package graphdef defines the in-memory representation of a dataset
// computation graph: nodes keyed by unique name, typed attribute values, and a
// shared library of named function definitions.
//
// # Arena and Index
//
// Nodes are stored in insertion order and indexed by name. Edges are never
// memory links; every input is a string reference (see package nodeid)
// resolved through the index. Functions are stored the same way in a Library
// and referenced by name from node attributes. Nothing in the library points
// back at graph nodes, so removing a function is a reachability question that
// the caller answers (see mapfusion's pruner), not an ownership one.
//
// # Lifecycle
//
//  1. **Construction:** a loader (hcl_adapter, yaml_adapter) or a test builder
//     populates a Graph via AddNode and Library.Add.
//  2. **Rewriting:** optimizer passes mutate a Clone and commit it on success.
//  3. **Validation:** Validate checks that no reference dangles and that data
//     and control edges form a DAG.
//
// A Graph is not safe for concurrent mutation. Optimizer passes own it
// exclusively for the duration of a call.
package graphdef
