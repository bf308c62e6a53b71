// internal/nodeid/doc.go

/*
Package nodeid provides a structured, type-safe representation for the input
references that connect nodes in a computation graph.

Two grammars are supported:

  - Graph level: `name`, `name:port`, or `^name` for a control dependency.
  - Function-body level: `arg` for a function input argument,
    `node:output:index` for a node output, or `^node` for a control dependency.

This package centralizes all formatting and parsing logic so that rewrites
can repoint references without string surgery.
*/
package nodeid
