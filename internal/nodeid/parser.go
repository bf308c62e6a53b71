// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
)

// refRegex parses a graph-level reference, e.g. `range`, `split:1` or `^init`.
var refRegex = regexp.MustCompile(`^(\^)?([A-Za-z0-9.][A-Za-z0-9_./>\-]*)(?::(\d+))?$`)

// bodyRefRegex parses a function-body reference, e.g. `x`, `mul:z:0` or `^two`.
var bodyRefRegex = regexp.MustCompile(`^(\^)?([A-Za-z0-9.][A-Za-z0-9_./>\-]*)(?::([A-Za-z_][A-Za-z0-9_]*):(\d+))?$`)

// Parse creates a new Ref by parsing its canonical string representation.
func Parse(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, fmt.Errorf("input reference cannot be empty")
	}

	matches := refRegex.FindStringSubmatch(raw)
	if matches == nil {
		return Ref{}, fmt.Errorf("invalid input reference format: %q", raw)
	}

	ref := NewRef(matches[2])
	ref.Control = matches[1] != ""
	if matches[3] != "" {
		if ref.Control {
			return Ref{}, fmt.Errorf("control reference %q cannot name an output port", raw)
		}
		port, err := strconv.Atoi(matches[3])
		if err != nil {
			// Unreachable due to regex `\d+`
			return Ref{}, fmt.Errorf("internal error parsing port: %w", err)
		}
		ref.Port = port
	}
	return ref, nil
}

// ParseBody creates a new BodyRef by parsing a function-body reference.
func ParseBody(raw string) (BodyRef, error) {
	if raw == "" {
		return BodyRef{}, fmt.Errorf("body reference cannot be empty")
	}

	matches := bodyRefRegex.FindStringSubmatch(raw)
	if matches == nil {
		return BodyRef{}, fmt.Errorf("invalid body reference format: %q", raw)
	}

	ref := BodyRef{Node: matches[2], Control: matches[1] != ""}
	if matches[3] != "" {
		if ref.Control {
			return BodyRef{}, fmt.Errorf("control reference %q cannot name an output", raw)
		}
		index, err := strconv.Atoi(matches[4])
		if err != nil {
			return BodyRef{}, fmt.Errorf("internal error parsing output index: %w", err)
		}
		ref.Output = matches[3]
		ref.Index = index
	}
	return ref, nil
}

// IsControl reports whether a raw reference is a control dependency without
// fully parsing it.
func IsControl(raw string) bool {
	return len(raw) > 0 && raw[0] == '^'
}
