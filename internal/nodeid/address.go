// internal/nodeid/address.go
package nodeid

import (
	"strconv"
	"strings"
)

// String serializes the Ref into its canonical representation.
func (r Ref) String() string {
	var sb strings.Builder
	if r.Control {
		sb.WriteRune('^')
	}
	sb.WriteString(r.Node)
	if !r.Control && r.HasPort() {
		sb.WriteRune(':')
		sb.WriteString(strconv.Itoa(r.Port))
	}
	return sb.String()
}

// SameOutput reports whether two references observe the same node output.
// An implicit port and port 0 are the same output.
func (r Ref) SameOutput(other Ref) bool {
	if r.Control || other.Control {
		return r.Control == other.Control && r.Node == other.Node
	}
	return r.Node == other.Node && r.OutputPort() == other.OutputPort()
}

// String serializes the BodyRef into its canonical representation.
func (b BodyRef) String() string {
	if b.Control {
		return "^" + b.Node
	}
	if b.Output == "" {
		return b.Node
	}
	return b.Node + ":" + b.Output + ":" + strconv.Itoa(b.Index)
}
