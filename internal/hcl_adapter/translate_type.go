// This file contains the logic for parsing HCL type expressions (e.g. `int64`
// or `"variant"`) in function argument blocks into graphdef.DataType.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/mapfuse/internal/ctxlog"
	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToDataType converts an argument's type expression into its
// DataType. A bare keyword and a quoted string are both accepted.
func typeExprToDataType(ctx context.Context, expr hcl.Expression) (graphdef.DataType, error) {
	logger := ctxlog.FromContext(ctx)

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return "", fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		rootName := v.Traversal.RootName()
		logger.Debug("Parsing type expression as a keyword.", "keyword", rootName)
		return graphdef.DataType(rootName), nil

	case *hclsyntax.TemplateExpr:
		if len(v.Parts) == 1 {
			if lit, isLit := v.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
				logger.Debug("Parsing type expression as a string.", "type", lit.Val.AsString())
				return graphdef.DataType(lit.Val.AsString()), nil
			}
		}
		return "", fmt.Errorf("type strings cannot contain interpolations")

	default:
		return "", fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}
