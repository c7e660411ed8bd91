package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeFloats evaluates an HCL expression and converts it into a []float64,
// accepting any cty value convertible to a list of numbers.
func decodeFloats(expr hcl.Expression) ([]float64, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating expression: %w", diags)
	}

	listVal, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("expected a list of numbers: %w", err)
	}

	var out []float64
	for it := listVal.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		var f float64
		if err := gocty.FromCtyValue(elem, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
