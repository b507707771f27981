package objmodel

import (
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// ToCty converts v into a cty value for expression evaluation. Objects
// become cty objects of their members; an object reached again through its
// own members converts to null.
func ToCty(v any) cty.Value {
	return toCty(v, make(map[*Object]bool))
}

func toCty(v any, onPath map[*Object]bool) cty.Value {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case cty.Value:
		if val == cty.NilVal {
			return cty.NullVal(cty.DynamicPseudoType)
		}
		return val
	case []any:
		if len(val) == 0 {
			return cty.EmptyTupleVal
		}
		elems := make([]cty.Value, len(val))
		for i, e := range val {
			elems[i] = toCty(e, onPath)
		}
		return cty.TupleVal(elems)
	case *Object:
		if val == nil || onPath[val] {
			return cty.NullVal(cty.DynamicPseudoType)
		}
		onPath[val] = true
		defer delete(onPath, val)

		attrs := make(map[string]cty.Value, len(val.order)+1)
		for _, m := range val.order {
			attrs[m] = toCty(val.members[m], onPath)
		}
		if val.HasValue() {
			if _, shadowed := attrs["value"]; !shadowed {
				attrs["value"] = val.Value
			}
		}
		if len(attrs) == 0 {
			return cty.EmptyObjectVal
		}
		return cty.ObjectVal(attrs)
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}

// ToNative converts a member value into plain Go data: strings, float64,
// bools, slices, maps and nil. Objects are converted by fn so callers decide
// between nesting and referencing.
func ToNative(v any, fn func(*Object) any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case cty.Value:
		return CtyToNative(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = ToNative(e, fn)
		}
		return out
	case *Object:
		return fn(val)
	default:
		return nil
	}
}

// CtyToNative converts a cty value into plain Go data.
func CtyToNative(v cty.Value) any {
	if v == cty.NilVal || v.IsNull() {
		return nil
	}
	if !v.IsKnown() {
		return "<unknown>"
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i
			}
		}
		f, _ := bf.Float64()
		return f
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = CtyToNative(ev)
		}
		return out
	case v.CanIterateElements():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, CtyToNative(ev))
		}
		return out
	default:
		return nil
	}
}
