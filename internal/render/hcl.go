package render

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/hclgraph/internal/hcldoc"
	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/zclconf/go-cty/cty"
)

// HCL renders v as an HCL document in the shape hcldoc reads. A root that
// is not an object is written as a single "value" attribute.
func HCL(v any) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	switch root := v.(type) {
	case *objmodel.Object:
		block := body.AppendNewBlock(hcldoc.RootBlockType, []string{root.Type})
		if err := writeObject(block.Body(), root); err != nil {
			return nil, err
		}
	default:
		tokens, err := valueTokens(nil, v)
		if err != nil {
			return nil, err
		}
		body.SetAttributeRaw("value", tokens)
	}
	return hclwrite.Format(f.Bytes()), nil
}

func writeObject(body *hclwrite.Body, obj *objmodel.Object) error {
	if obj.Name != "" {
		body.SetAttributeValue(hcldoc.DirectiveName, cty.StringVal(obj.Name))
	}
	if obj.HasValue() {
		body.SetAttributeValue(hcldoc.DirectiveInit, obj.Value)
	}

	for _, member := range obj.Members() {
		v, _ := obj.Get(member)

		if child, ok := v.(*objmodel.Object); ok && owned(obj, child) {
			block := body.AppendNewBlock(member, []string{child.Type})
			if err := writeObject(block.Body(), child); err != nil {
				return err
			}
			continue
		}
		if items, ok := v.([]any); ok && allOwned(obj, items) {
			for _, item := range items {
				child := item.(*objmodel.Object)
				block := body.AppendNewBlock(member, []string{child.Type})
				if err := writeObject(block.Body(), child); err != nil {
					return err
				}
			}
			continue
		}

		tokens, err := valueTokens(obj, v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", obj, member, err)
		}
		body.SetAttributeRaw(member, tokens)
	}
	return nil
}

func allOwned(parent *objmodel.Object, items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		child, ok := item.(*objmodel.Object)
		if !ok || !owned(parent, child) {
			return false
		}
	}
	return true
}

// valueTokens renders an attribute value: cty values as literals, objects
// as references by name.
func valueTokens(parent *objmodel.Object, v any) (hclwrite.Tokens, error) {
	switch val := v.(type) {
	case nil:
		return hclwrite.TokensForValue(cty.NullVal(cty.DynamicPseudoType)), nil
	case cty.Value:
		if val == cty.NilVal {
			return hclwrite.TokensForValue(cty.NullVal(cty.DynamicPseudoType)), nil
		}
		if !val.IsWhollyKnown() {
			return nil, fmt.Errorf("cannot render unknown value")
		}
		return hclwrite.TokensForValue(val), nil
	case *objmodel.Object:
		if val.Name != "" {
			return hclwrite.TokensForTraversal(hcl.Traversal{hcl.TraverseRoot{Name: val.Name}}), nil
		}
		return hclwrite.TokensForValue(cty.StringVal(refName(val))), nil
	case []any:
		elems := make([]hclwrite.Tokens, 0, len(val))
		for _, item := range val {
			tokens, err := valueTokens(parent, item)
			if err != nil {
				return nil, err
			}
			elems = append(elems, tokens)
		}
		return hclwrite.TokensForTuple(elems), nil
	default:
		return nil, fmt.Errorf("cannot render %T", v)
	}
}
