package format

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// TypeName is the object type handled by this module.
const TypeName = "Format"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the members read by the Format evaluator.
type Input struct {
	Template *string   `cty:"template"`
	Args     cty.Value `cty:"args"`
}

// Evaluate formats template with args, like the format function.
func Evaluate(ctx context.Context, obj *objmodel.Object, _ registry.Resolver) (any, error) {
	var input Input
	if err := registry.DecodeInput(obj, &input); err != nil {
		return nil, err
	}

	if input.Template == nil {
		return nil, fmt.Errorf("%s: template is required", obj)
	}

	callArgs := []cty.Value{cty.StringVal(*input.Template)}
	if !input.Args.IsNull() {
		if !input.Args.CanIterateElements() {
			return nil, fmt.Errorf("%s: args must be a list, got %s", obj, input.Args.Type().FriendlyName())
		}
		for it := input.Args.ElementIterator(); it.Next(); {
			_, v := it.Element()
			callArgs = append(callArgs, v)
		}
	}

	out, err := stdlib.FormatFunc.Call(callArgs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", obj, err)
	}
	return out, nil
}

// Register registers the evaluator with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterEvaluator(TypeName, &registry.RegisteredEvaluator{
		NewInput: func() any { return new(Input) },
		Fn:       registry.EvaluatorFunc(Evaluate),
	})
}
