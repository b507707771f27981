package lookup

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/registry"
)

// TypeName is the object type handled by this module.
const TypeName = "Lookup"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the members read by the Lookup evaluator.
type Input struct {
	Ref *string `cty:"ref"`
}

// Evaluate returns the object registered under ref. When the name is not
// available yet it asks to be evaluated again.
func Evaluate(ctx context.Context, obj *objmodel.Object, r registry.Resolver) (any, error) {
	var input Input
	if err := registry.DecodeInput(obj, &input); err != nil {
		return nil, err
	}
	if input.Ref == nil {
		return nil, fmt.Errorf("%s: ref is required", obj)
	}
	found, ok := r.ResolveName(*input.Ref)
	if !ok {
		return nil, &registry.PendingNamesError{Names: []string{*input.Ref}}
	}
	return found, nil
}

// Register registers the evaluator with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterEvaluator(TypeName, &registry.RegisteredEvaluator{
		NewInput: func() any { return new(Input) },
		Fn:       registry.EvaluatorFunc(Evaluate),
	})
}
