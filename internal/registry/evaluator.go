package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Resolver gives an evaluator access to the named objects visible from the
// object being evaluated.
type Resolver interface {
	// ResolveName returns the fully initialized object bound to name.
	ResolveName(name string) (any, bool)
}

// Evaluator computes the value of an object. The returned value replaces
// the object wherever it is assigned; it may be a cty.Value or an
// *objmodel.Object.
type Evaluator interface {
	Evaluate(ctx context.Context, obj *objmodel.Object, r Resolver) (any, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, obj *objmodel.Object, r Resolver) (any, error)

// Evaluate implements Evaluator.
func (f EvaluatorFunc) Evaluate(ctx context.Context, obj *objmodel.Object, r Resolver) (any, error) {
	return f(ctx, obj, r)
}

// RegisteredEvaluator holds the compiled Go parts of an evaluator.
type RegisteredEvaluator struct {
	// NewInput returns a pointer to a struct with `cty` tags describing the
	// members the evaluator reads. Optional.
	NewInput func() any
	Fn       Evaluator
}

// PendingNamesError asks for the evaluation to be repeated once Names are
// available.
type PendingNamesError struct {
	Names []string
}

// Error implements the error interface.
func (e *PendingNamesError) Error() string {
	return "evaluation is waiting on names: " + strings.Join(e.Names, ", ")
}

// DecodeInput decodes the members of obj into target, a pointer to a struct
// with `cty` field tags. Members without a field are ignored; fields without
// a member receive null, so optional fields should be pointers.
func DecodeInput(obj *objmodel.Object, target any) error {
	ty, err := gocty.ImpliedType(target)
	if err != nil {
		return fmt.Errorf("cannot imply input type for %s: %w", obj.Type, err)
	}
	if !ty.IsObjectType() {
		return fmt.Errorf("input for %s must be a struct, got %s", obj.Type, ty.FriendlyName())
	}

	attrs := make(map[string]cty.Value, len(ty.AttributeTypes()))
	for name, attrTy := range ty.AttributeTypes() {
		v, ok := obj.Get(name)
		if !ok {
			attrs[name] = cty.NullVal(attrTy)
			continue
		}
		converted, err := convert.Convert(objmodel.ToCty(v), attrTy)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", obj.Type, name, err)
		}
		attrs[name] = converted
	}

	if err := gocty.FromCtyValue(cty.ObjectVal(attrs), target); err != nil {
		return fmt.Errorf("cannot decode input for %s: %w", obj.Type, err)
	}
	return nil
}
