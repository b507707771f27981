package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/hclgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry checks that every evaluator can be called and that its
// declared input decodes from cty, and that every function is addressable
// from an expression.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, typeName := range r.EvaluatorTypes() {
		ev := r.Evaluators[typeName]
		if ev == nil || ev.Fn == nil {
			errs = append(errs, fmt.Sprintf("evaluator '%s': no Go function registered", typeName))
			continue
		}
		if ev.NewInput == nil {
			logger.Debug("Evaluator has no input struct, members are not type checked.", "type", typeName)
			continue
		}

		input := ev.NewInput()
		ty, err := gocty.ImpliedType(input)
		if err != nil {
			errs = append(errs, fmt.Sprintf("evaluator '%s': could not imply cty type from Go input %T: %v", typeName, input, err))
			continue
		}
		if !ty.IsObjectType() {
			errs = append(errs, fmt.Sprintf("evaluator '%s': input must be a struct, got '%s'", typeName, ty.FriendlyName()))
			continue
		}
		for name, attrTy := range ty.AttributeTypes() {
			if !hclsyntax.ValidIdentifier(name) {
				errs = append(errs, fmt.Sprintf("evaluator '%s': input member '%s' is not a valid identifier", typeName, name))
			}
			if attrTy.Equals(cty.DynamicPseudoType) {
				logger.Debug("Evaluator input accepts any type.", "type", typeName, "member", name)
			}
		}
	}

	for _, name := range r.FunctionNames() {
		if !hclsyntax.ValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("function '%s': name is not a valid identifier", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
