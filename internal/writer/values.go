package writer

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/hclgraph/internal/exprrefs"
	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/zclconf/go-cty/cty"
)

type findFunc func(name string) (any, bool)

// valueOf returns what a reference to ref evaluates to: the object itself,
// or an evaluator's result. It fails for evaluators that have not run.
func (w *Writer) valueOf(ref any) (any, bool) {
	obj, ok := ref.(*objmodel.Object)
	if !ok {
		return ref, true
	}
	st := w.states[obj]
	if st == nil || st.evaluator == nil {
		return obj, true
	}
	if st.evaluated {
		return st.result, true
	}
	return nil, false
}

// lookup resolves name to a usable value. Until the document ends only
// fully initialized objects are usable.
func (w *Writer) lookup(find findFunc, name string) (any, bool) {
	if find == nil {
		return nil, false
	}
	found, ok := find(name)
	if !ok {
		return nil, false
	}
	if obj, isObj := found.(*objmodel.Object); isObj && !w.closing {
		if st := w.states[obj]; st != nil && !st.complete {
			return nil, false
		}
	}
	return w.valueOf(found)
}

// evaluate evaluates expr against the names find can see. When some root
// names are not usable yet it returns them instead of a value.
func (w *Writer) evaluate(expr hcl.Expression, find findFunc) (cty.Value, []string, error) {
	if err := w.checkFunctions(expr); err != nil {
		return cty.NilVal, nil, err
	}
	names := exprrefs.RootNames(expr)
	vars := make(map[string]cty.Value, len(names))
	var missing []string
	for _, name := range names {
		v, ok := w.lookup(find, name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		vars[name] = objmodel.ToCty(v)
	}
	if len(missing) > 0 {
		return cty.NilVal, missing, nil
	}

	val, diags := expr.Value(&hcl.EvalContext{
		Variables: vars,
		Functions: w.reg.Functions,
	})
	if diags.HasErrors() {
		return cty.NilVal, nil, fmt.Errorf("failed to evaluate expression at %s: %w", expr.Range(), diags)
	}
	return val, nil, nil
}

// checkFunctions rejects calls to functions the registry does not provide,
// so a deferred expression fails where it is written.
func (w *Writer) checkFunctions(expr hcl.Expression) error {
	for _, name := range exprrefs.CalledFunctions(expr) {
		if _, ok := w.reg.Functions[name]; !ok {
			return fmt.Errorf("%s: call to unknown function %q", expr.Range(), name)
		}
	}
	return nil
}

func traversalKeys(expr hcl.Expression) []string {
	refs := exprrefs.References(expr)
	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = exprrefs.TraversalKey(ref)
	}
	return keys
}
