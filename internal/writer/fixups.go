package writer

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/hclgraph/internal/fixup"
	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/objstack"
	"github.com/specialistvlad/hclgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// runResolved is the trigger loop: it runs every token the graph has
// resolved, including the ones resolved while running.
func (w *Writer) runResolved() error {
	for {
		tok, ok := w.graph.TakeNextResolved()
		if !ok {
			return nil
		}
		if err := w.execute(tok); err != nil {
			return err
		}
	}
}

// execute runs tok and deals with names it still could not see.
func (w *Writer) execute(tok *fixup.Token) error {
	missing, err := w.run(tok)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		if w.closing {
			return w.deferOrGiveUp(tok, missing)
		}
		return w.repend(tok, missing)
	}
	w.afterRun(tok)
	return nil
}

// run performs the work of tok. It returns the names that kept it from
// finishing.
func (w *Writer) run(tok *fixup.Token) ([]string, error) {
	switch tok.Kind {
	case fixup.PendingChildSubtree:
		if tok.IsOrderingOnly() {
			return nil, nil
		}
		child := tok.ReferencedObject.(*objmodel.Object)
		if parent, ok := tok.Target.Instance.(*objmodel.Object); ok {
			parent.Adopt(child)
		}
		return nil, w.assign(tok.Target, child)

	case fixup.PropertyValueConversion:
		if tok.CanAssignDirectly {
			return w.runDirect(tok)
		}
		val, missing, err := w.runExpression(tok)
		if err != nil || len(missing) > 0 {
			return missing, err
		}
		return nil, w.assign(tok.Target, val)

	case fixup.ObjectInitializationConversion:
		val, missing, err := w.runExpression(tok)
		if err != nil || len(missing) > 0 {
			return missing, err
		}
		tok.Target.Instance.(*objmodel.Object).Value = val
		return nil, nil

	case fixup.DeferredEvaluationFirstRun:
		if tok.IsOrderingOnly() {
			return nil, nil
		}
		st := w.states[tok.ReferencedObject.(*objmodel.Object)]
		st.released = true
		return w.invokeUnlessParked(st, tok)

	case fixup.DeferredEvaluationRerun:
		st := w.states[tok.Payload.(*objmodel.Object)]
		return w.invokeUnlessParked(st, tok)

	default:
		return nil, &fixup.InvalidTokenError{Reason: "unknown kind", Token: tok}
	}
}

func (w *Writer) runDirect(tok *fixup.Token) ([]string, error) {
	ref := tok.ReferencedObject
	if ref == nil {
		found, ok := tok.ResolveName(tok.NeededNames[0])
		if !ok {
			return tok.NeededNames, nil
		}
		ref = found
	}
	val, ok := w.valueOf(ref)
	if !ok {
		return []string{ref.(*objmodel.Object).Name}, nil
	}
	if obj, isObj := ref.(*objmodel.Object); isObj && w.closing && !w.states[obj].complete {
		// Assigned before it is fully initialized, so the target must not
		// complete before it does.
		w.graph.AddEndOfParseDependency(obj, tok.Target)
	}
	return nil, w.assign(tok.Target, val)
}

func (w *Writer) runExpression(tok *fixup.Token) (cty.Value, []string, error) {
	expr, ok := tok.Payload.(hcl.Expression)
	if !ok {
		return cty.NilVal, nil, &fixup.InvalidTokenError{Reason: "re-evaluation has no expression", Token: tok}
	}
	return w.evaluate(expr, tok.SavedWalkState.FindName)
}

// evaluateObject runs st's evaluator and pends a rerun when it asks for names.
func (w *Writer) evaluateObject(st *objState) error {
	missing, err := w.invoke(st)
	if err != nil || len(missing) == 0 {
		return err
	}
	return w.repend(w.rerunToken(st, nil), missing)
}

// invokeUnlessParked invokes st unless tokens inside it are parked on
// other evaluations. Then the run is held until the last of them is
// released, and the slot it fills stays incomplete meanwhile.
func (w *Writer) invokeUnlessParked(st *objState, tok *fixup.Token) ([]string, error) {
	if st.evaluated || w.evalWaits[st.obj] == 0 {
		return w.invoke(st)
	}
	if _, held := w.parkedRuns[st.obj]; !held {
		w.parkedRuns[st.obj] = tok
		w.waitingOn[tok.Target.Instance]++
		w.logger.Debug("Evaluation held for parked members.", "type", st.obj.Type, "name", st.obj.Name, "parked", w.evalWaits[st.obj])
	}
	return nil, nil
}

// invoke calls st's evaluator. On success the result is assigned and the
// object completes.
func (w *Writer) invoke(st *objState) ([]string, error) {
	if st.evaluated {
		return nil, nil
	}
	res, err := st.evaluator.Fn.Evaluate(w.ctx, st.obj, resolver{w: w, frame: st.frame})
	var pending *registry.PendingNamesError
	if errors.As(err, &pending) {
		w.logger.Debug("Evaluation waiting on names.", "type", st.obj.Type, "names", pending.Names)
		return pending.Names, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s at line %d: %w", st.obj, st.obj.Line, err)
	}
	return nil, w.setResult(st, res)
}

func (w *Writer) setResult(st *objState, res any) error {
	st.evaluated = true
	st.result = res
	if err := w.assign(w.slotTarget(st), res); err != nil {
		return err
	}
	w.complete(st)
	return nil
}

func (w *Writer) rerunToken(st *objState, names []string) *fixup.Token {
	return &fixup.Token{
		Kind:           fixup.DeferredEvaluationRerun,
		Target:         w.slotTarget(st),
		NeededNames:    names,
		SavedWalkState: st.frame,
		Payload:        st.obj,
		Line:           st.obj.Line,
		Column:         st.obj.Column,
	}
}

// repend puts tok back into the graph waiting on missing.
func (w *Writer) repend(tok *fixup.Token, missing []string) error {
	if tok.Kind == fixup.DeferredEvaluationFirstRun {
		tok = w.rerunToken(w.states[tok.ReferencedObject.(*objmodel.Object)], nil)
	}
	tok.NeededNames = append([]string(nil), missing...)
	tok.Target.InstanceStillBeingBuilt = w.stack.IsOnStack(tok.Target.Instance)
	return w.graph.AddDependency(tok)
}

// afterRun completes the target of tok when nothing else is pending for it.
func (w *Writer) afterRun(tok *fixup.Token) {
	if w.draining {
		return
	}
	obj, ok := tok.Target.Instance.(*objmodel.Object)
	if !ok {
		return
	}
	st := w.states[obj]
	if st == nil || st.complete || w.stack.IsOnStack(obj) {
		return
	}
	if w.graph.HasUnresolvedOrPendingChildren(obj) || w.waitingOn[obj] > 0 {
		return
	}
	w.subtreeDone(st)
}

// subtreeDone is called once nothing is pending for st's object. Normal
// objects complete; evaluators become ready for their first run.
func (w *Writer) subtreeDone(st *objState) {
	if st.evaluator == nil {
		w.complete(st)
		return
	}
	if !st.released {
		st.released = true
		w.graph.ResolveDependenciesTo(st.obj, "")
	}
}

// complete marks st's object fully initialized and resolves everything
// waiting on it.
func (w *Writer) complete(st *objState) {
	if st.complete {
		return
	}
	st.complete = true
	st.obj.Complete = true
	w.logger.Debug("Object complete.", "type", st.obj.Type, "name", st.obj.Name, "path", st.obj.Path.String())
	if w.opts.OnComplete != nil {
		w.opts.OnComplete(st.obj)
	}
	w.graph.ResolveDependenciesTo(st.obj, st.obj.Name)

	if waiting, ok := w.waiters[st.obj]; ok {
		delete(w.waiters, st.obj)
		w.ready = append(w.ready, waiting...)
	}
}

// resolver exposes the names visible from an evaluated object.
type resolver struct {
	w     *Writer
	frame *objstack.Frame
}

// ResolveName implements registry.Resolver.
func (r resolver) ResolveName(name string) (any, bool) {
	return r.w.lookup(r.frame.FindName, name)
}
