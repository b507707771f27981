package writer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/hclgraph/internal/fixup"
	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/zclconf/go-cty/cty"
)

// Close ends the document. Every pending token is drained and run, every
// object is completed, and the root value is returned: the root object, or
// its evaluator's result.
func (w *Writer) Close() (any, error) {
	if w.closed {
		return nil, errors.New("writer is already closed")
	}
	w.closed = true
	if n := w.stack.Len(); n > 0 {
		return nil, fmt.Errorf("document ended with %d objects still open", n)
	}
	if w.root == nil {
		return nil, errors.New("document has no root object")
	}
	if err := w.runResolved(); err != nil {
		return nil, err
	}

	w.closing = true
	w.logger.Debug("Completing name references.", "pending", w.graph.Len(), "root_needs", w.graph.DependentNames(w.root))

	for _, tok := range w.graph.DrainSimpleFixups() {
		if err := w.execute(tok); err != nil {
			return nil, err
		}
	}
	if err := w.flush(); err != nil {
		return nil, err
	}

	for _, tok := range w.graph.DrainReparses() {
		if err := w.execute(tok); err != nil {
			return nil, err
		}
	}
	if err := w.flush(); err != nil {
		return nil, err
	}

	if err := w.replayObjectDependencies(); err != nil {
		return nil, err
	}
	if err := w.completeRemaining(); err != nil {
		return nil, err
	}

	if w.opts.Strict && len(w.unresolved) > 0 {
		return nil, &fixup.UnresolvedNameError{Refs: w.unresolved}
	}
	if st := w.states[w.root]; st.evaluator != nil {
		return w.rootValue, nil
	}
	return w.root, nil
}

// Unresolved returns the references that never resolved. In lenient mode
// they were assigned null.
func (w *Writer) Unresolved() []fixup.UnresolvedRef {
	return w.unresolved
}

// replayObjectDependencies runs the drained object dependencies in order and
// completes each target after its last token.
func (w *Writer) replayObjectDependencies() error {
	deps, err := w.graph.DrainObjectDependencies()
	w.drained = true
	if err != nil {
		return err
	}
	remaining := make(map[any]int)
	for _, tok := range deps {
		remaining[tok.Target.Instance]++
	}

	w.draining = true
	defer func() { w.draining = false }()
	for _, tok := range deps {
		if err := w.execute(tok); err != nil {
			return err
		}
		inst := tok.Target.Instance
		remaining[inst]--
		if remaining[inst] == 0 {
			w.finishTarget(inst)
		}
		if err := w.flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) finishTarget(inst any) {
	obj, ok := inst.(*objmodel.Object)
	if !ok {
		return
	}
	st := w.states[obj]
	if st == nil || st.complete || w.waitingOn[obj] > 0 {
		return
	}
	if w.graph.WasIncompleteAtEnd(obj) {
		w.logger.Debug("Completing object at end of document.", "type", obj.Type, "name", obj.Name)
	}
	if st.evaluator == nil {
		w.complete(st)
		return
	}
	st.released = true
}

// completeRemaining completes every object still incomplete, deepest
// first, and gives up on whatever still waits.
func (w *Writer) completeRemaining() error {
	w.final = true

	order := slices.Clone(w.created)
	slices.SortStableFunc(order, func(a, b *objState) int { return b.depth - a.depth })
	for _, st := range order {
		if st.complete {
			continue
		}
		if tok, held := w.parkedRuns[st.obj]; held {
			delete(w.parkedRuns, st.obj)
			w.waitingOn[tok.Target.Instance]--
		}
		if st.evaluator == nil {
			w.complete(st)
		} else if err := w.execute(w.rerunToken(st, nil)); err != nil {
			return err
		}
		if err := w.flush(); err != nil {
			return err
		}
	}

	for _, st := range w.created {
		waiting, ok := w.waiters[st.obj]
		if !ok {
			continue
		}
		delete(w.waiters, st.obj)
		for _, tok := range waiting {
			if err := w.release(tok); err != nil {
				return err
			}
		}
	}
	return w.flush()
}

// flush runs resolved tokens and tokens released from waiting until
// neither is left.
func (w *Writer) flush() error {
	for {
		if err := w.runResolved(); err != nil {
			return err
		}
		if len(w.ready) == 0 {
			return nil
		}
		tok := w.ready[0]
		w.ready = w.ready[1:]
		if err := w.release(tok); err != nil {
			return err
		}
	}
}

// deferOrGiveUp handles names a token still misses after the document
// ended. Names bound to evaluators that have not run yet are waited for;
// anything else is unresolved.
func (w *Writer) deferOrGiveUp(tok *fixup.Token, missing []string) error {
	if !w.final {
		for _, name := range missing {
			found, ok := tok.ResolveName(name)
			if !ok {
				continue
			}
			obj, isObj := found.(*objmodel.Object)
			if !isObj {
				continue
			}
			if st := w.states[obj]; st != nil && st.evaluator != nil && !st.evaluated {
				w.park(tok, st)
				return nil
			}
		}
	}
	return w.giveUp(tok, missing)
}

// park holds tok until on has produced its result. Before object
// dependencies are drained the wait is also recorded in the graph, so
// draining orders it and detects evaluations that wait on each other.
func (w *Writer) park(tok *fixup.Token, on *objState) {
	w.waiters[on.obj] = append(w.waiters[on.obj], tok)
	w.waitingOn[tok.Target.Instance]++
	owner := w.owningEvaluator(tok)
	if owner != nil {
		w.evalWaits[owner.obj]++
	}
	w.logger.Debug("Waiting for deferred evaluation.", "name", on.obj.Name, "kind", tok.Kind.String(), "type", tok.Target.InstanceType, "member", tok.Target.MemberName())

	if w.drained {
		return
	}
	if owner == nil {
		w.graph.AddEndOfParseDependency(on.obj, tok.Target)
		return
	}
	target := tok.Target
	if target.Instance != owner.obj {
		target = fixup.Target{Instance: owner.obj, Index: -1, InstanceType: owner.obj.Type, InstanceName: owner.obj.Name}
	}
	target.CompletionLine, target.CompletionColumn = 0, 0
	w.graph.AddEvaluationWait(on.obj, target, tok.Line, tok.Column)
}

// release runs a parked token again, then a run held for its evaluator
// once nothing else inside that evaluator is parked.
func (w *Writer) release(tok *fixup.Token) error {
	w.waitingOn[tok.Target.Instance]--
	owner := w.owningEvaluator(tok)
	if owner != nil {
		w.evalWaits[owner.obj]--
	}
	if err := w.execute(tok); err != nil {
		return err
	}
	if owner == nil || w.evalWaits[owner.obj] > 0 {
		return nil
	}
	held, ok := w.parkedRuns[owner.obj]
	if !ok {
		return nil
	}
	delete(w.parkedRuns, owner.obj)
	w.waitingOn[held.Target.Instance]--
	return w.execute(w.rerunToken(owner, nil))
}

// owningEvaluator returns the innermost evaluator whose result depends on
// tok: the evaluator a run token evaluates, or the nearest evaluator at or
// above the target object.
func (w *Writer) owningEvaluator(tok *fixup.Token) *objState {
	var obj *objmodel.Object
	switch tok.Kind {
	case fixup.DeferredEvaluationFirstRun:
		obj, _ = tok.ReferencedObject.(*objmodel.Object)
	case fixup.DeferredEvaluationRerun:
		obj, _ = tok.Payload.(*objmodel.Object)
	default:
		obj, _ = tok.Target.Instance.(*objmodel.Object)
	}
	for st := w.states[obj]; st != nil; st = w.states[st.parent] {
		if st.evaluator != nil {
			return st
		}
	}
	return nil
}

// giveUp records missing as unresolved and assigns null in place of the
// value tok would have produced.
func (w *Writer) giveUp(tok *fixup.Token, missing []string) error {
	refs := fixup.UnresolvedRefsFor(tok, missing)
	w.unresolved = append(w.unresolved, refs...)
	if !w.opts.Strict {
		for _, r := range refs {
			w.logger.Warn("Unresolved reference, assigning null.",
				"name", r.Name, "type", r.InstanceType, "member", r.Member, "line", r.Line, "column", r.Column)
		}
	}

	null := cty.NullVal(cty.DynamicPseudoType)
	switch tok.Kind {
	case fixup.DeferredEvaluationFirstRun, fixup.DeferredEvaluationRerun:
		obj, _ := tok.ReferencedObject.(*objmodel.Object)
		if obj == nil {
			obj, _ = tok.Payload.(*objmodel.Object)
		}
		if st := w.states[obj]; st != nil && !st.evaluated {
			if err := w.setResult(st, null); err != nil {
				return err
			}
		}
	case fixup.ObjectInitializationConversion:
		tok.Target.Instance.(*objmodel.Object).Value = null
	default:
		if err := w.assign(tok.Target, null); err != nil {
			return err
		}
	}
	w.afterRun(tok)
	return nil
}
