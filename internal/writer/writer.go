package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/hclgraph/internal/ctxlog"
	"github.com/specialistvlad/hclgraph/internal/fixup"
	"github.com/specialistvlad/hclgraph/internal/hcldoc"
	"github.com/specialistvlad/hclgraph/internal/namescope"
	"github.com/specialistvlad/hclgraph/internal/objmodel"
	"github.com/specialistvlad/hclgraph/internal/objpath"
	"github.com/specialistvlad/hclgraph/internal/objstack"
	"github.com/specialistvlad/hclgraph/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Options configures a Writer.
type Options struct {
	// Strict makes names still unresolved at end of document an error.
	// Otherwise they are assigned null and logged.
	Strict bool
	// OnComplete is called exactly once per object, after every pending
	// assignment into it has run.
	OnComplete func(*objmodel.Object)
	// Registry supplies evaluators and expression functions. Nil means
	// registry.New().
	Registry *registry.Registry
	// Logger overrides the logger carried by the context.
	Logger *slog.Logger
}

// Writer consumes construction events for one document.
type Writer struct {
	ctx    context.Context
	logger *slog.Logger
	opts   Options
	reg    *registry.Registry

	stack     objstack.Stack
	rootScope *namescope.Scope
	graph     *fixup.Graph

	root      *objmodel.Object
	rootValue any
	states    map[*objmodel.Object]*objState
	created   []*objState

	// waiters are end-of-document tokens blocked on evaluators that have
	// not produced a result yet. ready holds the ones released since.
	waiters   map[*objmodel.Object][]*fixup.Token
	ready     []*fixup.Token
	waitingOn map[any]int
	// evalWaits counts parked tokens per owning evaluator. An evaluator
	// whose run came up while it was non-zero sits in parkedRuns.
	evalWaits  map[*objmodel.Object]int
	parkedRuns map[*objmodel.Object]*fixup.Token

	unresolved []fixup.UnresolvedRef
	closing    bool // end-of-document passes are running
	draining   bool // object dependencies are replayed in drained order
	drained    bool // object dependencies have left the graph
	final      bool // no more waiting, missing names are unresolved
	closed     bool
}

// objState is the writer's bookkeeping for one object.
type objState struct {
	obj *objmodel.Object
	// nameScope is where the object's name is registered; the frame scope
	// may be a child of it.
	nameScope *namescope.Scope
	evaluator *registry.RegisteredEvaluator
	depth     int

	// Slot in the parent receiving the object or its result. parent is nil
	// for the document root.
	parent     *objmodel.Object
	member     string
	collection bool
	index      int

	// frame is the stack as it was when the object was popped.
	frame *objstack.Frame

	released  bool // evaluator subtree finished, first run allowed
	evaluated bool
	result    any
	complete  bool
}

var _ hcldoc.Sink = (*Writer)(nil)

// New creates a Writer for one document.
func New(ctx context.Context, opts Options) *Writer {
	logger := opts.Logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	reg := opts.Registry
	if reg == nil {
		reg = registry.New()
	}
	return &Writer{
		ctx:        ctx,
		logger:     logger,
		opts:       opts,
		reg:        reg,
		rootScope:  namescope.New(),
		graph:      fixup.New(logger),
		states:     make(map[*objmodel.Object]*objState),
		waiters:    make(map[*objmodel.Object][]*fixup.Token),
		waitingOn:  make(map[any]int),
		evalWaits:  make(map[*objmodel.Object]int),
		parkedRuns: make(map[*objmodel.Object]*fixup.Token),
	}
}

// RootScope returns the document's root name scope.
func (w *Writer) RootScope() *namescope.Scope {
	return w.rootScope
}

// Pending returns the number of fixup tokens not yet run.
func (w *Writer) Pending() int {
	return w.graph.Len()
}

// StartObject implements hcldoc.Sink.
func (w *Writer) StartObject(typeName string, rng hcl.Range) error {
	if w.closed {
		return errors.New("writer is closed")
	}
	st := &objState{index: -1}

	top := w.stack.Top()
	if top == nil {
		if w.root != nil {
			return fmt.Errorf("%s: the document already has a root object", rng)
		}
		st.obj = objmodel.New(typeName, objpath.Root())
		st.nameScope = w.rootScope
		w.root = st.obj
	} else {
		if top.Member == "" {
			return fmt.Errorf("%s: object %s started outside of a member", rng, typeName)
		}
		parent := top.Instance.(*objmodel.Object)
		st.parent = parent
		st.member = top.Member
		st.collection = top.Collection
		if top.Collection {
			st.index = parent.Reserve(top.Member)
		}
		st.obj = objmodel.New(typeName, parent.Path.Child(top.Member, st.index))
		st.nameScope = top.Scope
		st.depth = top.Depth + 1
	}

	st.obj.Line, st.obj.Column = rng.Start.Line, rng.Start.Column
	st.obj.EndLine, st.obj.EndColumn = rng.End.Line, rng.End.Column
	if ev, ok := w.reg.Evaluator(typeName); ok {
		st.evaluator = ev
	}
	w.states[st.obj] = st
	w.created = append(w.created, st)

	w.stack.Push(objstack.Frame{
		Instance: st.obj,
		Type:     typeName,
		Index:    st.index,
		Scope:    st.nameScope,
		Line:     rng.Start.Line,
		Column:   rng.Start.Column,
	})
	w.logger.Debug("Object started.", "type", typeName, "path", st.obj.Path.String(), "depth", st.depth)
	return nil
}

// StartMember implements hcldoc.Sink.
func (w *Writer) StartMember(name string, collection bool, rng hcl.Range) error {
	top := w.stack.Top()
	if top == nil {
		return fmt.Errorf("%s: member %s started outside of an object", rng, name)
	}
	if top.Member != "" {
		return fmt.Errorf("%s: member %s started inside member %s", rng, name, top.Member)
	}
	switch name {
	case hcldoc.DirectiveNamescope, hcldoc.DirectiveName, hcldoc.DirectiveInit:
	default:
		top.Instance.(*objmodel.Object).Declare(name)
	}
	w.stack.Update(func(f *objstack.Frame) {
		f.Member = name
		f.Collection = collection
	})
	return nil
}

// EndMember implements hcldoc.Sink.
func (w *Writer) EndMember() error {
	top := w.stack.Top()
	if top == nil || top.Member == "" {
		return errors.New("member ended without being started")
	}
	w.stack.Update(func(f *objstack.Frame) {
		f.Member = ""
		f.Collection = false
	})
	return nil
}

// Value implements hcldoc.Sink.
func (w *Writer) Value(v hcldoc.Value) error {
	top := w.stack.Top()
	if top == nil || top.Member == "" {
		return fmt.Errorf("%s: value written outside of a member", v.Range())
	}
	st := w.states[top.Instance.(*objmodel.Object)]

	switch top.Member {
	case hcldoc.DirectiveNamescope:
		return w.namescopeDirective(st, v)
	case hcldoc.DirectiveName:
		return w.nameDirective(st, v)
	case hcldoc.DirectiveInit:
		return w.initDirective(st, v)
	}

	if top.Collection {
		return fmt.Errorf("%s: collection member %s must hold objects", v.Range(), top.Member)
	}
	target := w.memberTarget(st.obj, top.Member, false, -1)

	switch v.Kind {
	case hcldoc.Literal:
		val, _, err := w.evaluate(v.Expr, top.FindName)
		if err != nil {
			return err
		}
		st.obj.Set(top.Member, val)
		return nil

	case hcldoc.Reference:
		if found, ok := w.lookup(top.FindName, v.Name); ok {
			st.obj.Set(top.Member, found)
			return nil
		}
		return w.graph.AddDependency(&fixup.Token{
			Kind:              fixup.PropertyValueConversion,
			Target:            target,
			NeededNames:       []string{v.Name},
			CanAssignDirectly: true,
			NameScopes:        top.Scopes(),
			Line:              v.Range().Start.Line,
			Column:            v.Range().Start.Column,
		})

	default:
		val, missing, err := w.evaluate(v.Expr, top.FindName)
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			st.obj.Set(top.Member, val)
			return nil
		}
		w.logger.Debug("Expression deferred.", "member", top.Member, "missing", missing, "refs", traversalKeys(v.Expr))
		return w.graph.AddDependency(&fixup.Token{
			Kind:           fixup.PropertyValueConversion,
			Target:         target,
			NeededNames:    missing,
			SavedWalkState: w.stack.Snapshot(),
			Payload:        v.Expr,
			Line:           v.Range().Start.Line,
			Column:         v.Range().Start.Column,
		})
	}
}

func (w *Writer) namescopeDirective(st *objState, v hcldoc.Value) error {
	if v.Kind != hcldoc.Literal {
		return fmt.Errorf("%s: %s must be a literal bool", v.Range(), hcldoc.DirectiveNamescope)
	}
	val, _, err := w.evaluate(v.Expr, nil)
	if err != nil {
		return err
	}
	b, err := convert.Convert(val, cty.Bool)
	if err != nil || b.IsNull() {
		return fmt.Errorf("%s: %s must be a bool", v.Range(), hcldoc.DirectiveNamescope)
	}
	if b.True() {
		w.stack.Update(func(f *objstack.Frame) { f.Scope = st.nameScope.NewChild() })
		w.logger.Debug("Name scope opened.", "type", st.obj.Type, "path", st.obj.Path.String())
	}
	return nil
}

func (w *Writer) nameDirective(st *objState, v hcldoc.Value) error {
	if v.Kind != hcldoc.Literal {
		return fmt.Errorf("%s: %s must be a literal string", v.Range(), hcldoc.DirectiveName)
	}
	val, _, err := w.evaluate(v.Expr, nil)
	if err != nil {
		return err
	}
	if val.IsNull() || !val.Type().Equals(cty.String) {
		return fmt.Errorf("%s: %s must be a string", v.Range(), hcldoc.DirectiveName)
	}
	name := val.AsString()
	if err := st.nameScope.Register(name, st.obj); err != nil {
		return fmt.Errorf("%s: %w", v.Range(), err)
	}
	st.obj.Name = name
	w.stack.Update(func(f *objstack.Frame) { f.Name = name })
	w.logger.Debug("Name registered.", "name", name, "type", st.obj.Type)
	return nil
}

func (w *Writer) initDirective(st *objState, v hcldoc.Value) error {
	top := w.stack.Top()
	val, missing, err := w.evaluate(v.Expr, top.FindName)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		st.obj.Value = val
		return nil
	}
	return w.graph.AddDependency(&fixup.Token{
		Kind:           fixup.ObjectInitializationConversion,
		Target:         w.memberTarget(st.obj, hcldoc.DirectiveInit, false, -1),
		NeededNames:    missing,
		SavedWalkState: w.stack.Snapshot(),
		Payload:        v.Expr,
		Line:           v.Range().Start.Line,
		Column:         v.Range().Start.Column,
	})
}

// EndObject implements hcldoc.Sink.
func (w *Writer) EndObject() error {
	top := w.stack.Top()
	if top == nil {
		return errors.New("object ended without being started")
	}
	if top.Member != "" {
		return fmt.Errorf("object %s ended inside member %s", top.Type, top.Member)
	}
	st := w.states[top.Instance.(*objmodel.Object)]
	st.frame = w.stack.Pop()

	pending := w.graph.HasUnresolvedOrPendingChildren(st.obj)
	if pending {
		w.graph.MarkOffStack(st.obj, st.obj.Name, st.obj.EndLine, st.obj.EndColumn)
		w.logger.Debug("Object ended with pending work.", "type", st.obj.Type, "path", st.obj.Path.String(), "needs", w.graph.DependentNames(st.obj))
	} else {
		w.logger.Debug("Object ended.", "type", st.obj.Type, "path", st.obj.Path.String())
	}

	switch {
	case st.evaluator != nil && pending:
		if err := w.graph.AddDependency(&fixup.Token{
			Kind:             fixup.DeferredEvaluationFirstRun,
			Target:           w.slotTarget(st),
			ReferencedObject: st.obj,
			SavedWalkState:   st.frame,
			Line:             st.obj.Line,
			Column:           st.obj.Column,
		}); err != nil {
			return err
		}
	case st.evaluator != nil:
		st.released = true
		if err := w.evaluateObject(st); err != nil {
			return err
		}
	case pending && st.parent != nil:
		if err := w.graph.AddDependency(&fixup.Token{
			Kind:             fixup.PendingChildSubtree,
			Target:           w.slotTarget(st),
			ReferencedObject: st.obj,
			Line:             st.obj.Line,
			Column:           st.obj.Column,
		}); err != nil {
			return err
		}
	case pending:
		// The root waits for Close.
	default:
		if err := w.assignChild(st); err != nil {
			return err
		}
		w.complete(st)
	}
	return w.runResolved()
}

// memberTarget describes a member of obj as a fixup target.
func (w *Writer) memberTarget(obj *objmodel.Object, member string, collection bool, index int) fixup.Target {
	return fixup.Target{
		Instance:                obj,
		Member:                  &fixup.Member{Name: member, Collection: collection},
		Index:                   index,
		InstanceType:            obj.Type,
		InstanceName:            obj.Name,
		InstanceStillBeingBuilt: w.stack.IsOnStack(obj),
	}
}

// slotTarget is where st's object or result is assigned.
func (w *Writer) slotTarget(st *objState) fixup.Target {
	if st.parent == nil {
		return fixup.Target{Index: -1}
	}
	return w.memberTarget(st.parent, st.member, st.collection, st.index)
}

// assign writes v into target.
func (w *Writer) assign(target fixup.Target, v any) error {
	if target.Member == nil {
		w.rootValue = v
		return nil
	}
	obj, ok := target.Instance.(*objmodel.Object)
	if !ok {
		return fmt.Errorf("fixup target %T is not an object", target.Instance)
	}
	if target.Member.Collection {
		return obj.SetAt(target.Member.Name, target.Index, v)
	}
	obj.Set(target.Member.Name, v)
	return nil
}

// assignChild writes a finished normal object into its parent slot.
func (w *Writer) assignChild(st *objState) error {
	if st.parent == nil {
		return nil
	}
	st.parent.Adopt(st.obj)
	return w.assign(w.slotTarget(st), st.obj)
}
