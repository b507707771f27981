package fixup

import (
	"errors"
	"testing"

	"github.com/specialistvlad/hclgraph/internal/namescope"
	"github.com/specialistvlad/hclgraph/internal/objstack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObject struct {
	label string
}

func newObj(label string) *testObject {
	return &testObject{label: label}
}

func member(name string) *Member {
	return &Member{Name: name}
}

// simpleToken is a direct assignment of name into parent.prop.
func simpleToken(parent any, prop, name string, scope *namescope.Scope) *Token {
	return &Token{
		Kind:              PropertyValueConversion,
		Target:            Target{Instance: parent, Member: member(prop), Index: -1, InstanceStillBeingBuilt: true},
		NeededNames:       []string{name},
		CanAssignDirectly: true,
		NameScopes:        []*namescope.Scope{scope},
	}
}

// reparseToken re-evaluates parent.prop once all names resolve through scope.
func reparseToken(parent any, prop string, scope *namescope.Scope, names ...string) *Token {
	var stack objstack.Stack
	stack.Push(objstack.Frame{Instance: parent, Scope: scope, Index: -1})
	return &Token{
		Kind:           PropertyValueConversion,
		Target:         Target{Instance: parent, Member: member(prop), Index: -1, InstanceStillBeingBuilt: true},
		NeededNames:    names,
		SavedWalkState: stack.Snapshot(),
	}
}

func childToken(kind Kind, parent, child any, prop string) *Token {
	return &Token{
		Kind:             kind,
		Target:           Target{Instance: parent, Member: member(prop), Index: -1},
		ReferencedObject: child,
	}
}

func drainQueue(g *Graph) []*Token {
	var out []*Token
	for g.HasResolvedPendingWork() {
		tok, ok := g.TakeNextResolved()
		if !ok {
			break
		}
		out = append(out, tok)
	}
	return out
}

func TestGraph_SimpleForwardReference(t *testing.T) {
	g := New(nil)
	scope := namescope.New()
	objA, objB := newObj("A"), newObj("B")

	t1 := simpleToken(objA, "label", "btn", scope)
	require.NoError(t, g.AddDependency(t1))
	assert.True(t, g.HasUnresolvedChildren(objA))
	assert.False(t, g.HasResolvedPendingWork())

	require.NoError(t, scope.Register("btn", objB))
	g.ResolveDependenciesTo(objB, "btn")

	resolved := drainQueue(g)
	require.Len(t, resolved, 1)
	assert.Same(t, t1, resolved[0])
	assert.Same(t, objB, resolved[0].ReferencedObject)
	assert.Empty(t, resolved[0].NeededNames)
	assert.False(t, g.HasUnresolvedChildren(objA))
	assert.Equal(t, 0, g.Len())
}

func TestGraph_ResolutionCompleteness(t *testing.T) {
	g := New(nil)
	scope := namescope.New()
	owner := newObj("owner")
	x, y, z := newObj("x"), newObj("y"), newObj("z")

	tok := reparseToken(owner, "caption", scope, "x", "y", "z")
	require.NoError(t, g.AddDependency(tok))

	for name, obj := range map[string]*testObject{"x": x, "y": y} {
		require.NoError(t, scope.Register(name, obj))
		g.ResolveDependenciesTo(obj, name)
		assert.False(t, g.HasResolvedPendingWork(), "token must wait for every name")
	}
	assert.Equal(t, []string{"z"}, tok.NeededNames)

	require.NoError(t, scope.Register("z", z))
	g.ResolveDependenciesTo(z, "z")

	// Resolving again after the token left the graph must not requeue it.
	g.ResolveDependenciesTo(z, "z")

	resolved := drainQueue(g)
	require.Len(t, resolved, 1)
	assert.Same(t, tok, resolved[0])
	assert.Nil(t, tok.ReferencedObject, "re-evaluation tokens do not carry a referenced object")
}

func TestGraph_ResolveChecksTokenScope(t *testing.T) {
	g := New(nil)
	root := namescope.New()
	left := root.NewChild()
	right := root.NewChild()

	leftBtn, rightBtn := newObj("left-btn"), newObj("right-btn")
	ownerL, ownerR := newObj("L"), newObj("R")
	require.NoError(t, left.Register("btn", leftBtn))
	require.NoError(t, right.Register("btn", rightBtn))

	tokL := simpleToken(ownerL, "target", "btn", left)
	tokR := simpleToken(ownerR, "target", "btn", right)
	require.NoError(t, g.AddDependency(tokL))
	require.NoError(t, g.AddDependency(tokR))

	g.ResolveDependenciesTo(rightBtn, "btn")
	resolved := drainQueue(g)
	require.Len(t, resolved, 1)
	assert.Same(t, tokR, resolved[0])
	assert.Same(t, rightBtn, tokR.ReferencedObject)
	assert.True(t, g.HasUnresolvedChildren(ownerL))

	g.ResolveDependenciesTo(leftBtn, "btn")
	resolved = drainQueue(g)
	require.Len(t, resolved, 1)
	assert.Same(t, tokL, resolved[0])
}

func TestGraph_ChildBlocker(t *testing.T) {
	g := New(nil)
	parent, child := newObj("parent"), newObj("child")

	tok := childToken(PendingChildSubtree, parent, child, "content")
	require.NoError(t, g.AddDependency(tok))
	assert.True(t, g.HasUnresolvedChildren(parent))

	g.ResolveDependenciesTo(child, "")
	assert.False(t, g.HasUnresolvedChildren(parent))
	assert.True(t, g.HasUnresolvedOrPendingChildren(parent), "queued token still counts as pending")

	resolved := drainQueue(g)
	require.Len(t, resolved, 1)
	assert.Same(t, tok, resolved[0])
	assert.False(t, g.HasUnresolvedOrPendingChildren(parent))
}

func TestGraph_AtMostOneBlockerPerChild(t *testing.T) {
	g := New(nil)
	p1, p2, child := newObj("p1"), newObj("p2"), newObj("child")

	require.NoError(t, g.AddDependency(childToken(PendingChildSubtree, p1, child, "a")))

	err := g.AddDependency(childToken(PendingChildSubtree, p2, child, "b"))
	var invErr *InvalidTokenError
	require.True(t, errors.As(err, &invErr))
	assert.Contains(t, err.Error(), "already has a pending dependency")
	assert.False(t, g.HasUnresolvedChildren(p2), "rejected token must not be indexed")

	err = g.AddDependency(childToken(DeferredEvaluationFirstRun, p2, child, "b"))
	require.True(t, errors.As(err, &invErr))
}

func TestGraph_InvalidTokens(t *testing.T) {
	scope := namescope.New()
	parent := newObj("p")

	testCases := []struct {
		name string
		tok  *Token
	}{
		{name: "nil token", tok: nil},
		{name: "child token without child", tok: childToken(PendingChildSubtree, parent, nil, "a")},
		{name: "name token without names", tok: reparseToken(parent, "a", scope)},
		{
			name: "direct assignment with two names",
			tok: &Token{
				Kind:              PropertyValueConversion,
				Target:            Target{Instance: parent, Member: member("a")},
				NeededNames:       []string{"x", "y"},
				CanAssignDirectly: true,
			},
		},
		{
			name: "root target with property kind",
			tok: &Token{
				Kind:        PropertyValueConversion,
				NeededNames: []string{"x"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := New(nil)
			err := g.AddDependency(tc.tok)
			var invErr *InvalidTokenError
			require.True(t, errors.As(err, &invErr), "got %v", err)
			assert.Equal(t, 0, g.Len())
		})
	}
}

func TestGraph_SecondRootTokenRejected(t *testing.T) {
	g := New(nil)
	rootEval := newObj("root-eval")
	require.NoError(t, g.AddDependency(&Token{Kind: DeferredEvaluationFirstRun, ReferencedObject: rootEval}))

	err := g.AddDependency(&Token{Kind: DeferredEvaluationFirstRun, ReferencedObject: newObj("other")})
	var invErr *InvalidTokenError
	require.True(t, errors.As(err, &invErr))
}

func TestGraph_DuplicateNeededNamesCollapse(t *testing.T) {
	g := New(nil)
	scope := namescope.New()
	owner, x := newObj("owner"), newObj("x")

	tok := reparseToken(owner, "sum", scope, "x", "x")
	require.NoError(t, g.AddDependency(tok))
	assert.Equal(t, []string{"x"}, tok.NeededNames)

	require.NoError(t, scope.Register("x", x))
	g.ResolveDependenciesTo(x, "x")
	assert.Len(t, drainQueue(g), 1)
}

func TestGraph_MarkOffStack(t *testing.T) {
	g := New(nil)
	scope := namescope.New()
	owner := newObj("owner")

	t1 := simpleToken(owner, "a", "x", scope)
	t2 := reparseToken(owner, "b", scope, "y")
	require.NoError(t, g.AddDependency(t1))
	require.NoError(t, g.AddDependency(t2))

	g.MarkOffStack(owner, "main", 12, 3)

	for _, tok := range []*Token{t1, t2} {
		assert.False(t, tok.Target.InstanceStillBeingBuilt)
		assert.Equal(t, "main", tok.Target.InstanceName)
		assert.Equal(t, 12, tok.Target.CompletionLine)
		assert.Equal(t, 3, tok.Target.CompletionColumn)
	}
}

func TestGraph_DependentNames(t *testing.T) {
	// --- Arrange ---
	g := New(nil)
	scope := namescope.New()
	window, panel, button, unrelated := newObj("window"), newObj("panel"), newObj("button"), newObj("unrelated")

	require.NoError(t, g.AddDependency(childToken(PendingChildSubtree, window, panel, "content")))
	require.NoError(t, g.AddDependency(childToken(PendingChildSubtree, panel, button, "items")))
	require.NoError(t, g.AddDependency(simpleToken(button, "target", "label", scope)))
	require.NoError(t, g.AddDependency(reparseToken(panel, "title", scope, "header", "label")))
	require.NoError(t, g.AddDependency(simpleToken(unrelated, "x", "elsewhere", scope)))

	// --- Act ---
	fromWindow := g.DependentNames(window)
	fromButton := g.DependentNames(button)

	// --- Assert ---
	assert.Equal(t, []string{"label", "header"}, fromWindow)
	assert.Equal(t, []string{"label"}, fromButton)
	assert.Empty(t, g.DependentNames(newObj("nothing")))
}

func TestGraph_DependentNamesSkipsOrderingEdges(t *testing.T) {
	// --- Arrange ---
	g := New(nil)
	scope := namescope.New()
	label, other, evaluator := newObj("label"), newObj("other"), newObj("evaluator")

	require.NoError(t, g.AddDependency(simpleToken(other, "x", "never", scope)))
	g.AddEndOfParseDependency(other, Target{Instance: label, Member: member("owner"), Index: -1})
	g.AddEvaluationWait(other, Target{Instance: evaluator, Index: -1}, 4, 2)

	// --- Act ---
	fromLabel := g.DependentNames(label)
	fromEvaluator := g.DependentNames(evaluator)

	// --- Assert ---
	assert.Empty(t, fromLabel, "an ordering edge carries no names")
	assert.Empty(t, fromEvaluator)
	assert.Equal(t, []string{"never"}, g.DependentNames(other))
	assert.True(t, g.HasUnresolvedChildren(label))
}

func TestToken_ResolveName(t *testing.T) {
	root := namescope.New()
	inner := root.NewChild()
	require.NoError(t, root.Register("a", "root-a"))
	require.NoError(t, inner.Register("b", "inner-b"))

	direct := simpleToken(nil, "p", "a", inner)
	obj, ok := direct.ResolveName("a")
	require.True(t, ok)
	assert.Equal(t, "root-a", obj)

	reparse := reparseToken(nil, "p", inner, "b")
	obj, ok = reparse.ResolveName("b")
	require.True(t, ok)
	assert.Equal(t, "inner-b", obj)

	_, ok = reparse.ResolveName("zzz")
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "PendingChildSubtree", PendingChildSubtree.String())
	assert.Equal(t, "DeferredEvaluationRerun", DeferredEvaluationRerun.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
