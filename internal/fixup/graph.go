package fixup

import (
	"log/slog"
	"slices"
)

// idSet is an unordered set of token ids. Iteration in creation order goes
// through sorted.
type idSet map[TokenID]struct{}

func (s idSet) sorted() []TokenID {
	ids := make([]TokenID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Graph owns all pending fixup tokens.
//
// Instances and referenced objects are used as map keys and must be
// comparable; pointers are the expected case.
type Graph struct {
	logger *slog.Logger

	nextID TokenID
	tokens map[TokenID]*Token

	byParent map[any]idSet
	byChild  map[any]TokenID
	byName   map[string]idSet

	resolved []*Token
	root     *Token

	incompleteAtEnd map[any]struct{}
}

// New creates an empty graph. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{
		logger:          logger,
		tokens:          make(map[TokenID]*Token),
		byParent:        make(map[any]idSet),
		byChild:         make(map[any]TokenID),
		byName:          make(map[string]idSet),
		incompleteAtEnd: make(map[any]struct{}),
	}
}

// AddDependency indexes tok until its dependencies are resolved.
func (g *Graph) AddDependency(tok *Token) error {
	if tok == nil {
		return &InvalidTokenError{Reason: "token is nil"}
	}
	if _, live := g.tokens[tok.id]; live && tok.id != 0 {
		return &InvalidTokenError{Reason: "token is already pending", Token: tok}
	}

	if tok.Target.Member == nil {
		switch tok.Kind {
		case DeferredEvaluationFirstRun:
			if g.root != nil {
				return &InvalidTokenError{Reason: "the document root already has a pending evaluation", Token: tok}
			}
			g.store(tok)
			g.root = tok
			g.logger.Debug("Fixup pended for document root.", "token", tok.id, "kind", tok.Kind.String())
			return nil
		case DeferredEvaluationRerun:
			// Indexed by name under the nil instance like any other rerun.
		default:
			return &InvalidTokenError{Reason: "only deferred evaluations may target the document root", Token: tok}
		}
	}

	if tok.Kind.childKeyed() {
		if tok.ReferencedObject == nil {
			return &InvalidTokenError{Reason: "child dependency has no referenced object", Token: tok}
		}
		if _, exists := g.byChild[tok.ReferencedObject]; exists {
			return &InvalidTokenError{Reason: "child already has a pending dependency", Token: tok}
		}
		g.store(tok)
		g.byChild[tok.ReferencedObject] = tok.id
	} else {
		tok.NeededNames = uniqueNames(tok.NeededNames)
		if len(tok.NeededNames) == 0 {
			return &InvalidTokenError{Reason: "name dependency does not need any names", Token: tok}
		}
		if tok.CanAssignDirectly && len(tok.NeededNames) != 1 {
			return &InvalidTokenError{Reason: "direct assignment must need exactly one name", Token: tok}
		}
		g.store(tok)
		for _, name := range tok.NeededNames {
			addID(g.byName, name, tok.id)
		}
	}
	addID(g.byParent, tok.Target.Instance, tok.id)

	g.logger.Debug("Fixup pended.",
		"token", tok.id,
		"kind", tok.Kind.String(),
		"type", tok.Target.InstanceType,
		"member", tok.Target.MemberName(),
		"names", tok.NeededNames)
	return nil
}

// AddEndOfParseDependency records that target must complete after child.
// The edge orders end-of-document draining only; it never blocks child.
func (g *Graph) AddEndOfParseDependency(child any, target Target) {
	if child == nil || target.Instance == nil || child == target.Instance {
		return
	}
	g.addOrderingEdge(&Token{Kind: PendingChildSubtree, Target: target, ReferencedObject: child})
}

// AddEvaluationWait records that the deferred evaluation owning target
// needs the result of the deferred evaluation of other. The edge orders
// draining only. A cycle of such edges and first-run tokens is reported by
// DrainObjectDependencies as a CircularEvaluationError; an evaluation may
// wait on itself.
func (g *Graph) AddEvaluationWait(other any, target Target, line, col int) {
	if other == nil || target.Instance == nil {
		return
	}
	g.addOrderingEdge(&Token{
		Kind:             DeferredEvaluationFirstRun,
		Target:           target,
		ReferencedObject: other,
		Line:             line,
		Column:           col,
	})
}

func (g *Graph) addOrderingEdge(tok *Token) {
	tok.endOfParse = true
	g.store(tok)
	addID(g.byParent, tok.Target.Instance, tok.id)
	g.logger.Debug("Ordering edge added.", "token", tok.id, "kind", tok.Kind.String(), "type", tok.Target.InstanceType)
}

// HasUnresolvedChildren reports whether any token is pending for parent.
func (g *Graph) HasUnresolvedChildren(parent any) bool {
	_, ok := g.byParent[parent]
	return ok
}

// HasUnresolvedOrPendingChildren is HasUnresolvedChildren plus the tokens that
// are resolved but not yet taken from the queue.
func (g *Graph) HasUnresolvedOrPendingChildren(instance any) bool {
	if g.HasUnresolvedChildren(instance) {
		return true
	}
	for _, tok := range g.resolved {
		if tok.Target.Instance == instance {
			return true
		}
	}
	return false
}

// ResolveDependenciesTo reports that obj is complete and, when name is
// non-empty, available under name. Tokens satisfied by this are queued.
func (g *Graph) ResolveDependenciesTo(obj any, name string) {
	if obj != nil {
		if id, ok := g.byChild[obj]; ok {
			tok := g.tokens[id]
			delete(g.byChild, obj)
			g.removeFromParent(tok)
			g.enqueue(tok)
		}
	}
	if name == "" {
		return
	}

	ids, ok := g.byName[name]
	if !ok {
		return
	}
	for _, id := range ids.sorted() {
		tok := g.tokens[id]
		// The same name may be bound to different objects in different
		// scopes; only tokens that see obj under name are satisfied.
		resolved, found := tok.ResolveName(name)
		if !found || resolved != obj {
			continue
		}
		tok.removeName(name)
		if tok.CanAssignDirectly {
			tok.ReferencedObject = obj
		}
		delete(ids, id)
		if len(tok.NeededNames) == 0 {
			g.removeFromParent(tok)
			g.enqueue(tok)
		}
	}
	if len(ids) == 0 {
		delete(g.byName, name)
	}
}

// DependentNames collects every name still required by instance and the
// blocked children below it. Ordering-only edges are not followed.
func (g *Graph) DependentNames(instance any) []string {
	var names []string
	seen := make(map[string]struct{})
	visited := make(map[any]struct{})

	var walk func(obj any)
	walk = func(obj any) {
		if _, ok := visited[obj]; ok {
			return
		}
		visited[obj] = struct{}{}
		for _, id := range g.byParent[obj].sorted() {
			tok := g.tokens[id]
			if tok.IsOrderingOnly() {
				continue
			}
			if tok.Kind.childKeyed() {
				walk(tok.ReferencedObject)
				continue
			}
			for _, n := range tok.NeededNames {
				if _, dup := seen[n]; !dup {
					seen[n] = struct{}{}
					names = append(names, n)
				}
			}
		}
	}
	walk(instance)
	return names
}

// HasResolvedPendingWork reports whether resolved tokens are waiting to be taken.
func (g *Graph) HasResolvedPendingWork() bool {
	return len(g.resolved) > 0
}

// TakeNextResolved dequeues the oldest resolved token.
func (g *Graph) TakeNextResolved() (*Token, bool) {
	if len(g.resolved) == 0 {
		return nil, false
	}
	tok := g.resolved[0]
	g.resolved[0] = nil
	g.resolved = g.resolved[1:]
	return tok, true
}

// MarkOffStack records that instance has left the construction stack.
func (g *Graph) MarkOffStack(instance any, name string, line, col int) {
	update := func(tok *Token) {
		tok.Target.InstanceStillBeingBuilt = false
		tok.Target.InstanceName = name
		tok.Target.CompletionLine = line
		tok.Target.CompletionColumn = col
	}
	for id := range g.byParent[instance] {
		update(g.tokens[id])
	}
	for _, tok := range g.resolved {
		if tok.Target.Instance == instance {
			update(tok)
		}
	}
}

// WasIncompleteAtEnd reports whether instance still had pending tokens when
// end-of-document draining began.
func (g *Graph) WasIncompleteAtEnd(instance any) bool {
	_, ok := g.incompleteAtEnd[instance]
	return ok
}

// Len returns the number of tokens still pending in the graph.
func (g *Graph) Len() int {
	return len(g.tokens)
}

// IsOrderingOnly reports whether tok was added by AddEndOfParseDependency
// or AddEvaluationWait and carries no assignment.
func (t *Token) IsOrderingOnly() bool {
	return t.endOfParse
}

func (g *Graph) store(tok *Token) {
	g.nextID++
	tok.id = g.nextID
	g.tokens[tok.id] = tok
}

func (g *Graph) enqueue(tok *Token) {
	delete(g.tokens, tok.id)
	g.resolved = append(g.resolved, tok)
	g.logger.Debug("Fixup resolved.", "token", tok.id, "kind", tok.Kind.String(), "type", tok.Target.InstanceType)
}

func (g *Graph) removeFromParent(tok *Token) {
	set, ok := g.byParent[tok.Target.Instance]
	if !ok {
		return
	}
	delete(set, tok.id)
	if len(set) == 0 {
		delete(g.byParent, tok.Target.Instance)
	}
}

// detach removes tok from the arena and every index.
func (g *Graph) detach(tok *Token) {
	delete(g.tokens, tok.id)
	if g.root == tok {
		g.root = nil
		return
	}
	g.removeFromParent(tok)
	if tok.ReferencedObject != nil && tok.Kind.childKeyed() {
		if id, ok := g.byChild[tok.ReferencedObject]; ok && id == tok.id {
			delete(g.byChild, tok.ReferencedObject)
		}
	}
	for _, name := range tok.NeededNames {
		if set, ok := g.byName[name]; ok {
			delete(set, tok.id)
			if len(set) == 0 {
				delete(g.byName, name)
			}
		}
	}
}

func (g *Graph) sortedTokenIDs() []TokenID {
	ids := make([]TokenID, 0, len(g.tokens))
	for id := range g.tokens {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func addID[K comparable](index map[K]idSet, key K, id TokenID) {
	set, ok := index[key]
	if !ok {
		set = make(idSet)
		index[key] = set
	}
	set[id] = struct{}{}
}

func uniqueNames(names []string) []string {
	out := names[:0:0]
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
