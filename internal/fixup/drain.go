package fixup

// DrainSimpleFixups removes and returns every direct-assignment token,
// resolved or not, in creation order. Every object that still has pending
// tokens is recorded as incomplete at end of document.
func (g *Graph) DrainSimpleFixups() []*Token {
	for parent := range g.byParent {
		if parent != nil {
			g.incompleteAtEnd[parent] = struct{}{}
		}
	}

	var out []*Token
	for _, id := range g.sortedTokenIDs() {
		tok := g.tokens[id]
		if !tok.CanAssignDirectly || tok.Kind.childKeyed() {
			continue
		}
		g.detach(tok)
		out = append(out, tok)
	}
	g.logger.Debug("Drained simple fixups.", "count", len(out))
	return out
}

// DrainReparses removes and returns every remaining name-keyed token, in
// creation order.
func (g *Graph) DrainReparses() []*Token {
	var out []*Token
	for _, id := range g.sortedTokenIDs() {
		tok := g.tokens[id]
		if tok.Kind.childKeyed() || tok == g.root {
			continue
		}
		g.detach(tok)
		out = append(out, tok)
	}
	g.logger.Debug("Drained reparses.", "count", len(out))
	return out
}

// DrainObjectDependencies removes and returns every remaining token so that
// each token comes after the tokens of the object it waits on. Owners of
// first-run evaluations are walked first; the order in which other
// unrelated objects are walked is unspecified. The document root token, if
// any, is last.
//
// A cycle made only of first-run evaluations returns a
// CircularEvaluationError and no tokens.
func (g *Graph) DrainObjectDependencies() ([]*Token, error) {
	d := &drainer{
		g:      g,
		done:   make(map[any]struct{}),
		onPath: make(map[any]int),
	}

	var firstRuns []*Token
	for _, id := range g.sortedTokenIDs() {
		tok := g.tokens[id]
		if tok != g.root && tok.Kind == DeferredEvaluationFirstRun {
			firstRuns = append(firstRuns, tok)
		}
	}
	for _, tok := range firstRuns {
		if _, live := g.tokens[tok.id]; !live {
			continue
		}
		if err := d.visit(tok.Target.Instance); err != nil {
			return nil, err
		}
	}

	for len(g.byParent) > 0 {
		for parent := range g.byParent {
			if err := d.visit(parent); err != nil {
				return nil, err
			}
			break
		}
	}

	if root := g.root; root != nil {
		g.detach(root)
		d.out = append(d.out, root)
	}
	g.logger.Debug("Drained object dependencies.", "count", len(d.out))
	return d.out, nil
}

// drainer is the state of one depth-first walk over the parent index.
type drainer struct {
	g      *Graph
	out    []*Token
	done   map[any]struct{}
	onPath map[any]int // object -> len(path) when it was entered
	path   []*Token
}

func (d *drainer) visit(obj any) error {
	if _, ok := d.done[obj]; ok {
		return nil
	}
	if start, ok := d.onPath[obj]; ok {
		cycle := d.path[start:]
		if allFirstRun(cycle) {
			return &CircularEvaluationError{Chain: chainFor(cycle)}
		}
		d.g.logger.Debug("Breaking dependency cycle.", "length", len(cycle))
		return nil
	}

	d.onPath[obj] = len(d.path)
	for _, id := range d.g.byParent[obj].sorted() {
		tok, live := d.g.tokens[id]
		if !live {
			continue
		}
		if tok.Kind.childKeyed() && tok.ReferencedObject != nil {
			d.path = append(d.path, tok)
			err := d.visit(tok.ReferencedObject)
			d.path = d.path[:len(d.path)-1]
			if err != nil {
				return err
			}
		}
		if _, live := d.g.tokens[id]; live {
			d.g.detach(tok)
			d.out = append(d.out, tok)
		}
	}
	delete(d.onPath, obj)
	d.done[obj] = struct{}{}
	return nil
}

func allFirstRun(cycle []*Token) bool {
	if len(cycle) == 0 {
		return false
	}
	for _, tok := range cycle {
		if tok.Kind != DeferredEvaluationFirstRun {
			return false
		}
	}
	return true
}

func chainFor(cycle []*Token) []ChainLink {
	chain := make([]ChainLink, 0, len(cycle))
	for _, tok := range cycle {
		line, col := tok.Target.CompletionLine, tok.Target.CompletionColumn
		if line == 0 {
			line, col = tok.Line, tok.Column
		}
		chain = append(chain, ChainLink{
			Type:   tok.Target.InstanceType,
			Name:   tok.Target.InstanceName,
			Member: tok.Target.MemberName(),
			Line:   line,
			Column: col,
		})
	}
	return chain
}
