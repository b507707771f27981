package fixup

import (
	"fmt"

	"github.com/specialistvlad/hclgraph/internal/namescope"
	"github.com/specialistvlad/hclgraph/internal/objstack"
)

// Kind classifies what a token does once it runs.
type Kind int

const (
	// DeferredEvaluationFirstRun evaluates a deferred-evaluation object for the
	// first time once its own subtree is complete. Keyed by child.
	DeferredEvaluationFirstRun Kind = iota
	// DeferredEvaluationRerun re-runs an evaluation that asked for names. Keyed by name.
	DeferredEvaluationRerun
	// PropertyValueConversion assigns a reference or re-evaluates a property
	// expression. Keyed by name.
	PropertyValueConversion
	// ObjectInitializationConversion re-evaluates an object's initialization
	// expression. Keyed by name.
	ObjectInitializationConversion
	// PendingChildSubtree assigns a child whose subtree finished late. Keyed by child.
	PendingChildSubtree
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case DeferredEvaluationFirstRun:
		return "DeferredEvaluationFirstRun"
	case DeferredEvaluationRerun:
		return "DeferredEvaluationRerun"
	case PropertyValueConversion:
		return "PropertyValueConversion"
	case ObjectInitializationConversion:
		return "ObjectInitializationConversion"
	case PendingChildSubtree:
		return "PendingChildSubtree"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// childKeyed reports whether tokens of this kind wait on a child object rather than names.
func (k Kind) childKeyed() bool {
	return k == DeferredEvaluationFirstRun || k == PendingChildSubtree
}

// Member is the slot on an instance that receives a deferred value.
type Member struct {
	Name       string
	Collection bool
}

// Target describes where a deferred value is written.
type Target struct {
	Instance     any
	Member       *Member // nil only for the document-root deferred evaluation
	Index        int     // reserved collection slot, -1 for none
	InstanceType string
	InstanceName string

	// InstanceStillBeingBuilt is true while Instance is on the construction stack.
	InstanceStillBeingBuilt bool
	CompletionLine          int
	CompletionColumn        int
}

// MemberName returns the target member name, or "" for the document root.
func (t Target) MemberName() string {
	if t.Member == nil {
		return ""
	}
	return t.Member.Name
}

// TokenID addresses a token in the graph arena. Ids grow in creation order.
type TokenID uint64

// Token is one deferred unit of work.
type Token struct {
	Kind   Kind
	Target Target

	// NeededNames are the names still outstanding, in first-seen order.
	NeededNames []string
	// ReferencedObject is the resolved object for direct assignments, or the
	// blocking child for child-keyed tokens.
	ReferencedObject any
	// CanAssignDirectly means exactly one needed name whose object is
	// written straight into Target without re-evaluation.
	CanAssignDirectly bool

	// SavedWalkState is the construction stack at creation time. Set when
	// the token needs re-evaluation.
	SavedWalkState *objstack.Frame
	// NameScopes are the scopes visible at creation time. Set for direct assignments.
	NameScopes []*namescope.Scope

	// Payload is opaque input the writer needs to redo the work.
	Payload any

	Line   int
	Column int

	id         TokenID
	endOfParse bool
}

// ID returns the arena id assigned when the token was added, or 0.
func (t *Token) ID() TokenID {
	return t.id
}

// ResolveName looks name up in the token's own scope chain.
func (t *Token) ResolveName(name string) (any, bool) {
	if !t.CanAssignDirectly && t.SavedWalkState != nil {
		return t.SavedWalkState.FindName(name)
	}
	for _, s := range t.NameScopes {
		if obj, ok := s.FindName(name); ok {
			return obj, true
		}
	}
	return nil, false
}

// removeName drops name from NeededNames, reporting whether it was present.
func (t *Token) removeName(name string) bool {
	for i, n := range t.NeededNames {
		if n == name {
			t.NeededNames = append(t.NeededNames[:i], t.NeededNames[i+1:]...)
			return true
		}
	}
	return false
}
