package namescope

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// DuplicateNameError is returned when a name is registered twice in the same scope.
type DuplicateNameError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("name %q is already registered in this scope", e.Name)
}

// InvalidNameError is returned when a name cannot be used as an identifier.
type InvalidNameError struct {
	Name string
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: names must be valid identifiers", e.Name)
}

// Entry is a single name binding.
type Entry struct {
	Name   string
	Object any
}

// Scope is a mapping from name to object for one subtree of a document.
// A Scope is not safe for concurrent use.
type Scope struct {
	parent *Scope
	names  map[string]any
	order  []string
}

// New creates an empty root scope.
func New() *Scope {
	return &Scope{names: make(map[string]any)}
}

// NewChild creates an empty scope nested inside s.
func (s *Scope) NewChild() *Scope {
	child := New()
	child.parent = s
	return child
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// FindName looks name up in s and then in its ancestors, returning the first match.
func (s *Scope) FindName(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if obj, ok := cur.names[name]; ok {
			return obj, true
		}
	}
	return nil, false
}

// FindLocal looks name up in s only.
func (s *Scope) FindLocal(name string) (any, bool) {
	obj, ok := s.names[name]
	return obj, ok
}

// Register binds name to obj in s. Ancestor bindings of the same name are
// shadowed, not reported.
func (s *Scope) Register(name string, obj any) error {
	if !hclsyntax.ValidIdentifier(name) {
		return &InvalidNameError{Name: name}
	}
	if _, exists := s.names[name]; exists {
		return &DuplicateNameError{Name: name}
	}
	s.names[name] = obj
	s.order = append(s.order, name)
	return nil
}

// AllEntries returns the bindings of s (not its ancestors) in registration order.
func (s *Scope) AllEntries() []Entry {
	entries := make([]Entry, 0, len(s.order))
	for _, name := range s.order {
		entries = append(entries, Entry{Name: name, Object: s.names[name]})
	}
	return entries
}

// Len returns the number of names bound directly in s.
func (s *Scope) Len() int {
	return len(s.order)
}
