package objstack

import "github.com/specialistvlad/hclgraph/internal/namescope"

// Frame records one object under construction.
type Frame struct {
	Instance   any
	Type       string
	Member     string // member currently being written, "" between members
	Collection bool   // Member is a collection member
	Index      int    // slot reserved for Instance in the parent's collection, -1 if none
	Scope      *namescope.Scope
	Name       string // name registered for Instance, if any
	Line       int
	Column     int
	Depth      int

	parent *Frame
}

// Parent returns the frame of the enclosing object, or nil at the root.
func (f *Frame) Parent() *Frame {
	if f == nil {
		return nil
	}
	return f.parent
}

// Scopes returns the distinct scopes visible from f, innermost first.
func (f *Frame) Scopes() []*namescope.Scope {
	var scopes []*namescope.Scope
	for cur := f; cur != nil; cur = cur.parent {
		if cur.Scope == nil {
			continue
		}
		if len(scopes) > 0 && scopes[len(scopes)-1] == cur.Scope {
			continue
		}
		scopes = append(scopes, cur.Scope)
	}
	return scopes
}

// FindName resolves name through the scopes visible from f.
func (f *Frame) FindName(name string) (any, bool) {
	for _, s := range f.Scopes() {
		if obj, ok := s.FindName(name); ok {
			return obj, true
		}
	}
	return nil, false
}

// Find walks outward from f and returns the first frame matching pred.
func (f *Frame) Find(pred func(*Frame) bool) *Frame {
	for cur := f; cur != nil; cur = cur.parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// Contains reports whether instance is on the stack ending at f.
func (f *Frame) Contains(instance any) bool {
	return f.Find(func(cur *Frame) bool { return cur.Instance == instance }) != nil
}
