package objstack

import "github.com/specialistvlad/hclgraph/internal/namescope"

// Stack is the live construction stack. The zero value is an empty stack.
type Stack struct {
	top *Frame
}

// Push adds a frame for a new object. Depth and parent linkage are set by the stack.
func (s *Stack) Push(f Frame) {
	f.parent = s.top
	f.Depth = 0
	if s.top != nil {
		f.Depth = s.top.Depth + 1
	}
	s.top = &f
}

// Pop removes and returns the top frame, or nil if the stack is empty.
func (s *Stack) Pop() *Frame {
	f := s.top
	if f != nil {
		s.top = f.parent
	}
	return f
}

// Top returns the top frame without removing it.
func (s *Stack) Top() *Frame {
	return s.top
}

// Len returns the number of frames on the stack.
func (s *Stack) Len() int {
	if s.top == nil {
		return 0
	}
	return s.top.Depth + 1
}

// Snapshot returns an immutable view of the stack as it is now.
func (s *Stack) Snapshot() *Frame {
	return s.top
}

// Update replaces the top frame with a copy modified by fn.
func (s *Stack) Update(fn func(f *Frame)) {
	if s.top == nil {
		return
	}
	next := *s.top
	fn(&next)
	next.parent = s.top.parent
	next.Depth = s.top.Depth
	s.top = &next
}

// IsOnStack reports whether instance belongs to any live frame.
func (s *Stack) IsOnStack(instance any) bool {
	return s.top.Contains(instance)
}

// CurrentInstance returns the object being built, or nil.
func (s *Stack) CurrentInstance() any {
	if s.top == nil {
		return nil
	}
	return s.top.Instance
}

// CurrentMember returns the member being written on the current object.
func (s *Stack) CurrentMember() string {
	if s.top == nil {
		return ""
	}
	return s.top.Member
}

// CurrentType returns the type of the current object.
func (s *Stack) CurrentType() string {
	if s.top == nil {
		return ""
	}
	return s.top.Type
}

// CurrentScope returns the scope names resolve in for the current object.
func (s *Stack) CurrentScope() *namescope.Scope {
	if s.top == nil {
		return nil
	}
	return s.top.Scope
}

// ParentInstance returns the object enclosing the current one, or nil.
func (s *Stack) ParentInstance() any {
	if p := s.top.Parent(); p != nil {
		return p.Instance
	}
	return nil
}

// ParentMember returns the member of the parent the current object is written to.
func (s *Stack) ParentMember() string {
	if p := s.top.Parent(); p != nil {
		return p.Member
	}
	return ""
}

// ParentType returns the type of the enclosing object.
func (s *Stack) ParentType() string {
	if p := s.top.Parent(); p != nil {
		return p.Type
	}
	return ""
}
