package objmodel

import (
	"fmt"

	"github.com/specialistvlad/hclgraph/internal/objpath"
	"github.com/zclconf/go-cty/cty"
)

// Object is one node of the built graph.
type Object struct {
	Type string
	Name string
	Path *objpath.Address
	// Owner is the object this one was assigned into as a child, nil for
	// the root and for evaluator results.
	Owner *Object
	// Value is set by the init directive.
	Value cty.Value

	Line      int
	Column    int
	EndLine   int
	EndColumn int
	Complete  bool

	members map[string]any
	order   []string
}

// New creates an empty object of the given type.
func New(typeName string, path *objpath.Address) *Object {
	return &Object{
		Type:    typeName,
		Path:    path,
		Value:   cty.NilVal,
		members: make(map[string]any),
	}
}

// Declare fixes the position of member in Members without assigning it.
// A declared member reads as nil until it is set.
func (o *Object) Declare(member string) {
	if _, ok := o.members[member]; !ok {
		o.order = append(o.order, member)
		o.members[member] = nil
	}
}

// Set writes v to member, replacing any previous value.
func (o *Object) Set(member string, v any) {
	if _, ok := o.members[member]; !ok {
		o.order = append(o.order, member)
	}
	o.members[member] = v
}

// Reserve appends an empty slot to the collection member and returns its index.
func (o *Object) Reserve(member string) int {
	items, _ := o.members[member].([]any)
	if _, ok := o.members[member]; !ok {
		o.order = append(o.order, member)
	}
	o.members[member] = append(items, nil)
	return len(items)
}

// SetAt writes v into a reserved collection slot.
func (o *Object) SetAt(member string, idx int, v any) error {
	items, ok := o.members[member].([]any)
	if !ok {
		return fmt.Errorf("member %q of %s is not a collection", member, o.Type)
	}
	if idx < 0 || idx >= len(items) {
		return fmt.Errorf("slot %d of %s.%s was never reserved", idx, o.Type, member)
	}
	items[idx] = v
	return nil
}

// Get returns the value of member.
func (o *Object) Get(member string) (any, bool) {
	v, ok := o.members[member]
	return v, ok
}

// Members returns member names in the order they were first written.
func (o *Object) Members() []string {
	return append([]string(nil), o.order...)
}

// HasValue reports whether the init directive produced a value.
func (o *Object) HasValue() bool {
	return o.Value != cty.NilVal
}

// String implements fmt.Stringer.
func (o *Object) String() string {
	if o.Name != "" {
		return fmt.Sprintf("%s %q", o.Type, o.Name)
	}
	if !o.Path.IsRoot() {
		return fmt.Sprintf("%s at %s", o.Type, o.Path)
	}
	return o.Type
}

// Adopt makes o the owner of child.
func (o *Object) Adopt(child *Object) {
	if child != nil && child != o {
		child.Owner = o
	}
}
