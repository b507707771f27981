package hcldoc

import (
	"github.com/hashicorp/hcl/v2"
)

// Directive member names.
const (
	DirectiveName      = "name"
	DirectiveNamescope = "namescope"
	DirectiveInit      = "init"
)

// RootBlockType is the block type of the single top-level object.
const RootBlockType = "object"

// ValueKind classifies a member value.
type ValueKind int

const (
	// Literal values reference no names and can be evaluated at once.
	Literal ValueKind = iota
	// Reference values are a single bare identifier naming an object.
	Reference
	// Expression values reference one or more names.
	Expression
)

// String implements fmt.Stringer.
func (k ValueKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Reference:
		return "reference"
	case Expression:
		return "expression"
	default:
		return "unknown"
	}
}

// Value is one member value as written in the document.
type Value struct {
	Kind ValueKind
	Expr hcl.Expression
	// Name is the referenced identifier for Reference values.
	Name string
}

// Range returns the source range of the value.
func (v Value) Range() hcl.Range {
	if v.Expr == nil {
		return hcl.Range{}
	}
	return v.Expr.Range()
}

// Sink receives construction events. Any error aborts the walk and is
// returned from Parse.
type Sink interface {
	// StartObject begins an object of the given type. rng covers the whole block.
	StartObject(typeName string, rng hcl.Range) error
	// StartMember begins a member of the current object.
	StartMember(name string, collection bool, rng hcl.Range) error
	// Value writes a value to the current member.
	Value(v Value) error
	EndMember() error
	EndObject() error
}
