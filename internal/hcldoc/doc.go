// Package hcldoc reads an HCL document and replays it as a stream of
// construction events.
//
// A document holds exactly one top-level block:
//
//	object "Window" {
//	  name  = "main"
//	  title = "Hello"
//
//	  content "Panel" {
//	    child "Button" { name = "ok" }
//	    child "Button" { default = ok }
//	  }
//	}
//
// Attributes are members holding values. A nested block is a member holding
// a child object whose type is the block label. A member written as more than
// one block is a collection. The directive attributes namescope, name and
// init are always emitted first, in that order; every other member follows in
// source order.
package hcldoc
