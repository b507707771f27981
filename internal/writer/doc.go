// Package writer builds an object graph from hcldoc construction events.
//
// The Writer owns the construction stack, the document's root name scope and
// the fixup graph. Values that cannot be assigned yet, because they refer to
// objects that are missing or still under construction, become fixup tokens.
// Each time an object becomes fully initialized the Writer tells the graph,
// then runs every token that became resolvable (the trigger loop). Whatever
// is still pending when the document ends is drained by Close in three
// passes: direct references, re-evaluations, then object dependencies
// deepest first.
//
// Objects whose type has a registered evaluator are not assigned themselves;
// their evaluator runs once their own subtree is complete and its result is
// assigned in their place.
package writer
