// Package fixup tracks property assignments that cannot be made yet because
// they refer to objects that do not exist, or are not finished, at the point
// the document walk reaches them.
//
// # Tokens
//
// A Token is one deferred unit of work. It records where the value goes
// (Target), what it is waiting for, and enough saved state to redo the work
// later. A token waits either on names (NeededNames) or on a single child
// object whose own subtree still has pending work (ReferencedObject).
//
// # Graph
//
// The Graph owns every pending token. Tokens live in an arena keyed by id
// and are reachable through three side indexes:
//
//	parent object ──► {token ids}   every token, keyed by Target.Instance
//	child object  ──► token id      at most one blocker per child
//	name          ──► {token ids}   tokens waiting on that name
//
// As the writer names finished objects it calls ResolveDependenciesTo. Tokens
// whose last dependency is satisfied leave every index and are queued; the
// writer drains the queue with TakeNextResolved.
//
// # End of document
//
// Whatever is still pending when the document ends is drained in three
// passes, in this order:
//
//  1. DrainSimpleFixups: direct reference assignments.
//  2. DrainReparses: name-keyed tokens needing re-evaluation.
//  3. DrainObjectDependencies: child and first-run tokens, depth first so a
//     dependency always precedes its dependants, followed by the document
//     root token.
//
// The object dependency graph may contain cycles. A cycle made only of
// first-run deferred evaluations cannot be ordered and is reported as a
// CircularEvaluationError; any other cycle is broken where the walk first
// re-enters it.
//
// The Graph is single-threaded and must be driven from one goroutine.
package fixup
