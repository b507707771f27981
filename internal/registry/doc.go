// Package registry provides the central "glue" for the module system.
//
// The Registry maps object type names used in documents (e.g. "Format") to
// the Go evaluators that compute a value for such objects, and holds the
// function table available to every expression. Modules populate it at
// startup; ValidateRegistry then checks every evaluator's input contract so
// a broken module fails before any document is read.
package registry
