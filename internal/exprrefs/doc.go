// Package exprrefs extracts the names and functions an HCL expression
// depends on.
//
// The writer uses RootNames to decide which named objects must exist
// before an expression can be evaluated, and SingleReference to recognize a
// bare identifier that should be assigned as the named object itself.
package exprrefs
