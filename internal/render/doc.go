// Package render writes a built object graph back out as HCL, YAML or JSON.
//
// Objects owned by their parent are nested. Objects that were assigned by
// reference are written as a reference to their name, so shared and cyclic
// graphs render finitely.
package render
