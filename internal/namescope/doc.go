// Package namescope maps names to the objects built from a document.
//
// Scopes nest per subtree. Lookup walks outward from the scope it starts in,
// so a name registered in an inner scope shadows the same name further out,
// while sibling scopes never see each other's names.
package namescope
