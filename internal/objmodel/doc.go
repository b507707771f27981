// Package objmodel holds the objects produced by the object writer.
//
// An Object is a typed bag of members. Member values are cty values for
// data, *Object for child objects and references, and []any for collection
// members. Objects keep their member order so rendered output follows the
// document.
package objmodel
