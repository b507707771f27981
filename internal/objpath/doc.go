/*
Package objpath provides a structured representation of where an object sits
in a built document, e.g. `content.items[1].label`.

The first segment names the member of the root object; each following
segment names a member of the object before it. A segment carries an index
when the member is a collection. The root object itself has the empty
address.
*/
package objpath
