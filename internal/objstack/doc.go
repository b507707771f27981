// Package objstack is the construction stack of the object writer.
//
// Every object currently being built has a Frame holding its instance, the
// member being written and the name scope its contents resolve names in.
// Frames are immutable and point at their parent, so a snapshot of the
// whole stack is a single pointer and costs nothing to take. The live Stack
// replaces its top frame with a modified copy instead of mutating it, which
// keeps every snapshot handed out earlier unchanged.
package objstack
