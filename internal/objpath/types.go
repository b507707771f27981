package objpath

// PathSegment represents a single component of an address path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (s PathSegment) HasIndex() bool {
	return s.Index != -1
}

// Address locates an object relative to the document root.
type Address struct {
	Path []PathSegment
}

// Root returns the address of the document root.
func Root() *Address {
	return &Address{}
}
