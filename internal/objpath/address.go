package objpath

import (
	"fmt"
	"slices"
	"strings"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return slices.Equal(a.Path, other.Path)
}

// Child returns a new address one member below a. Pass a negative index for
// a non-collection member.
func (a *Address) Child(member string, index int) *Address {
	next := &Address{}
	if a != nil {
		next.Path = slices.Clone(a.Path)
	}
	if index < 0 {
		next.Path = append(next.Path, NewPathSegment(member))
	} else {
		next.Path = append(next.Path, NewPathSegmentWithIndex(member, index))
	}
	return next
}

// IsRoot reports whether a is the document root.
func (a *Address) IsRoot() bool {
	return a == nil || len(a.Path) == 0
}
