package objpath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex is used to parse a single segment of a path, e.g., `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)(?:\[(\d+)\])?$`)

// Parse creates a new Address by parsing its canonical string representation.
// The empty string is the root address.
func Parse(raw string) (*Address, error) {
	addr := Root()
	if raw == "" {
		return addr, nil
	}

	for _, segmentStr := range strings.Split(raw, ".") {
		if segmentStr == "" {
			return nil, fmt.Errorf("object path contains empty segment")
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}

		segment := NewPathSegment(matches[1])
		if matches[2] != "" {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				// Unreachable due to regex `\d+`
				return nil, fmt.Errorf("internal error parsing index: %w", err)
			}
			segment.Index = index
		}
		addr.Path = append(addr.Path, segment)
	}

	return addr, nil
}
