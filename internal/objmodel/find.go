package objmodel

import (
	"fmt"

	"github.com/specialistvlad/hclgraph/internal/objpath"
)

// Find walks from root along addr and returns the member value it names.
func Find(root any, addr *objpath.Address) (any, error) {
	cur := root
	for i, seg := range addr.Path {
		obj, ok := cur.(*Object)
		if !ok {
			return nil, fmt.Errorf("%s is not an object", prefix(addr, i))
		}
		v, ok := obj.Get(seg.Name)
		if !ok {
			return nil, fmt.Errorf("%s has no member %q", obj, seg.Name)
		}
		if seg.HasIndex() {
			items, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("member %q of %s is not a collection", seg.Name, obj)
			}
			if seg.Index >= len(items) {
				return nil, fmt.Errorf("index %d out of range for %s.%s (length %d)", seg.Index, obj, seg.Name, len(items))
			}
			v = items[seg.Index]
		}
		cur = v
	}
	return cur, nil
}

func prefix(addr *objpath.Address, n int) string {
	if n == 0 {
		return "document root"
	}
	return (&objpath.Address{Path: addr.Path[:n]}).String()
}
