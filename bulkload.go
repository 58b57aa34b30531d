package bptree

import (
	"cmp"
	"slices"
)

// Item is a key/payload pair, the unit of bulk construction.
type Item[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// BulkBuild constructs a tree directly from a batch of items, bottom-up,
// without per-key overflow resolution: leaves are packed sequentially at the
// configured fill factor (full by default) and linked, then each internal
// level is built by grouping children at maximum fanout, lifting one
// separator per group boundary, until a single root remains.
//
// The input need not be sorted; sorting is enforced here before packing.
// Duplicate keys in the input fail with ErrDuplicateKey. The resulting tree
// satisfies all occupancy invariants by construction.
func BulkBuild[K cmp.Ordered, V any](items []Item[K, V], order int, opts ...Option) (*Tree[K, V], error) {
	t, err := New[K, V](order, opts...)
	if err != nil {
		return nil, err
	}

	o := defaultTreeOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item[K, V]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Key == sorted[i].Key {
			return nil, ErrDuplicateKey
		}
	}

	if len(sorted) == 0 {
		return t, nil
	}

	perLeaf := int(o.clampedFillFactor() * float64(order))
	minLeaf := (order + 1) / 2
	if perLeaf < minLeaf {
		perLeaf = minLeaf
	}

	leaves, mins := packLeaves(sorted, chunkSizes(len(sorted), perLeaf, minLeaf, order))

	nodes := leaves
	for len(nodes) > 1 {
		nodes, mins = buildLevel(nodes, mins, perLeaf+1, order)
	}

	t.root = nodes[0]
	t.size = len(sorted)

	t.log.Info("bulk build complete", "keys", t.size, "height", t.Height(), "leaves", len(leaves))
	return t, nil
}

// chunkSizes splits total entries into runs of chunk, then fixes the tail:
// a final run below minSize either merges into its neighbor (when the pair
// fits in maxSize) or the last two runs are re-split evenly. Both neighbors
// end up within [minSize, maxSize].
func chunkSizes(total, chunk, minSize, maxSize int) []int {
	var sizes []int
	for remaining := total; remaining > 0; remaining -= chunk {
		sizes = append(sizes, min(chunk, remaining))
	}

	n := len(sizes)
	if n > 1 && sizes[n-1] < minSize {
		combined := sizes[n-2] + sizes[n-1]
		if combined <= maxSize {
			sizes[n-2] = combined
			sizes = sizes[:n-1]
		} else {
			sizes[n-2] = (combined + 1) / 2
			sizes[n-1] = combined / 2
		}
	}

	return sizes
}

// packLeaves builds the linked leaf level from sorted items, returning the
// leaves and each leaf's first key (the subtree minimums the level above
// lifts as separators).
func packLeaves[K cmp.Ordered, V any](sorted []Item[K, V], sizes []int) ([]*node[K, V], []K) {
	leaves := make([]*node[K, V], 0, len(sizes))
	mins := make([]K, 0, len(sizes))

	start := 0
	for _, size := range sizes {
		leaf := &node[K, V]{
			leaf:   true,
			keys:   make([]K, size),
			values: make([]V, size),
		}
		for i, item := range sorted[start : start+size] {
			leaf.keys[i] = item.Key
			leaf.values[i] = item.Value
		}
		if len(leaves) > 0 {
			leaves[len(leaves)-1].next = leaf
		}
		leaves = append(leaves, leaf)
		mins = append(mins, leaf.keys[0])
		start += size
	}

	return leaves, mins
}

// buildLevel groups children into internal nodes of at most fanout children,
// lifting each non-first child's subtree minimum as a separator. Returns the
// new level and its subtree minimums.
func buildLevel[K cmp.Ordered, V any](children []*node[K, V], mins []K, fanout, order int) ([]*node[K, V], []K) {
	if fanout > order+1 {
		fanout = order + 1
	}
	minChildren := order/2 + 1
	sizes := chunkSizes(len(children), fanout, minChildren, order+1)

	parents := make([]*node[K, V], 0, len(sizes))
	parentMins := make([]K, 0, len(sizes))

	start := 0
	for _, size := range sizes {
		parent := &node[K, V]{
			keys:     make([]K, 0, size-1),
			children: make([]*node[K, V], 0, size),
		}
		for i := start; i < start+size; i++ {
			if i > start {
				parent.keys = append(parent.keys, mins[i])
			}
			parent.children = append(parent.children, children[i])
		}
		parents = append(parents, parent)
		parentMins = append(parentMins, mins[start])
		start += size
	}

	return parents, parentMins
}
