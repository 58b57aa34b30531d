// Package bptree implements an in-memory B+ tree that performs full
// redistribution: overflowing nodes first rotate entries into a sibling and
// underflowing nodes first borrow from one, so splits and merges only happen
// when no sibling can absorb or donate. Leaves are linked for ordered scans.
//
// The tree is not safe for concurrent use; callers wrapping it for
// concurrent access must serialize operations externally.
package bptree

import (
	"cmp"
	"fmt"
)

// Tree is an ordered index from keys to payloads. Key order is the natural
// order of K. The zero value is not usable; construct with New or BulkBuild.
type Tree[K cmp.Ordered, V any] struct {
	order int
	root  *node[K, V]
	size  int
	log   Logger
	cache *findCache[K, V]
}

// New creates an empty tree of the given order (maximum keys per node).
// Returns ErrInvalidOrder for orders below 3.
func New[K cmp.Ordered, V any](order int, opts ...Option) (*Tree[K, V], error) {
	if order < minOrder {
		return nil, ErrInvalidOrder
	}

	o := defaultTreeOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Tree[K, V]{
		order: order,
		root:  &node[K, V]{leaf: true},
		log:   o.logger,
		cache: newFindCache[K, V](o.findCacheSize),
	}, nil
}

// Order returns the tree order.
func (t *Tree[K, V]) Order() int {
	return t.order
}

// Len returns the number of keys in the tree.
func (t *Tree[K, V]) Len() int {
	return t.size
}

// Height returns the number of levels, counting the root. An empty tree has
// height 1 (a bare root leaf).
func (t *Tree[K, V]) Height() int {
	h := 1
	for n := t.root; !n.leaf; n = n.children[0] {
		h++
	}
	return h
}

// Find returns the payload stored under key, or ErrKeyNotFound.
func (t *Tree[K, V]) Find(key K) (V, error) {
	if v, ok := t.cache.get(key); ok {
		return v, nil
	}

	_, leaf := t.locate(key)
	i, found := leaf.findKey(key)
	if !found {
		var zero V
		return zero, ErrKeyNotFound
	}

	t.cache.add(key, leaf.values[i])
	return leaf.values[i], nil
}

// Contains reports whether key is present.
func (t *Tree[K, V]) Contains(key K) bool {
	_, err := t.Find(key)
	return err == nil
}

// verifyBounds checks that every given non-root node sits inside its
// occupancy bounds. A failure means the rebalancing engine itself is broken.
func (t *Tree[K, V]) verifyBounds(nodes ...*node[K, V]) error {
	for _, n := range nodes {
		if n == t.root {
			continue
		}
		if got := len(n.keys); got > t.order || got < n.minKeys(t.order) {
			t.log.Error("occupancy bounds violated",
				"keys", got, "min", n.minKeys(t.order), "max", t.order, "leaf", n.leaf)
			return fmt.Errorf("%w: node holds %d keys, want [%d,%d]",
				ErrInvariantViolation, got, n.minKeys(t.order), t.order)
		}
	}
	return nil
}

// Check verifies every structural invariant: occupancy bounds, key ordering
// within and across nodes, separator consistency, child counts, and a
// sorted, complete leaf chain. Returns a wrapped ErrInvariantViolation
// describing the first failure found. Intended for tests and debugging; it
// walks the entire tree.
func (t *Tree[K, V]) Check() error {
	leftmost, err := t.checkNode(t.root, nil, nil, true)
	if err != nil {
		return err
	}

	return t.checkLeafChain(leftmost)
}

// checkNode validates the subtree rooted at n, whose keys must lie in
// [lower, upper). It returns the leftmost leaf of the subtree.
func (t *Tree[K, V]) checkNode(n *node[K, V], lower, upper *K, isRoot bool) (*node[K, V], error) {
	count := len(n.keys)

	if !isRoot {
		if count < n.minKeys(t.order) || count > t.order {
			return nil, fmt.Errorf("%w: node holds %d keys, want [%d,%d]",
				ErrInvariantViolation, count, n.minKeys(t.order), t.order)
		}
	} else if count > t.order {
		return nil, fmt.Errorf("%w: root holds %d keys, max %d",
			ErrInvariantViolation, count, t.order)
	}

	for i := 0; i < count; i++ {
		if i > 0 && n.keys[i-1] >= n.keys[i] {
			return nil, fmt.Errorf("%w: keys out of order at index %d",
				ErrInvariantViolation, i)
		}
		if lower != nil && n.keys[i] < *lower {
			return nil, fmt.Errorf("%w: key %v below subtree bound %v",
				ErrInvariantViolation, n.keys[i], *lower)
		}
		if upper != nil && n.keys[i] >= *upper {
			return nil, fmt.Errorf("%w: key %v at or above subtree bound %v",
				ErrInvariantViolation, n.keys[i], *upper)
		}
	}

	if n.leaf {
		if len(n.values) != count {
			return nil, fmt.Errorf("%w: leaf has %d keys but %d values",
				ErrInvariantViolation, count, len(n.values))
		}
		return n, nil
	}

	if len(n.children) != count+1 {
		return nil, fmt.Errorf("%w: internal node has %d keys but %d children",
			ErrInvariantViolation, count, len(n.children))
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: non-collapsed internal node with zero keys",
			ErrInvariantViolation)
	}

	var leftmost *node[K, V]
	for i, child := range n.children {
		lo, hi := lower, upper
		if i > 0 {
			lo = &n.keys[i-1]
		}
		if i < count {
			hi = &n.keys[i]
		}
		first, err := t.checkNode(child, lo, hi, false)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			leftmost = first
		}
	}
	return leftmost, nil
}

// checkLeafChain walks the next links from the leftmost leaf and confirms
// they visit every key in ascending order, exactly size keys in total.
func (t *Tree[K, V]) checkLeafChain(leftmost *node[K, V]) error {
	var prev *K
	total := 0
	for leaf := leftmost; leaf != nil; leaf = leaf.next {
		if !leaf.leaf {
			return fmt.Errorf("%w: leaf chain reaches an internal node", ErrInvariantViolation)
		}
		for i := range leaf.keys {
			if prev != nil && *prev >= leaf.keys[i] {
				return fmt.Errorf("%w: leaf chain out of order at key %v",
					ErrInvariantViolation, leaf.keys[i])
			}
			prev = &leaf.keys[i]
			total++
		}
	}
	if total != t.size {
		return fmt.Errorf("%w: leaf chain has %d keys, tree reports %d",
			ErrInvariantViolation, total, t.size)
	}
	return nil
}
