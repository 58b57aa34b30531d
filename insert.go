package bptree

// Insert places key with its payload into the tree. Re-inserting an existing
// key fails with ErrDuplicateKey and leaves the tree unchanged; there is no
// overwrite.
func (t *Tree[K, V]) Insert(key K, value V) error {
	chain, leaf := t.locate(key)

	pos, found := leaf.findKey(key)
	if found {
		return ErrDuplicateKey
	}

	leaf.insertEntry(pos, key, value)
	t.size++
	t.cache.purge()

	return t.resolveOverflow(chain, leaf)
}

// resolveOverflow walks the ancestor chain upward fixing overflow, trying
// rotate-left, then rotate-right, then split. Splitting pushes a separator
// into the parent, which may overflow in turn; the loop then continues one
// level up. An explicit loop keeps the cascade bounded by tree height.
func (t *Tree[K, V]) resolveOverflow(chain []pathElem[K, V], cur *node[K, V]) error {
	for depth := len(chain); ; depth-- {
		if !cur.overflowing(t.order) {
			return nil
		}

		// The root has no siblings to rotate into; split and grow.
		if depth == 0 {
			t.splitRoot()
			return t.verifyBounds(t.root.children...)
		}

		parent, idx := chain[depth-1].node, chain[depth-1].index

		if idx > 0 && !parent.children[idx-1].isFull(t.order) {
			t.rotateLeft(parent, idx)
			return t.verifyBounds(parent.children[idx-1], cur)
		}

		if idx < len(parent.children)-1 && !parent.children[idx+1].isFull(t.order) {
			t.rotateRight(parent, idx)
			return t.verifyBounds(cur, parent.children[idx+1])
		}

		t.splitChild(parent, idx)
		if err := t.verifyBounds(parent.children[idx], parent.children[idx+1]); err != nil {
			return err
		}
		cur = parent
	}
}

// rotateLeft moves the overflowing node's leftmost entry into its left
// sibling, which has spare capacity. For internal nodes the separator
// rotates through the parent; for leaves the parent separator is refreshed
// to the new minimum of the donor.
func (t *Tree[K, V]) rotateLeft(parent *node[K, V], idx int) {
	n := parent.children[idx]
	left := parent.children[idx-1]

	if n.leaf {
		left.keys = append(left.keys, n.keys[0])
		left.values = append(left.values, n.values[0])
		n.removeEntry(0)
		parent.keys[idx-1] = n.keys[0]
		return
	}

	left.keys = append(left.keys, parent.keys[idx-1])
	left.children = append(left.children, n.children[0])
	parent.keys[idx-1] = n.keys[0]
	n.keys = removeAt(n.keys, 0)
	n.children = removeAt(n.children, 0)
}

// rotateRight moves the overflowing node's rightmost entry into its right
// sibling, the mirror of rotateLeft.
func (t *Tree[K, V]) rotateRight(parent *node[K, V], idx int) {
	n := parent.children[idx]
	right := parent.children[idx+1]
	last := len(n.keys) - 1

	if n.leaf {
		right.keys = insertAt(right.keys, 0, n.keys[last])
		right.values = insertAt(right.values, 0, n.values[last])
		parent.keys[idx] = n.keys[last]
		n.removeEntry(last)
		return
	}

	right.keys = insertAt(right.keys, 0, parent.keys[idx])
	right.children = insertAt(right.children, 0, n.children[len(n.children)-1])
	parent.keys[idx] = n.keys[last]
	n.keys = n.keys[:last]
	n.children = n.children[:len(n.children)-1]
}

// splitChild splits the overflowing child at idx and inserts the separator
// and new right sibling into parent.
func (t *Tree[K, V]) splitChild(parent *node[K, V], idx int) {
	right, sep := t.splitNode(parent.children[idx])
	parent.keys = insertAt(parent.keys, idx, sep)
	parent.children = insertAt(parent.children, idx+1, right)
}

// splitRoot splits the overflowing root and grows the tree by one level.
// The new root holds just the promoted separator and the two halves.
func (t *Tree[K, V]) splitRoot() {
	old := t.root
	right, sep := t.splitNode(old)
	t.root = &node[K, V]{
		keys:     []K{sep},
		children: []*node[K, V]{old, right},
	}
	t.log.Info("root split", "height", t.Height(), "keys", t.size)
}

// splitNode divides an overflowing node in two and returns the new right
// sibling plus the separator for the parent. A leaf keeps all data keys and
// copies the right half's first key up; an internal node promotes its median
// without duplicating it downward.
func (t *Tree[K, V]) splitNode(n *node[K, V]) (*node[K, V], K) {
	mid := (t.order + 1) / 2

	if n.leaf {
		right := &node[K, V]{
			leaf:   true,
			keys:   append([]K(nil), n.keys[mid:]...),
			values: append([]V(nil), n.values[mid:]...),
			next:   n.next,
		}
		n.keys = n.keys[:mid:mid]
		n.values = n.values[:mid:mid]
		n.next = right
		return right, right.keys[0]
	}

	sep := n.keys[mid]
	right := &node[K, V]{
		keys:     append([]K(nil), n.keys[mid+1:]...),
		children: append([]*node[K, V](nil), n.children[mid+1:]...),
	}
	n.keys = n.keys[:mid:mid]
	n.children = n.children[: mid+1 : mid+1]
	return right, sep
}
