package bptree

// Delete removes key from the tree. Deleting an absent key fails with
// ErrKeyNotFound and leaves the tree unchanged.
func (t *Tree[K, V]) Delete(key K) error {
	chain, leaf := t.locate(key)

	pos, found := leaf.findKey(key)
	if !found {
		return ErrKeyNotFound
	}

	leaf.removeEntry(pos)
	t.size--
	t.cache.purge()

	return t.resolveUnderflow(chain, leaf)
}

// resolveUnderflow walks the ancestor chain upward fixing underflow, trying
// borrow-left, merge-left, borrow-right, merge-right, in that fixed order.
// A sibling at exactly minimum occupancy never donates. Merges remove a
// separator from the parent, which may underflow in turn; the loop then
// continues one level up. The root is exempt from the minimum bound and may
// collapse afterward.
func (t *Tree[K, V]) resolveUnderflow(chain []pathElem[K, V], cur *node[K, V]) error {
	for depth := len(chain); depth > 0 && cur.underflowing(t.order); depth-- {
		parent, idx := chain[depth-1].node, chain[depth-1].index

		if idx > 0 {
			left := parent.children[idx-1]
			if len(left.keys) > left.minKeys(t.order) {
				t.borrowLeft(parent, idx)
				t.collapseRoot()
				return t.verifyBounds(left, cur)
			}
			t.mergeLeft(parent, idx)
			if err := t.verifyBounds(left); err != nil {
				return err
			}
		} else {
			right := parent.children[idx+1]
			if len(right.keys) > right.minKeys(t.order) {
				t.borrowRight(parent, idx)
				t.collapseRoot()
				return t.verifyBounds(cur, right)
			}
			t.mergeRight(parent, idx)
			if err := t.verifyBounds(cur); err != nil {
				return err
			}
		}

		cur = parent
	}

	t.collapseRoot()
	return nil
}

// borrowLeft moves the left sibling's last entry into the underflowing node.
// For internal nodes the separator rotates through the parent; for leaves
// the parent separator becomes the borrowed key, the node's new minimum.
func (t *Tree[K, V]) borrowLeft(parent *node[K, V], idx int) {
	n := parent.children[idx]
	left := parent.children[idx-1]
	last := len(left.keys) - 1

	if n.leaf {
		n.keys = insertAt(n.keys, 0, left.keys[last])
		n.values = insertAt(n.values, 0, left.values[last])
		left.removeEntry(last)
		parent.keys[idx-1] = n.keys[0]
		return
	}

	n.keys = insertAt(n.keys, 0, parent.keys[idx-1])
	n.children = insertAt(n.children, 0, left.children[len(left.children)-1])
	parent.keys[idx-1] = left.keys[last]
	left.keys = left.keys[:last]
	left.children = left.children[:len(left.children)-1]
}

// borrowRight moves the right sibling's first entry into the underflowing
// node, the mirror of borrowLeft.
func (t *Tree[K, V]) borrowRight(parent *node[K, V], idx int) {
	n := parent.children[idx]
	right := parent.children[idx+1]

	if n.leaf {
		n.keys = append(n.keys, right.keys[0])
		n.values = append(n.values, right.values[0])
		right.removeEntry(0)
		parent.keys[idx] = right.keys[0]
		return
	}

	n.keys = append(n.keys, parent.keys[idx])
	n.children = append(n.children, right.children[0])
	parent.keys[idx] = right.keys[0]
	right.keys = removeAt(right.keys, 0)
	right.children = removeAt(right.children, 0)
}

// mergeLeft concatenates the underflowing node into its left sibling and
// removes the node plus the separator between them from the parent. Leaf
// merges drop the separator (it is routing only) and splice the next chain;
// internal merges pull the separator down between the two key runs.
func (t *Tree[K, V]) mergeLeft(parent *node[K, V], idx int) {
	n := parent.children[idx]
	left := parent.children[idx-1]

	if n.leaf {
		left.keys = append(left.keys, n.keys...)
		left.values = append(left.values, n.values...)
		left.next = n.next
	} else {
		left.keys = append(left.keys, parent.keys[idx-1])
		left.keys = append(left.keys, n.keys...)
		left.children = append(left.children, n.children...)
	}

	parent.keys = removeAt(parent.keys, idx-1)
	parent.children = removeAt(parent.children, idx)
}

// mergeRight absorbs the right sibling into the underflowing node, the
// mirror of mergeLeft. Only reached when the node is the leftmost child.
func (t *Tree[K, V]) mergeRight(parent *node[K, V], idx int) {
	n := parent.children[idx]
	right := parent.children[idx+1]

	if n.leaf {
		n.keys = append(n.keys, right.keys...)
		n.values = append(n.values, right.values...)
		n.next = right.next
	} else {
		n.keys = append(n.keys, parent.keys[idx])
		n.keys = append(n.keys, right.keys...)
		n.children = append(n.children, right.children...)
	}

	parent.keys = removeAt(parent.keys, idx)
	parent.children = removeAt(parent.children, idx+1)
}

// collapseRoot shrinks the tree when a merge leaves an internal root with a
// single child. An empty root leaf is simply an empty tree and stays as-is.
func (t *Tree[K, V]) collapseRoot() {
	for !t.root.leaf && len(t.root.keys) == 0 {
		t.root = t.root.children[0]
		t.log.Info("root collapsed", "height", t.Height(), "keys", t.size)
	}
}
