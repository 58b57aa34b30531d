package bptree

import "cmp"

// Cursor provides lazy ascending iteration over the tree by walking the
// leaf chain. A cursor starts positioned before the first entry; call Next
// to advance. Cursors are invalidated by any mutation of the tree; behavior
// after a mutation is undefined. Obtain a fresh cursor with Iterate to
// restart from the leftmost leaf.
type Cursor[K cmp.Ordered, V any] struct {
	leaf *node[K, V]
	pos  int
}

// Iterate returns a cursor positioned before the first key.
func (t *Tree[K, V]) Iterate() *Cursor[K, V] {
	return &Cursor[K, V]{leaf: t.leftmostLeaf(), pos: -1}
}

// Seek returns a cursor positioned before the first key >= target, so the
// next call to Next lands on it.
func (t *Tree[K, V]) Seek(target K) *Cursor[K, V] {
	_, leaf := t.locate(target)
	pos, _ := leaf.findKey(target)
	return &Cursor[K, V]{leaf: leaf, pos: pos - 1}
}

// Next advances the cursor, reporting whether an entry is available.
func (c *Cursor[K, V]) Next() bool {
	if c.leaf == nil {
		return false
	}
	c.pos++
	for c.pos >= len(c.leaf.keys) {
		c.leaf = c.leaf.next
		c.pos = 0
		if c.leaf == nil {
			return false
		}
	}
	return true
}

// Key returns the key at the cursor. Valid only after Next returned true.
func (c *Cursor[K, V]) Key() K {
	return c.leaf.keys[c.pos]
}

// Value returns the payload at the cursor. Valid only after Next returned true.
func (c *Cursor[K, V]) Value() V {
	return c.leaf.values[c.pos]
}

// Ascend calls fn for every entry in ascending key order until fn returns
// false. It never mutates the tree.
func (t *Tree[K, V]) Ascend(fn func(key K, value V) bool) {
	for leaf := t.leftmostLeaf(); leaf != nil; leaf = leaf.next {
		for i := range leaf.keys {
			if !fn(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
	}
}

// Items collects every entry in ascending key order.
func (t *Tree[K, V]) Items() []Item[K, V] {
	items := make([]Item[K, V], 0, t.size)
	t.Ascend(func(key K, value V) bool {
		items = append(items, Item[K, V]{Key: key, Value: value})
		return true
	})
	return items
}

// Keys collects every key in ascending order.
func (t *Tree[K, V]) Keys() []K {
	keys := make([]K, 0, t.size)
	t.Ascend(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
