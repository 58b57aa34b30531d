package bptree

import "cmp"

// pathElem is one level of the root-to-leaf search path: an internal node
// and the index of the child descended into. The index doubles as the
// position of that child among its siblings, which is what the rebalancing
// engines need to find true left/right neighbors.
type pathElem[K cmp.Ordered, V any] struct {
	node  *node[K, V]
	index int
}

// locate walks from the root to the leaf that would contain key, recording
// the full ancestor chain. The chain is valid only until the next mutation.
func (t *Tree[K, V]) locate(key K) ([]pathElem[K, V], *node[K, V]) {
	var chain []pathElem[K, V]
	n := t.root
	for !n.leaf {
		i := n.findChildIndex(key)
		chain = append(chain, pathElem[K, V]{node: n, index: i})
		n = n.children[i]
	}
	return chain, n
}

// leftmostLeaf returns the head of the leaf chain.
func (t *Tree[K, V]) leftmostLeaf() *node[K, V] {
	n := t.root
	for !n.leaf {
		n = n.children[0]
	}
	return n
}
