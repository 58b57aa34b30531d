package bptree

import (
	"cmp"
	"sort"
)

// node is a B+ tree node. Internal nodes carry keys and children; leaves
// carry keys, values and a next link forming the ascending leaf chain.
// There is no parent pointer: rebalancing walks the ancestor chain recorded
// by locate instead.
type node[K cmp.Ordered, V any] struct {
	leaf     bool
	keys     []K
	values   []V           // leaf only
	children []*node[K, V] // internal only
	next     *node[K, V]   // leaf only, nil at the rightmost leaf
}

// isFull reports whether the node is at capacity. A full node is still
// valid; one more entry makes it overflow.
func (n *node[K, V]) isFull(order int) bool {
	return len(n.keys) >= order
}

// overflowing reports whether the node exceeds capacity and must be fixed
// by rotation or split.
func (n *node[K, V]) overflowing(order int) bool {
	return len(n.keys) > order
}

// underflowing reports whether a non-root node is below minimum occupancy.
// The caller is responsible for exempting the root.
func (n *node[K, V]) underflowing(order int) bool {
	return len(n.keys) < n.minKeys(order)
}

// minKeys is the minimum occupancy bound for a non-root node. Leaves keep
// ceil(order/2) keys. Internal nodes keep floor(order/2): promoting the
// median of order+1 keys leaves exactly that many in the right half, so a
// stricter bound is unsatisfiable for odd orders. The two coincide for even
// orders.
func (n *node[K, V]) minKeys(order int) int {
	if n.leaf {
		return (order + 1) / 2
	}
	return order / 2
}

// findChildIndex returns the index of the child subtree that must contain
// key. Separators are minimums of their right subtrees, so ties resolve
// toward the right child.
func (n *node[K, V]) findChildIndex(key K) int {
	return sort.Search(len(n.keys), func(i int) bool { return key < n.keys[i] })
}

// findKey returns the position of key in a leaf, or the position it would
// occupy, plus whether it is present.
func (n *node[K, V]) findKey(key K) (int, bool) {
	i := sort.Search(len(n.keys), func(i int) bool { return n.keys[i] >= key })
	return i, i < len(n.keys) && n.keys[i] == key
}

// insertEntry places a key/value pair at position i in a leaf. It never
// checks overflow; the insertion engine does.
func (n *node[K, V]) insertEntry(i int, key K, value V) {
	n.keys = insertAt(n.keys, i, key)
	n.values = insertAt(n.values, i, value)
}

// removeEntry removes the leaf entry at position i. It never checks
// underflow; the deletion engine does.
func (n *node[K, V]) removeEntry(i int) {
	n.keys = removeAt(n.keys, i)
	n.values = removeAt(n.values, i)
}

// insertAt inserts value at index in slice
func insertAt[T any](slice []T, index int, value T) []T {
	var zero T
	slice = append(slice, zero)
	copy(slice[index+1:], slice[index:])
	slice[index] = value
	return slice
}

// removeAt removes element at index from slice
func removeAt[T any](slice []T, index int) []T {
	return append(slice[:index], slice[index+1:]...)
}
