package bptree

import (
	"cmp"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"
)

// findCache memoizes point lookups in a bounded LRU. Any mutation of the
// tree purges it wholesale: a single insert or delete can move entries
// between leaves, so per-key invalidation would have to track node
// boundaries for no real win. Only hits are cached; a miss carries no value
// to remember.
//
// A nil findCache is valid and caches nothing.
type findCache[K cmp.Ordered, V any] struct {
	lru *freelru.LRU[K, V]
}

func newFindCache[K cmp.Ordered, V any](size int) *findCache[K, V] {
	if size <= 0 {
		return nil
	}
	lru, err := freelru.New[K, V](uint32(size), hashKey[K])
	if err != nil {
		return nil
	}
	return &findCache[K, V]{lru: lru}
}

func hashKey[K cmp.Ordered](key K) uint32 {
	return uint32(xxhash.Sum64(fmt.Append(nil, key)))
}

func (c *findCache[K, V]) get(key K) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	return c.lru.Get(key)
}

func (c *findCache[K, V]) add(key K, value V) {
	if c != nil {
		c.lru.Add(key, value)
	}
}

func (c *findCache[K, V]) purge() {
	if c != nil {
		c.lru.Purge()
	}
}
