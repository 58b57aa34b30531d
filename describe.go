package bptree

import (
	"cmp"
	"fmt"
	"strings"
)

// Describe returns a level-ordered structural dump: one line per level,
// nodes separated by spaces. Internal nodes render as (k1:k2) and leaves as
// [k1,k2], the bracket convention of the interactive display. Read-only.
func (t *Tree[K, V]) Describe() string {
	var b strings.Builder

	level := []*node[K, V]{t.root}
	for len(level) > 0 {
		var next []*node[K, V]
		for i, n := range level {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(describeNode(n))
			next = append(next, n.children...)
		}
		b.WriteByte('\n')
		level = next
	}

	return b.String()
}

func describeNode[K cmp.Ordered, V any](n *node[K, V]) string {
	parts := make([]string, len(n.keys))
	for i, k := range n.keys {
		parts[i] = fmt.Sprintf("%v", k)
	}
	if n.leaf {
		return "[" + strings.Join(parts, ",") + "]"
	}
	return "(" + strings.Join(parts, ":") + ")"
}
