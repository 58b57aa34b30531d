package bptree

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTree(t *testing.T, order int, keys ...int) *Tree[int, int] {
	t.Helper()

	tree, err := New[int, int](order)
	require.NoError(t, err)
	for _, k := range keys {
		require.NoError(t, tree.Insert(k, k*10), "insert %d", k)
	}
	return tree
}

func intRange(lo, hi int) []int {
	keys := make([]int, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		keys = append(keys, k)
	}
	return keys
}

// Basic Operations Tests

func TestInsertAndFind(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, 5, 3, 8, 1, 9, 7)

	for _, k := range []int{1, 3, 5, 7, 8, 9} {
		v, err := tree.Find(k)
		require.NoError(t, err)
		assert.Equal(t, k*10, v)
	}

	_, err := tree.Find(6)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.Equal(t, 6, tree.Len())
	assert.NoError(t, tree.Check())
}

func TestNewRejectsInvalidOrder(t *testing.T) {
	t.Parallel()

	for _, order := range []int{-1, 0, 1, 2} {
		_, err := New[int, string](order)
		assert.ErrorIs(t, err, ErrInvalidOrder, "order %d", order)
	}

	tree, err := New[int, string](3)
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Order())
}

func TestDuplicateKeyLeavesTreeUnchanged(t *testing.T) {
	t.Parallel()

	// Scenario: re-inserting an existing key is rejected, not overwritten.
	tree := seedTree(t, 4, intRange(1, 8)...)

	before := tree.Describe()
	beforeItems := tree.Items()

	err := tree.Insert(5, 999)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	assert.Equal(t, before, tree.Describe())
	assert.Equal(t, beforeItems, tree.Items())

	v, err := tree.Find(5)
	require.NoError(t, err)
	assert.Equal(t, 50, v, "payload must not be overwritten")
}

func TestDeleteFromEmptyTree(t *testing.T) {
	t.Parallel()

	// Scenario: deleting from an empty tree fails and the tree stays empty.
	tree, err := New[int, int](4)
	require.NoError(t, err)

	assert.ErrorIs(t, tree.Delete(42), ErrKeyNotFound)
	assert.Equal(t, 0, tree.Len())
	assert.True(t, tree.root.leaf)
	assert.Empty(t, tree.root.keys)
	assert.NoError(t, tree.Check())
}

// Insertion Engine Tests

func TestSequentialInsertSplitsRoot(t *testing.T) {
	t.Parallel()

	// Scenario: order 4, keys 1..5. The fifth key overflows the root leaf,
	// which has no siblings, so it must split; the new root is internal with
	// exactly one separator.
	tree := seedTree(t, 4, intRange(1, 5)...)

	require.False(t, tree.root.leaf)
	assert.Len(t, tree.root.keys, 1)
	assert.Equal(t, 2, tree.Height())
	assert.Equal(t, "(3)\n[1,2] [3,4,5]\n", tree.Describe())
	assert.NoError(t, tree.Check())
}

func TestOverflowRotatesLeftBeforeSplitting(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, intRange(1, 6)...)
	require.Equal(t, "(3)\n[1,2] [3,4,5,6]\n", tree.Describe())

	// The right leaf overflows but its left sibling has room: the leftmost
	// entry rotates over instead of splitting, and the separator follows.
	require.NoError(t, tree.Insert(7, 70))

	assert.Equal(t, "(4)\n[1,2,3] [4,5,6,7]\n", tree.Describe())
	assert.Equal(t, 2, tree.Height(), "rotation must not add a level")
	assert.NoError(t, tree.Check())
}

func TestOverflowRotatesRightWhenLeftIsFull(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, 10, 20, 30, 40, 50, 60, 70, 80, 90)
	require.Equal(t, "(50:70)\n[10,20,30,40] [50,60] [70,80,90]\n", tree.Describe())

	require.NoError(t, tree.Insert(55, 550))
	require.NoError(t, tree.Insert(56, 560))

	// The middle leaf overflows; its left sibling is full but the right one
	// has a slot, so the rightmost entry rotates that way.
	require.NoError(t, tree.Insert(57, 570))

	assert.Equal(t, "(50:60)\n[10,20,30,40] [50,55,56,57] [60,70,80,90]\n", tree.Describe())
	assert.NoError(t, tree.Check())
}

func TestSplitWhenBothSiblingsFull(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, 10, 20, 30, 40, 50, 60, 70, 80)
	require.Equal(t, "(50)\n[10,20,30,40] [50,60,70,80]\n", tree.Describe())

	// No sibling can absorb the overflow; the right leaf splits and the
	// copied-up separator lands in the root.
	require.NoError(t, tree.Insert(90, 900))

	assert.Equal(t, "(50:70)\n[10,20,30,40] [50,60] [70,80,90]\n", tree.Describe())
	assert.NoError(t, tree.Check())
}

func TestMultiLevelGrowth(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 3, intRange(1, 60)...)

	assert.Equal(t, 60, tree.Len())
	assert.GreaterOrEqual(t, tree.Height(), 3)
	assert.Equal(t, intRange(1, 60), tree.Keys())
	assert.NoError(t, tree.Check())
}

// Deletion Engine Tests

func TestUnderflowBorrowsFromLeftSibling(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, 10, 20, 30, 40, 50, 25)
	require.NoError(t, tree.Delete(50))
	require.Equal(t, "(30)\n[10,20,25] [30,40]\n", tree.Describe())

	// The right leaf underflows; the left sibling is above minimum and
	// donates its last entry, refreshing the separator.
	require.NoError(t, tree.Delete(40))

	assert.Equal(t, "(25)\n[10,20] [25,30]\n", tree.Describe())
	assert.NoError(t, tree.Check())
}

func TestUnderflowMergesWithLeftSibling(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, 10, 20, 30, 40, 50, 25)
	require.NoError(t, tree.Delete(50))
	require.NoError(t, tree.Delete(40))
	require.Equal(t, "(25)\n[10,20] [25,30]\n", tree.Describe())

	// Left sibling sits at minimum, so borrowing is off the table and the
	// leaves merge; the root loses its only separator and collapses.
	require.NoError(t, tree.Delete(30))

	assert.True(t, tree.root.leaf)
	assert.Equal(t, 1, tree.Height())
	assert.Equal(t, "[10,20,25]\n", tree.Describe())
	assert.NoError(t, tree.Check())
}

func TestUnderflowBorrowsFromRightSibling(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, 10, 20, 30, 40, 50)
	require.Equal(t, "(30)\n[10,20] [30,40,50]\n", tree.Describe())

	// The leftmost leaf has no left sibling; its right sibling is above
	// minimum and donates its first entry.
	require.NoError(t, tree.Delete(10))

	assert.Equal(t, "(40)\n[20,30] [40,50]\n", tree.Describe())
	assert.NoError(t, tree.Check())
}

func TestSequentialDeleteFromLeft(t *testing.T) {
	t.Parallel()

	// Scenario: order 4, sequential build 1..10, then delete 1,2,3,4. The
	// leftmost leaf has no left sibling, so underflow resolves rightward,
	// borrowing until the right sibling sits at minimum and merging then.
	tree := seedTree(t, 4, intRange(1, 10)...)
	require.Equal(t, "(5:7)\n[1,2,3,4] [5,6] [7,8,9,10]\n", tree.Describe())

	for _, k := range []int{1, 2, 3, 4} {
		require.NoError(t, tree.Delete(k), "delete %d", k)
		require.NoError(t, tree.Check(), "after delete %d", k)
	}

	assert.Equal(t, intRange(5, 10), tree.Keys())
	assert.Equal(t, 6, tree.Len())
}

func TestDeleteEverythingCollapsesToEmptyRoot(t *testing.T) {
	t.Parallel()

	keys := intRange(1, 40)
	tree := seedTree(t, 4, keys...)

	for _, k := range keys {
		require.NoError(t, tree.Delete(k), "delete %d", k)
		require.NoError(t, tree.Check(), "after delete %d", k)
	}

	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 1, tree.Height())
	assert.True(t, tree.root.leaf)
	assert.Empty(t, tree.root.keys)
}

func TestDeleteCascadesThroughInternalLevels(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 3, intRange(1, 50)...)
	require.GreaterOrEqual(t, tree.Height(), 3)

	// Remove from the left edge so leaf merges propagate separator removal
	// into internal nodes until the tree shrinks.
	startHeight := tree.Height()
	for _, k := range intRange(1, 44) {
		require.NoError(t, tree.Delete(k), "delete %d", k)
		require.NoError(t, tree.Check(), "after delete %d", k)
	}

	assert.Less(t, tree.Height(), startHeight)
	assert.Equal(t, intRange(45, 50), tree.Keys())
}

// Property Tests

func TestInsertDeleteRoundTrip(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, 10, 20, 30, 40, 50, 60, 70)
	before := tree.Items()

	require.NoError(t, tree.Insert(35, 350))
	require.NoError(t, tree.Delete(35))

	// Same key set in the same order; node boundaries may differ.
	assert.Equal(t, before, tree.Items())
	assert.NoError(t, tree.Check())
}

func TestReadsAreIdempotent(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, intRange(1, 30)...)

	assert.Equal(t, tree.Describe(), tree.Describe())
	assert.Equal(t, tree.Items(), tree.Items())
	assert.NoError(t, tree.Check())
}

func TestHeightGrowthBound(t *testing.T) {
	t.Parallel()

	const n = 1000
	tree := seedTree(t, 4, intRange(1, n)...)

	// ceil(log_min(n)) + O(1), min occupancy 2 for order 4.
	bound := int(math.Ceil(math.Log2(n))) + 2
	assert.LessOrEqual(t, tree.Height(), bound)
	assert.NoError(t, tree.Check())
}

func TestRandomizedSoak(t *testing.T) {
	t.Parallel()

	for _, order := range []int{3, 4, 5, 8} {
		order := order
		t.Run(fmt.Sprintf("order=%d", order), func(t *testing.T) {
			t.Parallel()

			const n = 400
			rng := rand.New(rand.NewSource(int64(order)))

			tree, err := New[int, int](order)
			require.NoError(t, err)

			keys := rng.Perm(n)
			for i, k := range keys {
				require.NoError(t, tree.Insert(k, k), "insert %d", k)
				if i%37 == 0 {
					require.NoError(t, tree.Check(), "after %d inserts", i+1)
				}
			}
			require.NoError(t, tree.Check())
			require.Equal(t, n, tree.Len())
			assert.Equal(t, intRange(0, n-1), tree.Keys())

			for _, k := range keys {
				v, err := tree.Find(k)
				require.NoError(t, err, "find %d", k)
				require.Equal(t, k, v)
			}

			for i, k := range rng.Perm(n) {
				require.NoError(t, tree.Delete(k), "delete %d", k)
				if i%37 == 0 {
					require.NoError(t, tree.Check(), "after %d deletes", i+1)
				}
			}
			require.NoError(t, tree.Check())
			assert.Equal(t, 0, tree.Len())
			assert.True(t, tree.root.leaf)
		})
	}
}

func TestCheckDetectsCorruption(t *testing.T) {
	t.Parallel()

	tree := seedTree(t, 4, intRange(1, 10)...)
	require.NoError(t, tree.Check())

	// Reach in and break a leaf's ordering.
	leaf := tree.leftmostLeaf()
	leaf.keys[0], leaf.keys[1] = leaf.keys[1], leaf.keys[0]

	assert.ErrorIs(t, tree.Check(), ErrInvariantViolation)
}
