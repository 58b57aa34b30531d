package bptree

const (
	// DefaultOrder is the tree order used by callers that don't care.
	DefaultOrder = 4

	// minOrder is the smallest order for which the rebalancing cascade is
	// well defined: below 3 a split cannot produce two non-empty halves.
	minOrder = 3

	// DefaultFindCacheSize bounds the point-lookup memoization cache.
	DefaultFindCacheSize = 256
)

// treeOptions configures tree behavior.
type treeOptions struct {
	logger        Logger
	findCacheSize int     // 0 disables the Find cache
	fillFactor    float64 // leaf packing density used by BulkBuild
}

func defaultTreeOptions() treeOptions {
	return treeOptions{
		logger:        DiscardLogger{},
		findCacheSize: DefaultFindCacheSize,
		fillFactor:    1.0,
	}
}

// Option configures a tree using the functional options pattern.
type Option func(*treeOptions)

// WithLogger routes structural events (height changes, invariant failures)
// to the given logger instead of discarding them.
func WithLogger(l Logger) Option {
	return func(opts *treeOptions) {
		if l != nil {
			opts.logger = l
		}
	}
}

// WithFindCacheSize sets the capacity of the lookup cache used by Find.
// A size of 0 disables caching entirely.
func WithFindCacheSize(size int) Option {
	return func(opts *treeOptions) {
		opts.findCacheSize = size
	}
}

// WithBulkFillFactor sets the leaf packing density used by BulkBuild,
// clamped to [0.5, 1.0]. Sequential insertion ignores it.
func WithBulkFillFactor(ff float64) Option {
	return func(opts *treeOptions) {
		opts.fillFactor = ff
	}
}

func (o *treeOptions) clampedFillFactor() float64 {
	if o.fillFactor < 0.5 {
		return 0.5
	}
	if o.fillFactor > 1.0 {
		return 1.0
	}
	return o.fillFactor
}
