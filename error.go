package bptree

import "errors"

var (
	ErrInvalidOrder = errors.New("tree order must be at least 3")
	ErrDuplicateKey = errors.New("key already exists")
	ErrKeyNotFound  = errors.New("key not found")

	// ErrInvariantViolation signals an engine bug: an operation left a node
	// outside its occupancy bounds. Never returned in correct operation.
	ErrInvariantViolation = errors.New("node occupancy invariant violated")
)
