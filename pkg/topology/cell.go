package topology

import "sync"

// cell is shared, lockable geometry. The lock is held for a single read or
// write, never across an algorithm.
type cell[T any] struct {
	mu  sync.RWMutex
	val T
}

func newCell[T any](v T) *cell[T] {
	return &cell[T]{val: v}
}

func (c *cell[T]) get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

func (c *cell[T]) set(v T) {
	c.mu.Lock()
	c.val = v
	c.mu.Unlock()
}

// Curve is the contract of edge geometry: Invert reverses the direction in
// place, Clone returns an independent copy.
type Curve[C any] interface {
	Clone() C
	Invert()
}
