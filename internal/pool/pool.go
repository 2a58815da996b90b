// Package pool provides a typed wrapper around sync.Pool.
package pool

import "sync"

// Pool is a generic sync.Pool wrapper that spares callers the type
// assertions.
type Pool[T any] struct {
	pool sync.Pool
}

// New creates a Pool whose factory is called when the pool is empty.
func New[T any](factory func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() interface{} {
				return factory()
			},
		},
	}
}

// Get retrieves an item from the pool, creating one if necessary.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns an item to the pool.
func (p *Pool[T]) Put(x T) {
	p.pool.Put(x)
}
