package generic

import "sync"

// Pool is a typed sync.Pool. When built with a reset func, every value is
// reset as it goes back in, so Get never hands out stale contents.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

func NewPool[T any](generate func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{
		pool:  sync.Pool{New: func() any { return generate() }},
		reset: reset,
	}
}

// NewHotPool is NewPool with warm values already parked for the first Gets.
func NewHotPool[T any](generate func() T, reset func(T), warm int) *Pool[T] {
	p := NewPool(generate, reset)
	for range warm {
		p.pool.Put(generate())
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
