package generic

// Owned holds exclusive ownership of a value that must be released with a
// specific deallocation routine. Release is deterministic and idempotent; Get
// after Release panics, since using a released resource is a programming error.
type Owned[T any] struct {
	value    T
	free     func(T)
	released bool
}

// NewOwned takes ownership of value. free is called exactly once, on Release.
func NewOwned[T any](value T, free func(T)) *Owned[T] {
	return &Owned[T]{value: value, free: free}
}

func (o *Owned[T]) Get() T {
	if o.released {
		panic("generic: use of released resource")
	}
	return o.value
}

func (o *Owned[T]) Released() bool { return o.released }

// Release frees the value. Subsequent calls do nothing.
func (o *Owned[T]) Release() {
	if o == nil || o.released {
		return
	}
	o.released = true
	if o.free != nil {
		o.free(o.value)
	}
	var zero T
	o.value = zero
}
