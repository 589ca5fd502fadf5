package pools

import (
	"sync"
)

// retainFactor caps how far past its initial size a slice may grow and still be pooled
const retainFactor = 64

// SlicePool is a pool of reusable slices of T
type SlicePool[T any] struct {
	pool sync.Pool
	size int
}

// NewSlicePool creates a SlicePool whose fresh slices have capacity size
func NewSlicePool[T any](size int) *SlicePool[T] {
	p := &SlicePool[T]{size: size}
	p.pool.New = func() interface{} {
		s := make([]T, 0, size)
		return &s
	}
	return p
}

// Get retrieves an empty slice from the pool
func (p *SlicePool[T]) Get() *[]T {
	s := p.pool.Get().(*[]T)
	*s = (*s)[:0]
	return s
}

// Put returns a slice to the pool. Slices that grew far beyond the pool size are
// left for the GC so one oversized request does not pin memory.
func (p *SlicePool[T]) Put(s *[]T) {
	if s == nil || cap(*s) > p.size*retainFactor {
		return
	}
	var zero T
	full := (*s)[:cap(*s)]
	for i := range full {
		full[i] = zero
	}
	*s = (*s)[:0]
	p.pool.Put(s)
}
