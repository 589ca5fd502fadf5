package pools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlicePool_GetReturnsEmptySlice(t *testing.T) {
	pool := NewSlicePool[float64](8)

	s := pool.Get()
	assert.Empty(t, *s)
	assert.GreaterOrEqual(t, cap(*s), 8)

	*s = append(*s, 1, 2, 3)
	pool.Put(s)

	again := pool.Get()
	assert.Empty(t, *again)
}

func TestSlicePool_PutIgnoresNilAndOversized(t *testing.T) {
	pool := NewSlicePool[int](1)

	assert.NotPanics(t, func() { pool.Put(nil) })

	big := make([]int, 0, 1000)
	assert.NotPanics(t, func() { pool.Put(&big) })
}
