package pool

import "sync"

// SlicePool pools scratch slices of one element type.
//
// Slices handed out by Get are zeroed, so callers can rely on zero values as
// padding when assembling partial chunks.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty SlicePool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
	}
}

// Get returns a zeroed slice of length size and the cleanup function that
// returns it to the pool. The slice must not be used after cleanup.
//
// Example:
//
//	vals, cleanup := pool.GetFloat64Slice(chunkLen)
//	defer cleanup()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)

	slice := *ptr
	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
		clear(slice)
	}
	*ptr = slice

	return slice, func() { p.pool.Put(ptr) }
}

var (
	int64SlicePool   = NewSlicePool[int64]()
	float64SlicePool = NewSlicePool[float64]()
	stringSlicePool  = NewSlicePool[string]()
)

// GetInt64Slice retrieves a zeroed int64 slice of length size.
func GetInt64Slice(size int) ([]int64, func()) {
	return int64SlicePool.Get(size)
}

// GetFloat64Slice retrieves a zeroed float64 slice of length size.
func GetFloat64Slice(size int) ([]float64, func()) {
	return float64SlicePool.Get(size)
}

// GetStringSlice retrieves a zeroed string slice of length size.
func GetStringSlice(size int) ([]string, func()) {
	return stringSlicePool.Get(size)
}
