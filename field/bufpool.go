package field

import (
	"errors"
	"fmt"
)

// bufPool is a reusable pool of same-typed slices, adapted from the
// teacher's gleval.VecPool/bufPool: Acquire returns a free buffer of
// the requested length (allocating one if none is free),
// Release marks it free again. Used by DDF to avoid reallocating a
// fresh tile-sized sample buffer on every Tile() view.
type bufPool[T any] struct {
	ins      [][]T
	acquired []bool
}

var (
	errBufpoolReleaseUnacquired  = errors.New("field: release of unacquired buffer")
	errBufpoolReleaseNonexistent = errors.New("field: release of buffer not owned by this pool")
)

// Acquire returns a buffer of exactly length, reusing a free
// previously-allocated buffer of sufficient capacity if one exists.
func (bp *bufPool[T]) Acquire(length int) []T {
	for i, locked := range bp.acquired {
		if !locked && cap(bp.ins[i]) >= length {
			bp.acquired[i] = true
			return bp.ins[i][:length]
		}
	}
	newSlice := make([]T, length)
	bp.ins = append(bp.ins, newSlice)
	bp.acquired = append(bp.acquired, true)
	return newSlice
}

// Release returns buf, previously obtained from Acquire, to the pool.
func (bp *bufPool[T]) Release(buf []T) error {
	if len(buf) == 0 {
		return nil
	}
	for i, instance := range bp.ins {
		if len(instance) > 0 && &instance[0] == &buf[0] {
			if !bp.acquired[i] {
				return errBufpoolReleaseUnacquired
			}
			bp.acquired[i] = false
			return nil
		}
	}
	return errBufpoolReleaseNonexistent
}

// assertAllReleased reports an error if any buffer is still checked out.
func (bp *bufPool[T]) assertAllReleased() error {
	for _, locked := range bp.acquired {
		if locked {
			return fmt.Errorf("field: locked %T buffer found in bufPool.assertAllReleased, memory leak?", *new(T))
		}
	}
	return nil
}
