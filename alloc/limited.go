package alloc

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/obfptr/internal/conv"
)

// ErrMemoryLimitExceeded is returned when an allocation would exceed the budget.
var ErrMemoryLimitExceeded = errors.New("alloc: memory limit exceeded")

// Limited wraps an allocator with a hard byte budget.
type Limited struct {
	next  Allocator
	limit int64
	sem   *semaphore.Weighted // nil if unlimited
	used  atomic.Int64
}

// NewLimited wraps next with a budget of limitBytes.
// If limitBytes <= 0, no limit is enforced (only tracking).
// A nil next uses Default.
func NewLimited(next Allocator, limitBytes int64) *Limited {
	if next == nil {
		next = Default()
	}

	l := &Limited{
		next:  next,
		limit: limitBytes,
	}

	if limitBytes > 0 {
		l.sem = semaphore.NewWeighted(limitBytes)
	}

	return l
}

// Alloc implements Allocator.
// Non-blocking: returns ErrMemoryLimitExceeded instead of waiting.
func (l *Limited) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	weight, err := conv.UintptrToInt64(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	if l.sem != nil && weight > 0 {
		if !l.sem.TryAcquire(weight) {
			return nil, fmt.Errorf("%w: requested %d bytes, %d of %d in use",
				ErrMemoryLimitExceeded, weight, l.used.Load(), l.limit)
		}
	}

	p, err := l.next.Alloc(size, align)
	if err != nil {
		l.release(weight)
		return nil, err
	}

	l.used.Add(weight)
	return p, nil
}

// Free implements Allocator.
func (l *Limited) Free(p unsafe.Pointer, size, align uintptr) error {
	weight, err := conv.UintptrToInt64(size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	if err := l.next.Free(p, size, align); err != nil {
		return err
	}

	l.used.Add(-weight)
	l.release(weight)
	return nil
}

// Owns implements Owner by asking the wrapped allocator.
func (l *Limited) Owns(p unsafe.Pointer, size uintptr) bool {
	return Owns(l.next, p, size)
}

func (l *Limited) release(weight int64) {
	if l.sem != nil && weight > 0 {
		l.sem.Release(weight)
	}
}

// Usage returns the bytes currently allocated through l.
func (l *Limited) Usage() int64 {
	return l.used.Load()
}

// Limit returns the configured budget in bytes (0 if unlimited).
func (l *Limited) Limit() int64 {
	if l.limit < 0 {
		return 0
	}
	return l.limit
}
