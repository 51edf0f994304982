package mmap

import (
	"os"
	"unsafe"
)

// Anon maps size bytes of zeroed, read-write anonymous memory and returns
// the base address. The mapping is rounded up to whole pages by the kernel.
//
// Nothing in this package records the returned address; the caller is its
// only holder.
func Anon(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return osMapAnon(size)
}

// Release unmaps a region previously returned by Anon.
// size must be the size passed to Anon.
func Release(base unsafe.Pointer, size int) error {
	if base == nil {
		return nil
	}
	if size <= 0 {
		return ErrInvalidSize
	}
	return osUnmap(base, size)
}

// Advise provides hints to the kernel about the region.
func Advise(base unsafe.Pointer, size int, advice Advice) error {
	if base == nil || size <= 0 {
		return nil
	}
	return osAdvise(region(base, size), advice)
}

// Lock pins the region in RAM so it is never written to swap.
// Unmapping the region drops the lock.
func Lock(base unsafe.Pointer, size int) error {
	if base == nil || size <= 0 {
		return nil
	}
	return osLock(region(base, size))
}

// region views a mapping as bytes for the duration of a single call.
func region(base unsafe.Pointer, size int) []byte {
	return unsafe.Slice((*byte)(base), size)
}

// PageSize returns the system page size.
func PageSize() int {
	return os.Getpagesize()
}
