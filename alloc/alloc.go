package alloc

import (
	"errors"
	"fmt"
	"hash/maphash"
	"sync"
	"unsafe"

	"github.com/hupe1980/obfptr/internal/conv"
	"github.com/hupe1980/obfptr/internal/mmap"
)

var (
	// ErrInvalidSize is returned for zero-size allocations.
	ErrInvalidSize = errors.New("alloc: invalid size")
	// ErrUnsupportedAlignment is returned when the alignment is not a power of
	// two or exceeds what the allocator can guarantee.
	ErrUnsupportedAlignment = errors.New("alloc: unsupported alignment")
	// ErrInvalidPointer is returned when freeing a nil pointer or one the
	// allocator did not hand out.
	ErrInvalidPointer = errors.New("alloc: invalid pointer")
)

// Allocator hands out and takes back off-heap memory.
//
// Free must be called with the same size and alignment passed to Alloc.
type Allocator interface {
	Alloc(size, align uintptr) (unsafe.Pointer, error)
	Free(p unsafe.Pointer, size, align uintptr) error
}

// Owner is implemented by allocators that can tell whether they handed out a
// pointer and it is still live.
type Owner interface {
	Owns(p unsafe.Pointer, size uintptr) bool
}

// Owns reports whether a handed out p with the given size. Allocators that do
// not implement Owner are trusted for any non-nil p.
func Owns(a Allocator, p unsafe.Pointer, size uintptr) bool {
	if p == nil {
		return false
	}
	if o, ok := a.(Owner); ok {
		return o.Owns(p, size)
	}
	return true
}

var defaultAllocator Allocator = NewMmap(WithDontDump())

// Default returns the shared allocator used when none is configured.
// It maps memory with core dump exclusion.
func Default() Allocator {
	return defaultAllocator
}

// Mmap allocates each request in its own anonymous mapping.
// Requests are rounded up to whole pages, so it suits few, long-lived objects.
//
// Live allocations are tracked by a keyed hash of their address, so Mmap can
// refuse to free memory it never mapped without holding any address itself.
type Mmap struct {
	pageSize uintptr
	dontDump bool
	lock     bool

	seed maphash.Seed
	mu   sync.Mutex
	live map[uint64]uintptr // address tag -> size
}

// MmapOption configures an Mmap allocator.
type MmapOption func(*Mmap)

// WithDontDump excludes allocated pages from core dumps (Linux only).
func WithDontDump() MmapOption {
	return func(m *Mmap) {
		m.dontDump = true
	}
}

// WithLock pins allocated pages in RAM so they never reach swap.
// Subject to RLIMIT_MEMLOCK.
func WithLock() MmapOption {
	return func(m *Mmap) {
		m.lock = true
	}
}

// NewMmap creates a new Mmap allocator.
func NewMmap(opts ...MmapOption) *Mmap {
	m := &Mmap{
		pageSize: uintptr(mmap.PageSize()), //nolint:gosec // page size is positive
		seed:     maphash.MakeSeed(),
		live:     make(map[uint64]uintptr),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Alloc implements Allocator. The returned memory is zeroed.
func (m *Mmap) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, ErrInvalidSize
	}
	if err := m.checkAlign(align); err != nil {
		return nil, err
	}

	n, err := conv.UintptrToInt(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	base, err := mmap.Anon(n)
	if err != nil {
		return nil, fmt.Errorf("alloc: failed to map anonymous memory: %w", err)
	}

	if m.dontDump {
		if err := mmap.Advise(base, n, mmap.AdviceDontDump); err != nil {
			_ = mmap.Release(base, n)
			return nil, fmt.Errorf("alloc: failed to exclude from core dumps: %w", err)
		}
	}

	if m.lock {
		if err := mmap.Lock(base, n); err != nil {
			_ = mmap.Release(base, n)
			return nil, fmt.Errorf("alloc: failed to lock pages: %w", err)
		}
	}

	m.mu.Lock()
	m.live[m.tag(base)] = size
	m.mu.Unlock()

	return base, nil
}

// Free implements Allocator.
func (m *Mmap) Free(p unsafe.Pointer, size, align uintptr) error {
	if p == nil {
		return ErrInvalidPointer
	}
	if size == 0 {
		return ErrInvalidSize
	}
	if err := m.checkAlign(align); err != nil {
		return err
	}

	n, err := conv.UintptrToInt(size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	tag := m.tag(p)

	m.mu.Lock()
	defer m.mu.Unlock()

	if got, ok := m.live[tag]; !ok || got != size {
		return fmt.Errorf("%w: not a live mapping of %d bytes", ErrInvalidPointer, size)
	}

	// munmap drops any mlock on the pages as well.
	if err := mmap.Release(p, n); err != nil {
		return fmt.Errorf("alloc: failed to unmap: %w", err)
	}
	delete(m.live, tag)
	return nil
}

// Owns implements Owner.
func (m *Mmap) Owns(p unsafe.Pointer, size uintptr) bool {
	if p == nil || uintptr(p)%m.pageSize != 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	got, ok := m.live[m.tag(p)]
	return ok && got == size
}

// tag hashes an address under the allocator's random seed.
func (m *Mmap) tag(p unsafe.Pointer) uint64 {
	return maphash.Comparable(m.seed, uintptr(p))
}

func (m *Mmap) checkAlign(align uintptr) error {
	if align == 0 || align&(align-1) != 0 || align > m.pageSize {
		return fmt.Errorf("%w: %d", ErrUnsupportedAlignment, align)
	}
	return nil
}
