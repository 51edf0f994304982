package alloc

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Stats tracks allocator usage.
//
//   - Allocs, Frees: successful calls
//   - Failures: calls that returned an error
//   - BytesLive: bytes allocated and not yet freed
//   - BytesTotal: cumulative bytes allocated
type Stats struct {
	Allocs     uint64
	Frees      uint64
	Failures   uint64
	BytesLive  uint64
	BytesTotal uint64
}

type atomicStats struct {
	Allocs     atomic.Uint64
	Frees      atomic.Uint64
	Failures   atomic.Uint64
	BytesLive  atomic.Uint64
	BytesTotal atomic.Uint64
}

// Counting wraps an allocator and counts what passes through it.
type Counting struct {
	next  Allocator
	stats atomicStats
}

// NewCounting wraps next. A nil next uses Default.
func NewCounting(next Allocator) *Counting {
	if next == nil {
		next = Default()
	}
	return &Counting{next: next}
}

// Alloc implements Allocator.
func (c *Counting) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	p, err := c.next.Alloc(size, align)
	if err != nil {
		c.stats.Failures.Add(1)
		return nil, err
	}

	c.stats.Allocs.Add(1)
	c.stats.BytesLive.Add(uint64(size))
	c.stats.BytesTotal.Add(uint64(size))
	return p, nil
}

// Free implements Allocator.
func (c *Counting) Free(p unsafe.Pointer, size, align uintptr) error {
	if err := c.next.Free(p, size, align); err != nil {
		c.stats.Failures.Add(1)
		return err
	}

	c.stats.Frees.Add(1)
	c.stats.BytesLive.Add(^(uint64(size) - 1))
	return nil
}

// Owns implements Owner by asking the wrapped allocator.
func (c *Counting) Owns(p unsafe.Pointer, size uintptr) bool {
	return Owns(c.next, p, size)
}

// Stats returns a snapshot of the counters.
func (c *Counting) Stats() Stats {
	return Stats{
		Allocs:     c.stats.Allocs.Load(),
		Frees:      c.stats.Frees.Load(),
		Failures:   c.stats.Failures.Load(),
		BytesLive:  c.stats.BytesLive.Load(),
		BytesTotal: c.stats.BytesTotal.Load(),
	}
}

// Live returns the number of allocations not yet freed.
func (c *Counting) Live() uint64 {
	s := c.Stats()
	return s.Allocs - s.Frees
}

// Balanced reports whether every allocation has been freed exactly once.
func (c *Counting) Balanced() bool {
	s := c.Stats()
	return s.Allocs == s.Frees && s.BytesLive == 0
}

func (c *Counting) String() string {
	s := c.Stats()
	return fmt.Sprintf(
		"Counting{allocs: %d, frees: %d, failures: %d, live: %d B, total: %.2f KB}",
		s.Allocs,
		s.Frees,
		s.Failures,
		s.BytesLive,
		float64(s.BytesTotal)/1024,
	)
}
