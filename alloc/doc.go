// Package alloc provides off-heap allocators for obfuscated pointees.
//
// Memory handed out here lives outside the Go heap, so the garbage collector
// neither scans it nor frees it. An owner may therefore forget the plaintext
// address entirely and keep only an encoded form of it. No allocator in this
// package stores the addresses it returns. Mmap keeps a keyed hash of each
// live address so Owns and Free can reject pointers it never mapped.
//
// # Allocators
//
//   - Mmap: one anonymous mapping per allocation, optionally excluded from
//     core dumps and locked in RAM
//   - Counting: wraps another allocator and counts allocations and frees
//   - Limited: wraps another allocator and enforces a byte budget
//
// Wrappers compose:
//
//	a := alloc.NewCounting(alloc.NewLimited(alloc.NewMmap(alloc.WithDontDump()), 1<<20))
//
// # Concurrency
//
// All allocators in this package are safe for concurrent use.
package alloc
