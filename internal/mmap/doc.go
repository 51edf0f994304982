// Package mmap provides anonymous memory mappings outside the Go heap.
//
// # Overview
//
// Regions returned by Anon are never scanned or moved by the garbage
// collector. A value placed in such a region stays valid until Release is
// called, no matter whether any Go pointer to it exists. This is what lets a
// caller keep only an encoded form of the address.
//
// # Usage
//
//	base, err := mmap.Anon(size)
//	if err != nil { ... }
//	_ = mmap.Advise(base, size, mmap.AdviceDontDump)
//
//	// ... later, with nothing but the base address and the size:
//	err = mmap.Release(base, size)
//
// Regions are passed around as a base address and a size. The package keeps
// no table of live mappings, unlike unix.Mmap.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), munmap(2), madvise(2), mlock(2)
//   - Windows: VirtualAlloc/VirtualFree/VirtualLock (advice is a no-op)
//
// # Contents
//
// Memory in a region is invisible to the garbage collector. Storing Go
// pointers in it leaves their targets unreferenced as far as the collector is
// concerned. Only pointer-free data belongs here.
package mmap
