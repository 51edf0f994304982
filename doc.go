// Package obfptr provides an owning pointer whose address is never stored in
// plaintext.
//
// A Pointer keeps its pointee in off-heap memory and remembers only an
// encoded form of the address, produced by a reversible transform under a
// per-pointer key. Every access decodes the address for the duration of the
// call. This resists casual memory scanning of a live process. It is
// obfuscation, not encryption: anyone who can run code in the process or
// attach a debugger can recover the value.
//
// # Quick Start
//
//	type Player struct {
//	    Health uint32
//	    X, Y   float64
//	}
//
//	p, err := obfptr.New(Player{Health: 100})
//	if err != nil { ... }
//	defer p.Close()
//
//	v, _ := p.Get()          // copy of the pointee
//	_ = p.Update(func(pl *Player) {
//	    pl.Health -= 10      // exclusive access
//	})
//
// # Pointee Types
//
// The pointee lives outside the Go heap, where the garbage collector cannot
// see it. T must therefore be pointer-free: numbers, bools, arrays and
// structs of those. Strings, slices, maps, pointers, channels, funcs and
// interfaces are rejected with an *UnsupportedTypeError.
//
// # Lifecycle
//
// A Pointer is Live from construction until Destroy (or Close), then
// Destroyed for good. Destroy calls Release on the pointee if *T implements
// Releaser, wipes the memory and frees it. A Pointer dropped without
// Destroy is reclaimed by a runtime cleanup as a last resort and reported as
// a leak; see WithoutLeakCleanup.
//
// Ownership moves and is never shared: Move hands it to a new handle, and
// FromBox consumes a Box.
//
// # Borrowing
//
// View grants shared access and Update grants exclusive access for the
// duration of a callback. Overlapping an Update with any other access fails
// with ErrBorrowed. The pointer passed to a callback must not escape it.
//
// # Randomness
//
// Keys come from a keysource.Source (the wall clock by default). The
// transform method is chosen uniformly from a generator seeded by the key,
// unless WithRand or WithMethod is given. Tests can make everything
// deterministic with keysource.Static.
//
// # Concurrency
//
// A Pointer is not safe for concurrent use.
package obfptr
