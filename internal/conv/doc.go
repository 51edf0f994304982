// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between pointer-sized and fixed-width integer types.
//
// Use cases:
//   - Turning a decoded 64-bit address back into a uintptr on any platform
//   - Converting allocation sizes between uintptr, int and int64
//
// For conversions that are provably safe by domain constraints, use direct
// type casts instead to avoid overhead.
package conv
