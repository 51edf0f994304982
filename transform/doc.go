// Package transform provides reversible bit-mixing of 64-bit values.
//
// A Method is one of a small, closed set of algorithms. Each is a fixed
// sequence of XOR-with-key and rotate-by-key-derived-amount steps, so for any
// fixed key it is a bijection on uint64 and Decode undoes Encode exactly:
//
//	m := transform.HalfFold
//	enc := m.Encode(addr, key)
//	addr == m.Decode(enc, key) // always true
//
// # Supported Methods
//
//   - KeyRotate: rotation amount taken from the low key bits
//   - FixedRotate: fixed rotations, key mixed in at three rotations
//   - HalfFold: key mixed with its swapped halves, rotation by key mod 31
//
// # Strength
//
// This is obfuscation, not encryption. Anyone holding the key and the method
// recovers the value. With key 0, HalfFold is the identity and the other two
// reduce to plain rotations.
package transform
