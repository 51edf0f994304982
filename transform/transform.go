package transform

import (
	"fmt"
	"math/bits"
	"math/rand/v2"
)

// Method identifies one reversible transform.
type Method uint8

const (
	// KeyRotate mixes in the key with XORs and rotations, one of them by an
	// amount taken from the key's low four bits.
	KeyRotate Method = iota
	// FixedRotate mixes in the key with XORs and rotations by fixed amounts.
	FixedRotate
	// HalfFold XORs with the key and with the key's halves swapped, then
	// rotates by a key-derived amount and XORs a shifted key.
	HalfFold

	numMethods
)

// Methods returns the closed set of supported methods.
func Methods() []Method {
	return []Method{KeyRotate, FixedRotate, HalfFold}
}

// Select picks a method uniformly at random.
func Select(r *rand.Rand) Method {
	return Method(r.IntN(int(numMethods))) //nolint:gosec // bounded by numMethods
}

// Valid reports whether m is a member of the closed set.
func (m Method) Valid() bool {
	return m < numMethods
}

func (m Method) String() string {
	switch m {
	case KeyRotate:
		return "KeyRotate"
	case FixedRotate:
		return "FixedRotate"
	case HalfFold:
		return "HalfFold"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Encode obfuscates data under key.
// It panics if m is not a valid method.
func (m Method) Encode(data, key uint64) uint64 {
	switch m {
	case KeyRotate:
		return encodeKeyRotate(data, key)
	case FixedRotate:
		return encodeFixedRotate(data, key)
	case HalfFold:
		return encodeHalfFold(data, key)
	default:
		panic(fmt.Sprintf("transform: invalid method %v", m))
	}
}

// Decode reverses Encode for the same key.
// It panics if m is not a valid method.
func (m Method) Decode(data, key uint64) uint64 {
	switch m {
	case KeyRotate:
		return decodeKeyRotate(data, key)
	case FixedRotate:
		return decodeFixedRotate(data, key)
	case HalfFold:
		return decodeHalfFold(data, key)
	default:
		panic(fmt.Sprintf("transform: invalid method %v", m))
	}
}

// Encode obfuscates data under key using m.
func Encode(m Method, data, key uint64) uint64 {
	return m.Encode(data, key)
}

// Decode reverses Encode.
func Decode(m Method, data, key uint64) uint64 {
	return m.Decode(data, key)
}

func encodeKeyRotate(data, key uint64) uint64 {
	data ^= key
	data = bits.RotateLeft64(data, int(key&0xF))
	data ^= key << 3
	data = bits.RotateLeft64(data, 7)
	data ^= bits.RotateLeft64(key, 11)
	return data
}

func decodeKeyRotate(data, key uint64) uint64 {
	data ^= bits.RotateLeft64(key, 11)
	data = bits.RotateLeft64(data, -7)
	data ^= key << 3
	data = bits.RotateLeft64(data, -int(key&0xF))
	data ^= key
	return data
}

func encodeFixedRotate(data, key uint64) uint64 {
	data ^= key
	data = bits.RotateLeft64(data, 13)
	data ^= bits.RotateLeft64(key, 5)
	data = bits.RotateLeft64(data, 9)
	data ^= bits.RotateLeft64(key, 17)
	return data
}

func decodeFixedRotate(data, key uint64) uint64 {
	data ^= bits.RotateLeft64(key, 17)
	data = bits.RotateLeft64(data, -9)
	data ^= bits.RotateLeft64(key, 5)
	data = bits.RotateLeft64(data, -13)
	data ^= key
	return data
}

func encodeHalfFold(data, key uint64) uint64 {
	data ^= key
	data ^= bits.RotateLeft64(key, 32) // halves swapped
	data = bits.RotateLeft64(data, int(key%31))
	data ^= key ^ (key >> 11)
	return data
}

func decodeHalfFold(data, key uint64) uint64 {
	data ^= key ^ (key >> 11)
	data = bits.RotateLeft64(data, -int(key%31))
	data ^= bits.RotateLeft64(key, 32)
	data ^= key
	return data
}
