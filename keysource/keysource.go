package keysource

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	mathrand "math/rand/v2"
	"time"
)

// ErrClockUnavailable is returned when the system clock cannot be read.
var ErrClockUnavailable = errors.New("keysource: system clock unavailable")

// Source produces keys.
type Source interface {
	Key() (uint64, error)
}

// Default is the source used when none is configured.
var Default Source = Clock{}

// Generate returns a key from Default.
func Generate() (uint64, error) {
	return Default.Key()
}

// MustGenerate is like Generate but panics if the clock is unavailable.
// A process without a clock cannot continue.
func MustGenerate() uint64 {
	k, err := Generate()
	if err != nil {
		panic(err)
	}
	return k
}

// Clock derives keys from wall-clock time.
type Clock struct {
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Key implements Source.
func (c Clock) Key() (uint64, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	t := now()
	if t.IsZero() || t.Before(time.Unix(0, 0)) {
		return 0, ErrClockUnavailable
	}

	// UnixNano saturates outside 1678..2262; the truncation to 64 bits is intended.
	return uint64(t.UnixNano()), nil //nolint:gosec // non-negative after the epoch check
}

// Static always returns the same key.
type Static uint64

// Key implements Source.
func (s Static) Key() (uint64, error) {
	return uint64(s), nil
}

// Func adapts a function to Source.
type Func func() (uint64, error)

// Key implements Source.
func (f Func) Key() (uint64, error) {
	return f()
}

// Crypto reads keys from crypto/rand.
type Crypto struct{}

// Key implements Source.
func (Crypto) Key() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("keysource: crypto/rand failed: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// NewRand returns a generator seeded from key, so the clock stays the only
// entropy behind both the key and the choice of method.
func NewRand(key uint64) *mathrand.Rand {
	return mathrand.New(mathrand.NewPCG(key, bits.ReverseBytes64(key)))
}
