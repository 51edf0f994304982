// Package keysource produces the 64-bit keys that parameterize transforms.
//
// The default source is the wall clock: nanoseconds since the Unix epoch,
// truncated to 64 bits. It never blocks and is not cryptographically secure.
// That matches the obfuscation goal. Callers with a stronger threat model can
// plug in Crypto, and tests can plug in Static for determinism.
package keysource
