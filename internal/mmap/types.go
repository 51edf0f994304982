package mmap

import "errors"

// Advice provides hints to the kernel about how a region will be treated.
type Advice int

const (
	// AdviceNormal is the default behavior (no specific advice).
	AdviceNormal Advice = iota
	// AdviceRandom expects the region to be accessed randomly.
	AdviceRandom
	// AdviceDontDump excludes the region from core dumps where supported.
	AdviceDontDump
)

var (
	// ErrInvalidSize is returned when the requested size is zero or negative.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrUnsupported is returned on platforms without anonymous mappings.
	ErrUnsupported = errors.New("mmap: unsupported platform")
)
