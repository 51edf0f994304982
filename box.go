package obfptr

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/hupe1980/obfptr/alloc"
)

// Box owns a single off-heap T and keeps its address in plaintext.
// It is the staging form of a value before FromBox seals it into a Pointer.
// A Box dropped without Free or FromBox leaks its memory.
type Box[T any] struct {
	_ noCopy

	ptr       *T
	layout    layout
	allocator alloc.Allocator
	state     state
}

// NewBox allocates value off-heap. Only WithAllocator is consulted.
func NewBox[T any](value T, opts ...Option) (*Box[T], error) {
	o := applyOptions(opts)

	raw, lay, err := allocRaw[T](o)
	if err != nil {
		return nil, err
	}
	*raw = value

	return &Box[T]{
		ptr:       raw,
		layout:    lay,
		allocator: o.allocator,
	}, nil
}

func (b *Box[T]) checkLive() error {
	if b == nil {
		return ErrInvalidPointer
	}
	switch b.state {
	case stateLive:
		return nil
	case stateMoved:
		return ErrMoved
	default:
		return ErrUseAfterDestroy
	}
}

// Get returns a copy of the boxed value.
func (b *Box[T]) Get() (T, error) {
	var zero T
	if err := b.checkLive(); err != nil {
		return zero, err
	}
	return *b.ptr, nil
}

// Set replaces the boxed value.
func (b *Box[T]) Set(v T) error {
	if err := b.checkLive(); err != nil {
		return err
	}
	*b.ptr = v
	return nil
}

// Ptr returns the plaintext pointer. It is invalid after Free or FromBox.
func (b *Box[T]) Ptr() (*T, error) {
	if err := b.checkLive(); err != nil {
		return nil, err
	}
	return b.ptr, nil
}

// Free wipes and releases the boxed value.
func (b *Box[T]) Free() error {
	if err := b.checkLive(); err != nil {
		return err
	}

	base := unsafe.Pointer(b.ptr)
	b.ptr = nil
	b.state = stateDestroyed

	wipe(base, b.layout.size)
	if err := b.allocator.Free(base, b.layout.size, b.layout.align); err != nil {
		return fmt.Errorf("obfptr: free %s: %w", b.layout.name, err)
	}
	return nil
}

// FromBox seals the contents of b into a Pointer. b is consumed: its
// plaintext pointer is dropped and every later call on it returns ErrMoved.
// The Pointer uses b's allocator; a WithAllocator option is ignored.
//
// If sealing fails, b keeps ownership and stays usable.
func FromBox[T any](b *Box[T], opts ...Option) (*Pointer[T], error) {
	if err := b.checkLive(); err != nil {
		return nil, err
	}

	p, err := Adopt(b.ptr, append(slices.Clip(opts), WithAllocator(b.allocator))...)
	if err != nil {
		return nil, err
	}

	b.ptr = nil
	b.state = stateMoved
	return p, nil
}
