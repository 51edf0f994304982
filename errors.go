package obfptr

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/hupe1980/obfptr/keysource"
)

var (
	// ErrInvalidPointer is returned when a nil or misaligned pointer is adopted.
	ErrInvalidPointer = errors.New("obfptr: invalid pointer")
	// ErrUseAfterDestroy is returned by any operation on a destroyed pointer.
	ErrUseAfterDestroy = errors.New("obfptr: use after destroy")
	// ErrMoved is returned by any operation on a handle whose ownership moved.
	// It matches ErrUseAfterDestroy under errors.Is.
	ErrMoved = fmt.Errorf("%w: ownership moved", ErrUseAfterDestroy)
	// ErrBorrowed is returned when an access would violate the borrow rules:
	// one mutable borrow, or any number of shared borrows, never both.
	ErrBorrowed = errors.New("obfptr: already borrowed")
	// ErrInvalidMethod is returned when WithMethod names an unknown method.
	ErrInvalidMethod = errors.New("obfptr: invalid transform method")
	// ErrClockUnavailable is returned when the key source cannot read the clock.
	ErrClockUnavailable = keysource.ErrClockUnavailable
)

// UnsupportedTypeError indicates a pointee type that cannot live off-heap.
//
// Off-heap memory is invisible to the garbage collector, so any Go pointer
// stored there (including the ones inside strings, slices, maps and
// interfaces) would dangle.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("obfptr: unsupported pointee type %v: %s", e.Type, e.Reason)
}
