package obfptr

import (
	"fmt"
	"reflect"
	"unsafe"
)

// layout is the static shape of a pointee type.
type layout struct {
	size  uintptr
	align uintptr
	name  string
}

func layoutOf[T any]() (layout, error) {
	var zero T

	typ := reflect.TypeOf((*T)(nil)).Elem()
	if reason := pointerReason(typ); reason != "" {
		return layout{}, &UnsupportedTypeError{Type: typ, Reason: reason}
	}

	// Zero-size types still get a unique address.
	size := unsafe.Sizeof(zero)
	if size == 0 {
		size = 1
	}

	return layout{
		size:  size,
		align: unsafe.Alignof(zero),
		name:  typ.String(),
	}, nil
}

// pointerReason returns why t may hold Go pointers, or "" if it cannot.
func pointerReason(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return ""
	case reflect.Array:
		if t.Len() == 0 {
			return ""
		}
		if r := pointerReason(t.Elem()); r != "" {
			return fmt.Sprintf("array element: %s", r)
		}
		return ""
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if r := pointerReason(f.Type); r != "" {
				return fmt.Sprintf("field %s: %s", f.Name, r)
			}
		}
		return ""
	default:
		return fmt.Sprintf("%s values hold Go pointers", t.Kind())
	}
}

// wipe zeroes size bytes at base.
func wipe(base unsafe.Pointer, size uintptr) {
	clear(unsafe.Slice((*byte)(base), size))
}

// Releaser is implemented by pointee types that need to run code before
// their memory is freed, the way a destructor would.
type Releaser interface {
	Release()
}

// releaseHook returns a function calling Release on a *T at the given
// address, or nil if *T does not implement Releaser.
func releaseHook[T any]() func(unsafe.Pointer) {
	if _, ok := any((*T)(nil)).(Releaser); !ok {
		return nil
	}
	return func(base unsafe.Pointer) {
		any((*T)(base)).(Releaser).Release()
	}
}
