//go:build windows

package mmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMapAnon(size int) (unsafe.Pointer, error) {
	// VirtualAlloc with MEM_COMMIT is demand-paged like an anonymous mmap.
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}

	return unsafe.Pointer(addr), nil //nolint:govet // off-heap address
}

func osUnmap(base unsafe.Pointer, _ int) error {
	// MEM_RELEASE frees the entire reservation and requires size 0.
	return windows.VirtualFree(uintptr(base), 0, windows.MEM_RELEASE)
}

func osAdvise(data []byte, advice Advice) error {
	// No madvise equivalent. Core dump exclusion would need
	// WerRegisterExcludedMemoryBlock, which is not exposed by x/sys.
	_ = data
	_ = advice
	return nil
}

func osLock(data []byte) error {
	return windows.VirtualLock(uintptr(unsafe.Pointer(&data[0])), uintptr(len(data)))
}
