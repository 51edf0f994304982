//go:build linux || darwin || freebsd || openbsd || netbsd

package mmap

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// The pointer variants of mmap and munmap bypass the bookkeeping that
// unix.Mmap keeps for every live mapping.

func osMapAnon(size int) (unsafe.Pointer, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_ANON | unix.MAP_PRIVATE

	return unix.MmapPtr(-1, 0, nil, uintptr(size), prot, flags)
}

func osUnmap(base unsafe.Pointer, size int) error {
	return unix.MunmapPtr(base, uintptr(size))
}

func osAdvise(data []byte, advice Advice) error {
	var flag int
	switch advice {
	case AdviceRandom:
		flag = unix.MADV_RANDOM
	case AdviceDontDump:
		f, ok := dontDumpAdvice()
		if !ok {
			return nil
		}
		flag = f
	default:
		flag = unix.MADV_NORMAL
	}

	// madvise requires page-aligned addresses. Regions from Anon always are;
	// anything else gets EINVAL, which is fine for an advisory call.
	err := unix.Madvise(data, flag)
	if err == unix.EINVAL {
		return nil
	}
	return err
}

func osLock(data []byte) error {
	return unix.Mlock(data)
}
