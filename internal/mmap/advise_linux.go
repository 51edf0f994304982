//go:build linux

package mmap

import "golang.org/x/sys/unix"

func dontDumpAdvice() (int, bool) {
	return unix.MADV_DONTDUMP, true
}
