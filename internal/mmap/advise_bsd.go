//go:build darwin || freebsd || openbsd || netbsd

package mmap

// Core dump exclusion is Linux-only here.
func dontDumpAdvice() (int, bool) {
	return 0, false
}
