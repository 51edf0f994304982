//go:build !(linux || darwin || freebsd || openbsd || netbsd || windows)

package mmap

import "unsafe"

func osMapAnon(int) (unsafe.Pointer, error) { return nil, ErrUnsupported }
func osUnmap(unsafe.Pointer, int) error      { return ErrUnsupported }
func osAdvise([]byte, Advice) error          { return nil }
func osLock([]byte) error                    { return ErrUnsupported }
