//go:build linux || darwin || freebsd || openbsd || netbsd

package mmap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// unix.Munmap only unmaps regions it has a record of, so it rejects every
// region Anon returns.
func TestAnon_LeavesNoRecord(t *testing.T) {
	size := PageSize()
	base, err := Anon(size)
	require.NoError(t, err)

	err = unix.Munmap(unsafe.Slice((*byte)(base), size))
	assert.ErrorIs(t, err, unix.EINVAL)

	// Still mapped and writable.
	*(*uint64)(base) = 0xFEDCBA0987654321
	assert.Equal(t, uint64(0xFEDCBA0987654321), *(*uint64)(base))

	require.NoError(t, Release(base, size))
}
