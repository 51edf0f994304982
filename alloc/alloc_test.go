package alloc

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingAllocator returns err from every call.
type failingAllocator struct {
	err error
}

func (f failingAllocator) Alloc(uintptr, uintptr) (unsafe.Pointer, error) { return nil, f.err }
func (f failingAllocator) Free(unsafe.Pointer, uintptr, uintptr) error    { return f.err }

func TestMmap_AllocFree(t *testing.T) {
	sizes := []uintptr{1, 8, 63, 64, 100, 4096, 10000}

	for _, opts := range [][]MmapOption{nil, {WithDontDump()}} {
		m := NewMmap(opts...)
		for _, size := range sizes {
			p, err := m.Alloc(size, 8)
			require.NoError(t, err, "size %d", size)
			require.NotNil(t, p)

			assert.Zero(t, uintptr(p)%8, "size %d not aligned", size)

			buf := unsafe.Slice((*byte)(p), size)
			for i := range buf {
				require.Zero(t, buf[i], "memory not zeroed at %d", i)
			}
			buf[0] = 0xAB
			buf[size-1] = 0xCD

			require.NoError(t, m.Free(p, size, 8))
		}
	}
}

func TestMmap_TypedValue(t *testing.T) {
	type player struct {
		Health uint32
		Pos    [3]float64
	}

	m := NewMmap()
	size, align := unsafe.Sizeof(player{}), unsafe.Alignof(player{})

	p, err := m.Alloc(size, align)
	require.NoError(t, err)

	v := (*player)(p)
	v.Health = 100
	v.Pos = [3]float64{1, 2, 3}
	assert.Equal(t, uint32(100), (*player)(p).Health)

	require.NoError(t, m.Free(p, size, align))
}

func TestMmap_Lock(t *testing.T) {
	m := NewMmap(WithLock())

	p, err := m.Alloc(64, 8)
	if err != nil {
		t.Skipf("mlock not permitted here: %v", err)
	}
	require.NoError(t, m.Free(p, 64, 8))
}

func TestMmap_Errors(t *testing.T) {
	m := NewMmap()

	t.Run("zero size", func(t *testing.T) {
		_, err := m.Alloc(0, 8)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("bad alignment", func(t *testing.T) {
		for _, align := range []uintptr{0, 3, 12, m.pageSize * 2} {
			_, err := m.Alloc(8, align)
			assert.ErrorIs(t, err, ErrUnsupportedAlignment, "align %d", align)
		}
	})

	t.Run("free nil", func(t *testing.T) {
		assert.ErrorIs(t, m.Free(nil, 8, 8), ErrInvalidPointer)
	})

	t.Run("free zero size", func(t *testing.T) {
		var x uint64
		assert.ErrorIs(t, m.Free(unsafe.Pointer(&x), 0, 8), ErrInvalidSize)
	})

	t.Run("free heap memory", func(t *testing.T) {
		page := new([4096]byte)
		assert.ErrorIs(t, m.Free(unsafe.Pointer(page), 4096, 8), ErrInvalidPointer)
	})

	t.Run("double free", func(t *testing.T) {
		p, err := m.Alloc(64, 8)
		require.NoError(t, err)
		require.NoError(t, m.Free(p, 64, 8))
		assert.ErrorIs(t, m.Free(p, 64, 8), ErrInvalidPointer)
	})

	t.Run("free with wrong size", func(t *testing.T) {
		p, err := m.Alloc(64, 8)
		require.NoError(t, err)
		assert.ErrorIs(t, m.Free(p, 32, 8), ErrInvalidPointer)
		require.NoError(t, m.Free(p, 64, 8))
	})
}

func TestMmap_Owns(t *testing.T) {
	m := NewMmap()

	p, err := m.Alloc(48, 8)
	require.NoError(t, err)

	assert.True(t, m.Owns(p, 48))
	assert.False(t, m.Owns(p, 64))
	assert.False(t, m.Owns(unsafe.Add(p, 8), 48))
	assert.False(t, m.Owns(nil, 48))
	assert.False(t, m.Owns(unsafe.Pointer(new([4096]byte)), 4096))

	// Another allocator never saw p.
	assert.False(t, NewMmap().Owns(p, 48))

	require.NoError(t, m.Free(p, 48, 8))
	assert.False(t, m.Owns(p, 48))
}

func TestOwns_Wrappers(t *testing.T) {
	m := NewMmap()
	a := NewCounting(NewLimited(m, 1024))

	p, err := a.Alloc(16, 8)
	require.NoError(t, err)

	assert.True(t, Owns(a, p, 16))
	assert.False(t, Owns(a, unsafe.Pointer(new(uint64)), 8))

	require.NoError(t, a.Free(p, 16, 8))
	assert.False(t, Owns(a, p, 16))

	// Allocators without Owner are trusted.
	var x uint64
	assert.True(t, Owns(failingAllocator{}, unsafe.Pointer(&x), 8))
	assert.False(t, Owns(failingAllocator{}, nil, 8))
}

func TestDefault(t *testing.T) {
	a := Default()
	require.NotNil(t, a)
	assert.Same(t, a, Default())

	p, err := a.Alloc(16, 8)
	require.NoError(t, err)
	require.NoError(t, a.Free(p, 16, 8))
}

func TestCounting(t *testing.T) {
	c := NewCounting(NewMmap())

	const cycles = 50
	for i := 0; i < cycles; i++ {
		p, err := c.Alloc(24, 8)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), c.Live())
		require.NoError(t, c.Free(p, 24, 8))
	}

	s := c.Stats()
	assert.Equal(t, uint64(cycles), s.Allocs)
	assert.Equal(t, uint64(cycles), s.Frees)
	assert.Equal(t, uint64(0), s.BytesLive)
	assert.Equal(t, uint64(cycles*24), s.BytesTotal)
	assert.True(t, c.Balanced())
	assert.Contains(t, c.String(), "allocs: 50")
}

func TestCounting_Unbalanced(t *testing.T) {
	c := NewCounting(nil)

	p, err := c.Alloc(32, 8)
	require.NoError(t, err)
	assert.False(t, c.Balanced())
	assert.Equal(t, uint64(32), c.Stats().BytesLive)

	require.NoError(t, c.Free(p, 32, 8))
	assert.True(t, c.Balanced())
}

func TestCounting_Failures(t *testing.T) {
	boom := errors.New("boom")
	c := NewCounting(failingAllocator{err: boom})

	_, err := c.Alloc(8, 8)
	assert.ErrorIs(t, err, boom)
	var x uint64
	assert.ErrorIs(t, c.Free(unsafe.Pointer(&x), 8, 8), boom)

	s := c.Stats()
	assert.Equal(t, uint64(2), s.Failures)
	assert.Zero(t, s.Allocs)
	assert.Zero(t, s.Frees)
	assert.True(t, c.Balanced())
}

func TestLimited(t *testing.T) {
	l := NewLimited(NewMmap(), 100)
	assert.Equal(t, int64(100), l.Limit())

	p1, err := l.Alloc(50, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(50), l.Usage())

	p2, err := l.Alloc(40, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(90), l.Usage())

	// Limit exceeded
	_, err = l.Alloc(20, 8)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), l.Usage())

	require.NoError(t, l.Free(p1, 50, 8))
	assert.Equal(t, int64(40), l.Usage())

	p3, err := l.Alloc(20, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(60), l.Usage())

	require.NoError(t, l.Free(p2, 40, 8))
	require.NoError(t, l.Free(p3, 20, 8))
	assert.Zero(t, l.Usage())
}

func TestLimited_Unlimited(t *testing.T) {
	l := NewLimited(nil, 0)
	assert.Zero(t, l.Limit())

	p, err := l.Alloc(1<<20, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), l.Usage())
	require.NoError(t, l.Free(p, 1<<20, 8))
}

func TestLimited_ReleasesOnFailure(t *testing.T) {
	boom := errors.New("boom")
	l := NewLimited(failingAllocator{err: boom}, 64)

	_, err := l.Alloc(64, 8)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, l.Usage())

	// The budget was handed back, so a full-size request still fits.
	l.next = NewMmap()
	p, err := l.Alloc(64, 8)
	require.NoError(t, err)
	require.NoError(t, l.Free(p, 64, 8))
}

func TestComposed(t *testing.T) {
	c := NewCounting(NewLimited(NewMmap(WithDontDump()), 1024))

	p, err := c.Alloc(512, 16)
	require.NoError(t, err)

	_, err = c.Alloc(1024, 16)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)

	require.NoError(t, c.Free(p, 512, 16))
	assert.True(t, c.Balanced())
	assert.Equal(t, uint64(1), c.Stats().Failures)
}

func BenchmarkMmapAllocFree(b *testing.B) {
	m := NewMmap()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p, err := m.Alloc(64, 8)
		if err != nil {
			b.Fatal(err)
		}
		if err := m.Free(p, 64, 8); err != nil {
			b.Fatal(err)
		}
	}
}
