package obfptr

import (
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"github.com/hupe1980/obfptr/alloc"
	"github.com/hupe1980/obfptr/internal/conv"
	"github.com/hupe1980/obfptr/keysource"
	"github.com/hupe1980/obfptr/transform"
)

type state uint8

const (
	stateLive state = iota
	stateDestroyed
	stateMoved
)

// noCopy makes go vet's copylocks check flag copies of a Pointer value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Pointer owns a single off-heap T and stores its address only in encoded
// form. The address is decoded afresh on every access and never cached.
//
// A Pointer is not safe for concurrent use. Wrap it in a mutex if several
// goroutines need it.
type Pointer[T any] struct {
	_ noCopy

	encoded uint64
	key     uint64
	method  transform.Method

	layout    layout
	allocator alloc.Allocator
	release   func(unsafe.Pointer)

	state   state
	readers int
	writing bool

	cleanup          cleanupHandle
	leakCleanup      bool
	logger           *Logger
	metricsCollector MetricsCollector
}

// New allocates value off-heap and takes ownership of it.
//
// T must be pointer-free: no pointers, slices, strings, maps, channels,
// funcs or interfaces, at any depth.
func New[T any](value T, opts ...Option) (*Pointer[T], error) {
	start := time.Now()
	o := applyOptions(opts)

	raw, lay, err := allocRaw[T](o)
	if err != nil {
		o.logger.LogConstruct(lay.name, 0, lay.size, 0, err)
		o.metricsCollector.RecordConstruct(time.Since(start), err)
		return nil, err
	}

	*raw = value

	p, err := adopt(raw, lay, o, start)
	if err != nil {
		base := unsafe.Pointer(raw)
		wipe(base, lay.size)
		_ = o.allocator.Free(base, lay.size, lay.align)
		return nil, err
	}
	return p, nil
}

// Alloc allocates a zeroed off-heap T for a later Adopt.
// Pass the same WithAllocator option to both calls.
func Alloc[T any](opts ...Option) (*T, error) {
	o := applyOptions(opts)
	raw, _, err := allocRaw[T](o)
	return raw, err
}

// FreeRaw releases memory from Alloc that was never adopted.
func FreeRaw[T any](raw *T, opts ...Option) error {
	o := applyOptions(opts)

	lay, err := layoutOf[T]()
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrInvalidPointer
	}

	base := unsafe.Pointer(raw)
	wipe(base, lay.size)
	return o.allocator.Free(base, lay.size, lay.align)
}

// Adopt takes ownership of raw, which must come from Alloc (or from the
// configured allocator with T's size and alignment). The caller must not use
// raw afterwards.
//
// A pointer the allocator did not hand out, such as one to Go heap memory,
// fails with ErrInvalidPointer when the allocator implements alloc.Owner.
func Adopt[T any](raw *T, opts ...Option) (*Pointer[T], error) {
	start := time.Now()
	o := applyOptions(opts)

	lay, err := layoutOf[T]()
	if err != nil {
		o.logger.LogConstruct(lay.name, 0, 0, 0, err)
		o.metricsCollector.RecordConstruct(time.Since(start), err)
		return nil, err
	}

	return adopt(raw, lay, o, start)
}

func allocRaw[T any](o options) (*T, layout, error) {
	lay, err := layoutOf[T]()
	if err != nil {
		return nil, lay, err
	}

	base, err := o.allocator.Alloc(lay.size, lay.align)
	if err != nil {
		return nil, lay, fmt.Errorf("obfptr: allocate %s: %w", lay.name, err)
	}

	return (*T)(base), lay, nil
}

func adopt[T any](raw *T, lay layout, o options, start time.Time) (p *Pointer[T], err error) {
	defer func() {
		if err != nil {
			o.logger.LogConstruct(lay.name, 0, lay.size, 0, err)
			o.metricsCollector.RecordConstruct(time.Since(start), err)
		}
	}()

	addr := uintptr(unsafe.Pointer(raw))
	if raw == nil || addr%lay.align != 0 {
		return nil, ErrInvalidPointer
	}
	if !alloc.Owns(o.allocator, unsafe.Pointer(raw), lay.size) {
		return nil, fmt.Errorf("%w: %s not allocated by the configured allocator", ErrInvalidPointer, lay.name)
	}

	key, method, err := pickEncoding(o)
	if err != nil {
		return nil, err
	}

	p = &Pointer[T]{
		encoded:          method.Encode(uint64(addr), key),
		key:              key,
		method:           method,
		layout:           lay,
		allocator:        o.allocator,
		release:          releaseHook[T](),
		leakCleanup:      o.leakCleanup,
		logger:           o.logger,
		metricsCollector: o.metricsCollector,
	}
	p.armCleanup()

	o.logger.LogConstruct(lay.name, method, lay.size, p.encoded, nil)
	o.metricsCollector.RecordConstruct(time.Since(start), nil)
	return p, nil
}

func pickEncoding(o options) (uint64, transform.Method, error) {
	key, err := o.keySource.Key()
	if err != nil {
		return 0, 0, fmt.Errorf("obfptr: key generation failed: %w", err)
	}

	if o.methodSet {
		if !o.method.Valid() {
			return 0, 0, fmt.Errorf("%w: %v", ErrInvalidMethod, o.method)
		}
		return key, o.method, nil
	}

	r := o.rand
	if r == nil {
		r = keysource.NewRand(key)
	}
	return key, transform.Select(r), nil
}

// armCleanup registers the garbage-collector backstop for the current encoding.
func (p *Pointer[T]) armCleanup() {
	p.cleanup.stop()
	if !p.leakCleanup {
		return
	}

	r := reclaim{
		encoded:   p.encoded,
		key:       p.key,
		method:    p.method,
		layout:    p.layout,
		allocator: p.allocator,
		release:   p.release,
		logger:    p.logger,
		metrics:   p.metricsCollector,
	}
	p.cleanup = cleanupHandle{
		cleanup: runtime.AddCleanup(p, reclaim.run, r),
		active:  true,
	}
}

// deref decodes the address. The result must not outlive the caller's frame.
func (p *Pointer[T]) deref() (*T, error) {
	addr, err := conv.Uint64ToUintptr(p.method.Decode(p.encoded, p.key))
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(addr)), nil //nolint:govet // off-heap address, not managed by the GC
}

func (p *Pointer[T]) checkLive() error {
	if p == nil {
		return ErrInvalidPointer
	}
	switch p.state {
	case stateLive:
		return nil
	case stateMoved:
		return ErrMoved
	default:
		return ErrUseAfterDestroy
	}
}

// Live reports whether p still owns its pointee.
func (p *Pointer[T]) Live() bool {
	return p != nil && p.state == stateLive
}

// Method returns the transform used for the stored address.
func (p *Pointer[T]) Method() transform.Method {
	return p.method
}

// Get returns a copy of the pointee.
func (p *Pointer[T]) Get() (T, error) {
	var zero T
	if err := p.checkLive(); err != nil {
		return zero, err
	}
	if p.writing {
		return zero, ErrBorrowed
	}

	ptr, err := p.deref()
	if err != nil {
		return zero, err
	}

	v := *ptr
	// The leak cleanup must not unmap the pointee while it is being copied.
	runtime.KeepAlive(p)

	p.metricsCollector.RecordAccess(false)
	return v, nil
}

// View calls fn with shared access to the pointee. fn must not modify the
// value or retain the pointer. Nested View calls are allowed; Update and
// Destroy inside fn fail with ErrBorrowed.
func (p *Pointer[T]) View(fn func(v *T)) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if p.writing {
		return ErrBorrowed
	}

	ptr, err := p.deref()
	if err != nil {
		return err
	}

	p.readers++
	defer func() { p.readers-- }()

	p.metricsCollector.RecordAccess(false)
	fn(ptr)
	runtime.KeepAlive(p)
	return nil
}

// Update calls fn with exclusive access to the pointee. fn must not retain
// the pointer. Any access or Destroy inside fn fails with ErrBorrowed.
func (p *Pointer[T]) Update(fn func(v *T)) error {
	if err := p.checkLive(); err != nil {
		return err
	}
	if p.writing || p.readers > 0 {
		return ErrBorrowed
	}

	ptr, err := p.deref()
	if err != nil {
		return err
	}

	p.writing = true
	defer func() { p.writing = false }()

	p.metricsCollector.RecordAccess(true)
	fn(ptr)
	runtime.KeepAlive(p)
	return nil
}

// Rekey re-encodes the stored address under a fresh key and method.
// The pointee does not move.
func (p *Pointer[T]) Rekey(opts ...Option) error {
	if err := p.checkLive(); err != nil {
		return err
	}

	o := applyOptions(opts)
	key, method, err := pickEncoding(o)
	if err != nil {
		p.logger.LogRekey(p.layout.name, p.method, err)
		return err
	}

	addr := p.method.Decode(p.encoded, p.key)
	p.encoded = method.Encode(addr, key)
	p.key = key
	p.method = method
	p.armCleanup()

	p.logger.LogRekey(p.layout.name, method, nil)
	return nil
}

// Move transfers ownership to a new handle. p becomes unusable and every
// later call on it returns ErrMoved.
func (p *Pointer[T]) Move() (*Pointer[T], error) {
	if err := p.checkLive(); err != nil {
		return nil, err
	}
	if p.writing || p.readers > 0 {
		return nil, ErrBorrowed
	}

	q := &Pointer[T]{
		encoded:          p.encoded,
		key:              p.key,
		method:           p.method,
		layout:           p.layout,
		allocator:        p.allocator,
		release:          p.release,
		leakCleanup:      p.leakCleanup,
		logger:           p.logger,
		metricsCollector: p.metricsCollector,
	}

	p.cleanup.stop()
	p.forget(stateMoved)
	q.armCleanup()

	return q, nil
}

// Destroy runs the pointee's Release hook (if *T implements Releaser), wipes
// its memory and frees it. A second call returns ErrUseAfterDestroy.
//
// The memory is wiped and freed even if the Release hook panics. The panic is
// recorded as a failed destroy and then propagated.
func (p *Pointer[T]) Destroy() (err error) {
	if err := p.checkLive(); err != nil {
		return err
	}
	if p.writing || p.readers > 0 {
		return ErrBorrowed
	}

	start := time.Now()
	ptr, err := p.deref()
	if err != nil {
		return err
	}
	base := unsafe.Pointer(ptr)

	lay, allocator := p.layout, p.allocator
	p.cleanup.stop()
	p.forget(stateDestroyed)

	defer func() {
		rec := recover()
		if rec != nil {
			err = fmt.Errorf("obfptr: release hook panicked: %v", rec)
		}

		wipe(base, lay.size)
		if ferr := allocator.Free(base, lay.size, lay.align); ferr != nil && err == nil {
			err = fmt.Errorf("obfptr: free %s: %w", lay.name, ferr)
		}
		p.logger.LogDestroy(lay.name, lay.size, err)
		p.metricsCollector.RecordDestroy(time.Since(start), err)

		if rec != nil {
			panic(rec)
		}
	}()

	if p.release != nil {
		p.release(base)
	}
	return nil
}

// Close destroys p. Unlike Destroy it is idempotent, so
//
//	defer p.Close()
//
// is safe alongside an explicit Destroy. The pointee is freed at most once.
func (p *Pointer[T]) Close() error {
	if p == nil || p.state != stateLive {
		return nil
	}
	return p.Destroy()
}

// forget clears the encoding so nothing decodable remains in p.
func (p *Pointer[T]) forget(s state) {
	p.encoded = 0
	p.key = 0
	p.state = s
}

// String renders the encoded address only. Safe for logs.
func (p *Pointer[T]) String() string {
	if p == nil {
		return "Pointer(nil)"
	}
	switch p.state {
	case stateMoved:
		return fmt.Sprintf("Pointer[%s]{moved}", p.layout.name)
	case stateDestroyed:
		return fmt.Sprintf("Pointer[%s]{destroyed}", p.layout.name)
	default:
		return fmt.Sprintf("Pointer[%s]{encoded: 0x%016x}", p.layout.name, p.encoded)
	}
}

// DebugString renders the encoded address together with the decoded pointee.
// It deliberately exposes the value and is meant for diagnostics only.
func (p *Pointer[T]) DebugString() string {
	if !p.Live() {
		return p.String()
	}

	v, err := p.Get()
	if err != nil {
		return fmt.Sprintf("Pointer[%s]{encoded: 0x%016x, value: <%v>}", p.layout.name, p.encoded, err)
	}
	return fmt.Sprintf("Pointer[%s]{encoded: 0x%016x, value: %+v}", p.layout.name, p.encoded, v)
}
