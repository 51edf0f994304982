package obfptr

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/hupe1980/obfptr/alloc"
	"github.com/hupe1980/obfptr/internal/conv"
	"github.com/hupe1980/obfptr/transform"
)

// reclaim holds everything needed to free a pointee once its owner is gone.
// It must not reference the owning Pointer, or the owner never becomes
// unreachable.
type reclaim struct {
	encoded   uint64
	key       uint64
	method    transform.Method
	layout    layout
	allocator alloc.Allocator
	release   func(unsafe.Pointer)
	logger    *Logger
	metrics   MetricsCollector
}

// run frees the pointee of a Pointer that was dropped without Destroy.
// It runs on the runtime's cleanup goroutine.
func (r reclaim) run() {
	err := r.free()
	r.logger.LogLeak(r.layout.name, r.layout.size, err)
	r.metrics.RecordLeak()
}

func (r reclaim) free() (err error) {
	addr, err := conv.Uint64ToUintptr(r.method.Decode(r.encoded, r.key))
	if err != nil {
		return err
	}
	base := unsafe.Pointer(addr) //nolint:govet // off-heap address, not managed by the GC

	defer func() {
		// A panicking Release hook must not take the process down from here.
		if rec := recover(); rec != nil {
			err = fmt.Errorf("obfptr: release hook panicked: %v", rec)
		}
		wipe(base, r.layout.size)
		if ferr := r.allocator.Free(base, r.layout.size, r.layout.align); ferr != nil && err == nil {
			err = ferr
		}
	}()

	if r.release != nil {
		r.release(base)
	}
	return nil
}

// cleanupHandle tracks an optional runtime cleanup.
type cleanupHandle struct {
	cleanup runtime.Cleanup
	active  bool
}

func (h *cleanupHandle) stop() {
	if h.active {
		h.cleanup.Stop()
		h.active = false
	}
}
